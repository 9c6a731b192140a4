package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
)

// execute applies the decoded instruction. The program counter has already
// been advanced past it. On error nothing has been modified.
func (c *CPU) execute(instr *Instruction) error {
	v := &c.v
	x, y := instr.X, instr.Y

	switch instr.Opcode {
	case arch.CLS:
		clear(c.gfx[:])
	case arch.RET:
		if c.sp == 0 {
			return NewError(instr, ErrStackUnderflow)
		}
		c.sp--
		c.pc = c.stack[c.sp]
	case arch.JP:
		c.pc = instr.NNN
	case arch.CALL:
		if int(c.sp) >= len(c.stack) {
			return NewError(instr, ErrStackOverflow)
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = instr.NNN

	case arch.SE:
		c.skipIf(v[x] == instr.NN)
	case arch.SNE:
		c.skipIf(v[x] != instr.NN)
	case arch.SEV:
		c.skipIf(v[x] == v[y])
	case arch.SNEV:
		c.skipIf(v[x] != v[y])

	case arch.LD:
		v[x] = instr.NN
	case arch.ADD:
		v[x] += instr.NN
	case arch.MOVV:
		v[x] = v[y]
	case arch.OR:
		v[x] |= v[y]
		c.logicFlag()
	case arch.AND:
		v[x] &= v[y]
		c.logicFlag()
	case arch.XOR:
		v[x] ^= v[y]
		c.logicFlag()
	case arch.ADDV:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = byte(sum)
		v[arch.VF] = byte(sum >> 8)
	case arch.SUB:
		a, b := v[x], v[y]
		v[x] = a - b
		v[arch.VF] = flag(a >= b)
	case arch.SUBN:
		a, b := v[x], v[y]
		v[x] = b - a
		v[arch.VF] = flag(b >= a)
	case arch.SHR:
		src := c.shiftSource(x, y)
		v[x] = src >> 1
		v[arch.VF] = src & 1
	case arch.SHL:
		src := c.shiftSource(x, y)
		v[x] = src << 1
		v[arch.VF] = src >> 7

	case arch.LDI:
		c.i = instr.NNN
	case arch.JPV0:
		c.pc = instr.NNN + uint16(v[0])
	case arch.RND:
		v[x] = byte(c.rng.Intn(256)) & instr.NN
	case arch.DRW:
		return c.draw(instr)

	case arch.SKP, arch.SKNP:
		key := int(v[x])
		if key >= arch.KeyCount {
			return NewError(instr, errors.Wrapf(ErrOutOfRange, "key %d", key))
		}
		pressed := c.keys[key] == 1
		c.skipIf(pressed == (instr.Opcode == arch.SKP))

	case arch.LDDT:
		v[x] = c.dt
	case arch.LDK:
		key, ok := c.pressedKey()
		if !ok {
			c.pc -= 2
			return nil
		}
		v[x] = byte(key)
	case arch.SETDT:
		c.dt = v[x]
	case arch.SETST:
		c.st = v[x]
	case arch.ADDI:
		c.i += uint16(v[x])
	case arch.LDF:
		c.i = uint16(arch.GlyphAddress(int(v[x])))

	case arch.BCD:
		if err := c.checkI(instr, 3); err != nil {
			return err
		}
		n, m := v[x], c.memory[c.i:]
		m[0] = n / 100
		m[1] = n / 10 % 10
		m[2] = n % 10
	case arch.STORE:
		if err := c.checkI(instr, x+1); err != nil {
			return err
		}
		c.memory.Write(int(c.i), v[:x+1])
		c.advanceI(x + 1)
	case arch.LOAD:
		if err := c.checkI(instr, x+1); err != nil {
			return err
		}
		c.memory.Read(int(c.i), v[:x+1])
		c.advanceI(x + 1)

	default:
		return NewError(instr, ErrUnknownOpcode)
	}

	return nil
}

// skipIf skips the next instruction if cond holds.
func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

// logicFlag clears VF after a bitwise operation, if that quirk is enabled.
func (c *CPU) logicFlag() {
	if c.quirks.LogicResetsVF {
		c.v[arch.VF] = 0
	}
}

// shiftSource returns the operand of a shift instruction.
func (c *CPU) shiftSource(x, y int) byte {
	if c.quirks.ShiftUsesVY {
		return c.v[y]
	}
	return c.v[x]
}

// advanceI moves I past a bulk load or store of n registers, if that quirk is enabled.
func (c *CPU) advanceI(n int) {
	if c.quirks.LoadStoreIncrementsI {
		c.i += uint16(n)
	}
}

// checkI fails if the n bytes at I are not addressable.
func (c *CPU) checkI(instr *Instruction, n int) error {
	if !c.memory.InRange(int(c.i), n) {
		return NewError(instr, errors.Wrapf(ErrOutOfRange, "I=%04x, %d bytes", c.i, n))
	}
	return nil
}

// pressedKey returns the lowest numbered key currently held down.
func (c *CPU) pressedKey() (int, bool) {
	for key, state := range c.keys {
		if state == 1 {
			return key, true
		}
	}
	return 0, false
}

func flag(v bool) byte {
	if v {
		return 1
	}
	return 0
}
