package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
)

// spriteWidth is the fixed width of a sprite row in pixels.
const spriteWidth = 8

// draw XORs an n-row sprite read from memory at I onto the display at (Vx, Vy).
//
// The origin wraps around the display edges; the sprite itself is clipped.
// VF is set to 1 if any lit pixel was turned off, 0 otherwise.
func (c *CPU) draw(instr *Instruction) error {
	rows := instr.N
	if !c.memory.InRange(int(c.i), rows) {
		return NewError(instr, errors.Wrapf(ErrOutOfRange, "sprite at I=%04x, %d rows", c.i, rows))
	}

	ox := int(c.v[instr.X]) % arch.DisplayWidth
	oy := int(c.v[instr.Y]) % arch.DisplayHeight
	sprite := c.memory[c.i : int(c.i)+rows]

	var collision byte

	for row, bits := range sprite {
		y := oy + row
		if y >= arch.DisplayHeight {
			break
		}

		line := c.gfx[y*arch.DisplayWidth : (y+1)*arch.DisplayWidth]

		for col := 0; col < spriteWidth; col++ {
			x := ox + col
			if x >= arch.DisplayWidth {
				break
			}
			if bits&(0x80>>col) == 0 {
				continue
			}

			collision |= line[x]
			line[x] ^= 1
		}
	}

	c.v[arch.VF] = collision
	return nil
}
