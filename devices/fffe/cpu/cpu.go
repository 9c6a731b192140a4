// Package cpu implements the CHIP-8 processor: memory, register file,
// instruction decoder and executor.
package cpu

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(*Instruction)

// Option configures a CPU.
type Option func(*CPU)

// WithQuirks selects the instruction behaviour variants.
func WithQuirks(q Quirks) Option {
	return func(c *CPU) {
		c.quirks = q
	}
}

// WithSeed seeds the random number generator used by RND.
func WithSeed(seed int64) Option {
	return func(c *CPU) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithTrace installs a handler called with every decoded instruction
// right before it executes.
func WithTrace(trace TraceFunc) Option {
	return func(c *CPU) {
		if trace != nil {
			c.trace = trace
		}
	}
}

// CPU holds the complete machine state.
type CPU struct {
	memory Memory                     // System memory.
	v      [arch.RegisterCount]byte   // General purpose registers.
	i      uint16                     // Index register.
	pc     uint16                     // Program counter.
	stack  [arch.StackDepth]uint16    // Return addresses.
	sp     uint16                     // Number of occupied stack slots.
	dt     byte                       // Delay timer.
	st     byte                       // Sound timer.
	gfx    [arch.FramebufferSize]byte // Display cells, 0 or 1.
	keys   [arch.KeyCount]byte        // Key states, 1 while pressed.
	instr  Instruction                // Most recently decoded instruction.
	quirks Quirks                     // Behaviour variants.
	rng    *rand.Rand                 // Random number generator.
	trace  TraceFunc                  // Handler for debug trace output.
}

var _ devices.Device = (*CPU)(nil)

// New creates a new, initialized CPU.
func New(opts ...Option) *CPU {
	c := &CPU{
		memory: NewMemory(),
		quirks: DefaultQuirks(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		trace:  func(*Instruction) { /* nop */ },
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Initialize()
	return c
}

// ID returns the cpu's device id.
func (c *CPU) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialCPU)
}

// Startup resets the machine. Any loaded program is discarded.
func (c *CPU) Startup() error {
	c.Initialize()
	return nil
}

// Shutdown has nothing to release.
func (c *CPU) Shutdown() error {
	return nil
}

// Initialize zeroes all state, installs the font table and points
// the program counter at the program start address.
func (c *CPU) Initialize() {
	c.memory.reset()
	c.v = [arch.RegisterCount]byte{}
	c.i = 0
	c.pc = arch.ProgramStart
	c.stack = [arch.StackDepth]uint16{}
	c.sp = 0
	c.dt = 0
	c.st = 0
	c.gfx = [arch.FramebufferSize]byte{}
	c.keys = [arch.KeyCount]byte{}
	c.instr = Instruction{}

	c.memory.Write(arch.FontBase, arch.Font[:])
}

// Load copies the program into memory at the program start address.
// Memory outside the program's extent is left untouched. Nothing is written
// if the program does not fit.
func (c *CPU) Load(program []byte) error {
	if len(program) > arch.MaxProgramSize {
		return errors.Wrapf(ErrProgramTooLarge, "%d bytes, limit is %d", len(program), arch.MaxProgramSize)
	}

	c.memory.Write(arch.ProgramStart, program)
	return nil
}

// Step performs a single fetch-decode-execute cycle.
//
// A nil return means execution may continue. Otherwise the returned *Error
// describes an unknown opcode or an out of range access; the machine state
// is unchanged in that case and calling Step again fails the same way.
func (c *CPU) Step() error {
	instr := &c.instr

	if err := instr.fetch(c.memory, int(c.pc)); err != nil {
		return err
	}

	c.trace(instr)

	pc := c.pc
	c.pc += 2

	if err := c.execute(instr); err != nil {
		c.pc = pc
		return err
	}

	return nil
}

// Peek decodes the instruction at the program counter without executing it.
// The returned error is the one Step would report for the fetch.
func (c *CPU) Peek() (Instruction, error) {
	var instr Instruction
	err := instr.fetch(c.memory, int(c.pc))
	return instr, err
}

// TickTimers decrements the delay and sound timers. It is called at 60Hz.
// Neither timer goes below zero.
func (c *CPU) TickTimers() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
	}
}

// SetKey records the state of the given key. Codes outside 0x0-0xF are ignored.
func (c *CPU) SetKey(code int, pressed bool) {
	if code < 0 || code >= arch.KeyCount {
		return
	}
	c.keys[code] = 0
	if pressed {
		c.keys[code] = 1
	}
}

// Keys returns the current key states.
func (c *CPU) Keys() [arch.KeyCount]byte { return c.keys }

// Framebuffer returns the display cells, row-major, one byte per pixel.
// The slice aliases machine state and is only valid until the next Step.
func (c *CPU) Framebuffer() []byte { return c.gfx[:] }

// Memory returns the cpu's internal memory bank.
func (c *CPU) Memory() Memory { return c.memory }

// Quirks returns the active behaviour variants.
func (c *CPU) Quirks() Quirks { return c.quirks }

// LastInstruction returns the most recently decoded instruction.
func (c *CPU) LastInstruction() Instruction { return c.instr }

// V returns the value of general purpose register x.
func (c *CPU) V(x int) byte { return c.v[x&0xf] }

// SetV sets general purpose register x.
func (c *CPU) SetV(x int, value byte) { c.v[x&0xf] = value }

// I returns the index register.
func (c *CPU) I() uint16 { return c.i }

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// Stack returns a copy of the occupied part of the call stack, oldest first.
func (c *CPU) Stack() []uint16 {
	return append([]uint16(nil), c.stack[:c.sp]...)
}

// DelayTimer returns the delay timer value.
func (c *CPU) DelayTimer() byte { return c.dt }

// SoundTimer returns the sound timer value.
func (c *CPU) SoundTimer() byte { return c.st }

// SetDelayTimer sets the delay timer.
func (c *CPU) SetDelayTimer(v byte) { c.dt = v }

// SetSoundTimer sets the sound timer.
func (c *CPU) SetSoundTimer(v byte) { c.st = v }
