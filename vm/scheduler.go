// Package vm drives a CHIP-8 machine: it runs the cpu at a fixed number of
// cycles per 60Hz frame, ticks the timers and pushes frames to the host.
package vm

import (
	"context"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
	"github.com/hexaflex/chip8/devices/fffe/clock"
	"github.com/hexaflex/chip8/devices/fffe/cpu"
)

// DefaultCyclesPerFrame is the instruction throughput used when none is configured.
const DefaultCyclesPerFrame = 11

// SleepFunc pauses the caller for the given duration.
type SleepFunc func(time.Duration)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCyclesPerFrame sets the number of cpu cycles executed per frame.
// Values below 1 are ignored.
func WithCyclesPerFrame(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.cyclesPerFrame = n
		}
	}
}

// WithDisplayWait enables or disables the display wait throttle: at most one
// draw instruction executes per frame, later ones stall until the next frame.
func WithDisplayWait(enabled bool) Option {
	return func(s *Scheduler) {
		s.displayWait = enabled
	}
}

// WithClock replaces the frame clock.
func WithClock(c *clock.Device) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSleep replaces the function used to pace cycles.
func WithSleep(sleep SleepFunc) Option {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFrameHook installs a function called after every frame flush.
func WithFrameHook(fn func()) Option {
	return func(s *Scheduler) {
		s.onFrame = fn
	}
}

// Scheduler runs a cpu against a host.
type Scheduler struct {
	cpu     *cpu.CPU      // Machine being driven.
	host    devices.Host  // Display and keypad.
	clock   *clock.Device // Frame clock.
	devices devices.Map   // Managed devices, in startup order.
	logger  *log.Logger
	sleep   SleepFunc
	onFrame func()
	program []byte // Currently loaded program, kept for Reset.

	cyclesPerFrame int
	displayWait    bool
	drew           bool // A draw instruction executed during the current frame.
	paused         bool

	cycles      uint64        // Instructions executed since startup.
	frames      uint64        // Frames flushed since startup.
	stalls      uint64        // Cycles withheld by the display wait throttle.
	windowStart time.Duration // Clock uptime at the start of the frequency window.
	windowCount uint64        // Instructions executed in the frequency window.
}

// New creates a scheduler for the given cpu and host. If the host is also a
// devices.Device, its lifecycle is managed by the scheduler.
func New(c *cpu.CPU, host devices.Host, opts ...Option) *Scheduler {
	s := &Scheduler{
		cpu:            c,
		host:           host,
		sleep:          time.Sleep,
		cyclesPerFrame: DefaultCyclesPerFrame,
		displayWait:    true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.clock == nil {
		s.clock = clock.New(nil)
	}
	if s.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		s.logger = log.NewWithConfig(cfg)
	}

	s.devices.Connect(c)
	s.devices.Connect(s.clock)
	if dev, ok := host.(devices.Device); ok {
		s.devices.Connect(dev)
	}

	return s
}

// Startup initializes all managed devices and reloads the current program.
func (s *Scheduler) Startup() error {
	if err := s.devices.Startup(s.logger); err != nil {
		return err
	}

	s.cycles = 0
	s.frames = 0
	s.stalls = 0
	s.resetWindow()

	if s.program == nil {
		return nil
	}
	return s.cpu.Load(s.program)
}

// Shutdown releases all managed devices.
func (s *Scheduler) Shutdown() error {
	return s.devices.Shutdown(s.logger)
}

// Load resets the machine and loads the given program.
func (s *Scheduler) Load(program []byte) error {
	s.cpu.Initialize()
	if err := s.cpu.Load(program); err != nil {
		return err
	}

	s.program = append(s.program[:0], program...)
	s.drew = false
	s.resetWindow()

	s.logger.Debug("Program loaded", log.Int("size", len(program)))
	return nil
}

// Reset re-initializes the machine and reloads the current program.
func (s *Scheduler) Reset() error {
	return s.Load(s.program)
}

// Run executes the machine until the host closes, the context is cancelled
// or the cpu reports an error. The error is returned as is; it is a
// *cpu.Error for execution failures.
//
// The host is asked whether it is still open once per batch of
// cyclesPerFrame cycles. Each cycle waits for its share of the frame period
// first, so a batch spans one period and ends with the frame flush.
func (s *Scheduler) Run(ctx context.Context) error {
	for s.host.IsOpen() {
		if ctx.Err() != nil {
			return nil
		}

		for n := range s.cyclesPerFrame {
			s.sleep(s.pace(n))
			if err := s.Cycle(); err != nil {
				return err
			}
		}
	}

	return nil
}

// pace returns the sleep preceding cycle n of a frame. The delays of one
// batch add up to exactly one frame period.
func (s *Scheduler) pace(n int) time.Duration {
	period := s.clock.Period()
	cycles := time.Duration(s.cyclesPerFrame)
	return period*time.Duration(n+1)/cycles - period*time.Duration(n)/cycles
}

// Cycle performs one inner cycle: poll the keypad, execute one instruction
// unless paused or throttled, and flush a frame if one is due.
func (s *Scheduler) Cycle() error {
	s.pollKeys()

	if !s.paused {
		if err := s.exec(); err != nil {
			return err
		}
	}

	if s.clock.Due() {
		s.Frame()
	}
	return nil
}

// Frame ticks the timers, pushes the framebuffer to the host and opens
// the display wait gate for the next frame.
func (s *Scheduler) Frame() {
	s.cpu.TickTimers()
	s.host.Update(s.cpu.Framebuffer(), arch.DisplayWidth, arch.DisplayHeight)
	s.drew = false
	s.frames++

	if s.onFrame != nil {
		s.onFrame()
	}
}

// StepOnce executes a single instruction, regardless of whether the
// scheduler is paused.
func (s *Scheduler) StepOnce() error {
	s.pollKeys()
	return s.exec()
}

// Pause stops instruction execution. Frames keep being flushed.
func (s *Scheduler) Pause() {
	if !s.paused {
		s.logger.Debug("Execution paused", log.Hex("pc", s.cpu.PC()))
	}
	s.paused = true
}

// Resume continues instruction execution.
func (s *Scheduler) Resume() {
	if s.paused {
		s.logger.Debug("Execution resumed", log.Hex("pc", s.cpu.PC()))
	}
	s.paused = false
	s.resetWindow()
}

// TogglePause pauses a running machine and resumes a paused one.
func (s *Scheduler) TogglePause() {
	if s.paused {
		s.Resume()
	} else {
		s.Pause()
	}
}

// Paused returns true if execution is paused.
func (s *Scheduler) Paused() bool {
	return s.paused
}

// Frequency returns the instruction rate in Hz since the last start or resume.
// It is 0 while paused.
func (s *Scheduler) Frequency() float64 {
	if s.paused {
		return 0
	}

	elapsed := s.clock.Uptime() - s.windowStart
	if elapsed <= 0 {
		return 0
	}
	return float64(s.windowCount) / elapsed.Seconds()
}

// Cycles returns the number of instructions executed since startup.
func (s *Scheduler) Cycles() uint64 { return s.cycles }

// Frames returns the number of frames flushed since startup.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Stalls returns the number of cycles withheld by the display wait throttle.
func (s *Scheduler) Stalls() uint64 { return s.stalls }

// CPU returns the machine being driven.
func (s *Scheduler) CPU() *cpu.CPU { return s.cpu }

// exec executes the next instruction, unless it is a draw and the display
// wait gate is closed, in which case the program counter is left as is.
func (s *Scheduler) exec() error {
	if s.displayWait && s.drew {
		if instr, err := s.cpu.Peek(); err == nil && instr.Opcode == arch.DRW {
			s.stalls++
			return nil
		}
	}

	if err := s.cpu.Step(); err != nil {
		return err
	}

	s.cycles++
	s.windowCount++

	if s.cpu.LastInstruction().Opcode == arch.DRW {
		s.drew = true
	}
	return nil
}

func (s *Scheduler) pollKeys() {
	for code := 0; code < arch.KeyCount; code++ {
		s.cpu.SetKey(code, s.host.IsKeyDown(code))
	}
}

func (s *Scheduler) resetWindow() {
	s.windowStart = s.clock.Uptime()
	s.windowCount = 0
}
