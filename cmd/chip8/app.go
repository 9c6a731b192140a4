package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"

	"github.com/hexaflex/chip8/devices"
	"github.com/hexaflex/chip8/devices/fffe/clock"
	"github.com/hexaflex/chip8/devices/fffe/cpu"
	"github.com/hexaflex/chip8/devices/fffe/headless"
	"github.com/hexaflex/chip8/rom"
	"github.com/hexaflex/chip8/vm"
)

// action is an interactive command bound to a shortcut key.
type action int

// Known actions.
const (
	actionNone action = iota
	actionHelp
	actionReload
	actionPause
	actionStep
	actionTrace
)

// App defines application context.
type App struct {
	config       *Config       // Application configuration.
	logger       *log.Logger   // Application logger.
	out          io.Writer     // Destination for headless frame dumps.
	cpu          *cpu.CPU      // Machine running the program.
	sched        *vm.Scheduler // Drives the machine.
	setTitle     func(string)  // Window title setter, nil without a window.
	tracing      bool          // Log executed instructions?
	titleUpdated time.Time     // Value used to periodically update window title.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config, logger *log.Logger) *App {
	a := &App{
		config:  config,
		logger:  logger,
		out:     os.Stdout,
		tracing: config.Trace,
	}

	opts := []cpu.Option{
		cpu.WithQuirks(config.Quirks),
		cpu.WithTrace(a.trace),
	}
	if config.Seed != 0 {
		opts = append(opts, cpu.WithSeed(config.Seed))
	}

	a.cpu = cpu.New(opts...)
	return a
}

// Run loads the program and runs it on the configured backend. It does not
// return until the window is closed, the frame limit is reached, the context
// is cancelled or, without a window, the program fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info(Version())

	program, err := rom.Load(a.config.Program, a.config.Format)
	if err != nil {
		return err
	}

	switch a.config.Backend {
	case BackendHeadless:
		return a.runHeadless(ctx, program)
	case BackendSDL:
		return a.runSDL(ctx, program)
	default:
		return a.runGL(ctx, program)
	}
}

// runHeadless runs the program without a window on a virtual clock, as fast
// as possible, and writes the final frame to a.out.
func (a *App) runHeadless(ctx context.Context, program []byte) error {
	host := headless.New(a.config.Frames)
	vt := &virtualTime{t: time.Unix(0, 0)}

	err := a.run(ctx, host, program, false,
		vm.WithClock(clock.New(vt.now)),
		vm.WithSleep(vt.advance),
	)

	a.logger.Info("Run finished",
		log.Int("frames", int(a.sched.Frames())),
		log.Int("cycles", int(a.sched.Cycles())),
		log.Hex("pc", a.cpu.PC()))

	if dumpErr := host.Dump(a.out); dumpErr != nil && err == nil {
		err = dumpErr
	}
	return err
}

// run drives the program on the given host until it closes.
//
// In interactive mode an execution failure pauses the machine instead of
// ending the run, so the program can be inspected or reloaded.
func (a *App) run(ctx context.Context, host devices.Host, program []byte, interactive bool, opts ...vm.Option) error {
	opts = append([]vm.Option{
		vm.WithCyclesPerFrame(a.config.CyclesPerFrame),
		vm.WithDisplayWait(a.config.DisplayWait),
		vm.WithLogger(a.logger),
		vm.WithFrameHook(a.updateTitle),
	}, opts...)

	a.sched = vm.New(a.cpu, host, opts...)

	if err := a.sched.Startup(); err != nil {
		return err
	}

	defer func() {
		if err := a.sched.Shutdown(); err != nil {
			a.logger.Error("Shutdown failed", log.Err(err))
		}
	}()

	if err := a.sched.Load(program); err != nil {
		return err
	}

	a.logger.Info("Program loaded",
		log.String("file", a.config.Program),
		log.Int("size", len(program)))

	for {
		err := a.sched.Run(ctx)

		var cerr *cpu.Error
		if !interactive || !errors.As(err, &cerr) {
			return err
		}

		a.logger.Error("Execution halted", log.Err(err))
		a.sched.Pause()
	}
}

// perform executes the given interactive command.
func (a *App) perform(act action) {
	var err error

	switch act {
	case actionHelp:
		a.printHelp()
	case actionReload:
		err = a.reload()
	case actionPause:
		a.sched.TogglePause()
	case actionStep:
		a.sched.Pause()
		err = a.sched.StepOnce()
		instr := a.cpu.LastInstruction()
		a.logger.Info("Step", log.Hex("pc", instr.IP), log.String("instr", instr.String()))
	case actionTrace:
		a.tracing = !a.tracing
		a.logger.Info("Trace output toggled", log.String("enabled", fmt.Sprint(a.tracing)))
	}

	if err != nil {
		a.logger.Error("Command failed", log.Err(err))
	}
}

// reload reads the program from disk and restarts the machine.
func (a *App) reload() error {
	program, err := rom.Load(a.config.Program, a.config.Format)
	if err != nil {
		return err
	}

	if err := a.sched.Load(program); err != nil {
		return err
	}

	a.logger.Info("Program reloaded", log.String("file", a.config.Program))
	return nil
}

// trace logs instruction trace data. This can be toggled on and off at runtime.
func (a *App) trace(i *cpu.Instruction) {
	if !a.tracing {
		return
	}

	a.logger.Debug("Trace",
		log.Hex("pc", i.IP),
		log.Hex("opcode", i.Word),
		log.String("instr", i.String()))
}

// updateTitle periodically shows the current instruction rate in the window title.
func (a *App) updateTitle() {
	if a.setTitle == nil || time.Since(a.titleUpdated) < time.Second*2 {
		return
	}
	a.titleUpdated = time.Now()

	status := prettyFrequency(a.sched.Frequency())
	if a.sched.Paused() {
		status = "paused"
	}
	a.setTitle(fmt.Sprintf("%s %s - %s", AppName, AppVersion, status))
}

// printHelp writes a short overview of supported shortcut keys.
func (a *App) printHelp() {
	var sb strings.Builder
	sb.WriteString("shortcut keys:\n")
	sb.WriteString(" ESC      Exit.\n")
	sb.WriteString(" F1       Display this help.\n")
	sb.WriteString(" F5       (re)load the program from disk and reset the machine.\n")
	sb.WriteString(" P        Pause/Resume program execution.\n")
	sb.WriteString(" N        Pause and perform a single execution step.\n")
	sb.WriteString(" T        Enable/Disable instruction trace output.\n")
	sb.WriteString("keypad:\n")
	sb.WriteString(" 1 2 3 4  ->  1 2 3 C\n")
	sb.WriteString(" Q W E R  ->  4 5 6 D\n")
	sb.WriteString(" A S D F  ->  7 8 9 E\n")
	sb.WriteString(" Z X C V  ->  A 0 B F")
	a.logger.Info(sb.String())
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f KHz", v/1e3)
	default:
		return fmt.Sprintf("%.2f Hz", v)
	}
}

// virtualTime is a clock that only moves when advanced.
type virtualTime struct {
	t time.Time
}

func (v *virtualTime) now() time.Time          { return v.t }
func (v *virtualTime) advance(d time.Duration) { v.t = v.t.Add(d) }
