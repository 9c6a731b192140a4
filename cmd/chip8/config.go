package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/devices/fffe/cpu"
	"github.com/hexaflex/chip8/devices/fffe/mono"
	"github.com/hexaflex/chip8/rom"
	"github.com/hexaflex/chip8/vm"
)

// Known display backends.
const (
	BackendGL       = "gl"
	BackendSDL      = "sdl"
	BackendHeadless = "headless"
)

// Config defines program configuration.
type Config struct {
	Program        string     // Path to the program to load.
	Format         rom.Format // Program encoding.
	Backend        string     // Display backend.
	ScaleFactor    int        // Amount by which each pixel is scaled.
	Fullscreen     bool       // Run in fullscreen?
	Foreground     mono.Color // Color of lit pixels.
	Background     mono.Color // Color of dark pixels.
	CyclesPerFrame int        // Instructions executed per 60Hz frame.
	Seed           int64      // Random seed; 0 picks one from the clock.
	Frames         int        // Headless frame limit; 0 runs until interrupted.
	Quirks         cpu.Quirks // Instruction behaviour variants.
	DisplayWait    bool       // Limit draws to one per frame?
	Debug          bool       // Log debug output?
	Trace          bool       // Log every executed instruction?
	Quiet          bool       // Log errors only?
	Version        bool       // Print version information and exit?
}

// parseArgs parses command line arguments.
// flag.ErrHelp is returned if usage information was requested.
func parseArgs(args []string) (*Config, error) {
	c := Config{
		Backend:        BackendGL,
		ScaleFactor:    10,
		Foreground:     mono.DefaultForeground,
		Background:     mono.DefaultBackground,
		CyclesPerFrame: vm.DefaultCyclesPerFrame,
		Quirks:         cpu.DefaultQuirks(),
		DisplayWait:    true,
	}

	flags := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "%s [options] <program file>\n", AppName)
		flags.PrintDefaults()
	}

	var format string

	flags.StringVar(&c.Backend, "backend", c.Backend, "Display backend: gl, sdl or headless.")
	flags.StringVar(&format, "format", "auto", "Program format: auto, bin or hex.")
	flags.IntVar(&c.ScaleFactor, "scale-factor", c.ScaleFactor, "Pixel scale factor for the display.")
	flags.BoolVar(&c.Fullscreen, "fullscreen", c.Fullscreen, "Run the display in fullscreen or windowed mode.")
	flags.Var(&c.Foreground, "fg", "Color of lit pixels as RRGGBB.")
	flags.Var(&c.Background, "bg", "Color of dark pixels as RRGGBB.")
	flags.IntVar(&c.CyclesPerFrame, "cycles", c.CyclesPerFrame, "Instructions executed per frame.")
	flags.Int64Var(&c.Seed, "seed", c.Seed, "Random number seed. 0 seeds from the clock.")
	flags.IntVar(&c.Frames, "frames", c.Frames, "Number of frames to run with the headless backend. 0 runs until interrupted.")
	flags.BoolVar(&c.Quirks.ShiftUsesVY, "quirk-shift-vy", c.Quirks.ShiftUsesVY, "8xy6 and 8xyE shift VY instead of VX.")
	flags.BoolVar(&c.Quirks.LoadStoreIncrementsI, "quirk-loadstore-i", c.Quirks.LoadStoreIncrementsI, "Fx55 and Fx65 advance I.")
	flags.BoolVar(&c.Quirks.LogicResetsVF, "quirk-logic-vf", c.Quirks.LogicResetsVF, "8xy1, 8xy2 and 8xy3 clear VF.")
	flags.BoolVar(&c.DisplayWait, "quirk-display-wait", c.DisplayWait, "Execute at most one draw per frame.")
	flags.BoolVar(&c.Debug, "debug", c.Debug, "Log debug output.")
	flags.BoolVar(&c.Trace, "trace", c.Trace, "Log every executed instruction. Implies -debug.")
	flags.BoolVar(&c.Quiet, "q", c.Quiet, "Only log errors.")
	flags.BoolVar(&c.Version, "version", c.Version, "Display version information.")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if c.Version {
		return &c, nil
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return nil, errors.New("expected exactly one program file")
	}
	c.Program = flags.Arg(0)

	var err error
	if c.Format, err = rom.ParseFormat(format); err != nil {
		return nil, err
	}

	switch c.Backend {
	case BackendGL, BackendSDL, BackendHeadless:
	default:
		return nil, errors.Errorf("unknown backend %q", c.Backend)
	}

	if c.ScaleFactor < 1 {
		return nil, errors.Errorf("invalid scale factor %d", c.ScaleFactor)
	}
	if c.CyclesPerFrame < 1 {
		return nil, errors.Errorf("invalid cycle count %d", c.CyclesPerFrame)
	}
	if c.Frames < 0 {
		return nil, errors.Errorf("invalid frame count %d", c.Frames)
	}

	return &c, nil
}

// printUsageHint points the user at -h.
func printUsageHint() {
	fmt.Fprintf(os.Stderr, "run %s -h for usage information\n", AppName)
}
