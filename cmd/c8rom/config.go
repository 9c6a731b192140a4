package main

import (
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/rom"
)

// Config defines program configuration.
type Config struct {
	Input   string     // Program file to read.
	Output  string     // Target file; empty writes to stdout.
	From    rom.Format // Input encoding.
	To      rom.Format // Output encoding.
	List    bool       // Print a disassembly listing instead of converting.
	Version bool       // Print version information and exit?
}

// parseArgs parses command line arguments.
// flag.ErrHelp is returned if usage information was requested.
func parseArgs(args []string) (*Config, error) {
	var c Config

	flags := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "%s [options] <program file>\n", AppName)
		flags.PrintDefaults()
	}

	var from, to string

	flags.StringVar(&from, "format", "auto", "Input format: auto, bin or hex.")
	flags.StringVar(&to, "to", "hex", "Output format: bin or hex.")
	flags.StringVar(&c.Output, "o", c.Output, "Output file. Defaults to stdout.")
	flags.BoolVar(&c.List, "list", c.List, "Print a disassembly listing.")
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
	c.Input = flags.Arg(0)

	var err error
	if c.From, err = rom.ParseFormat(from); err != nil {
		return nil, err
	}

	if c.To, err = rom.ParseFormat(to); err != nil {
		return nil, err
	}
	if c.To == rom.FormatAuto {
		return nil, errors.New("output format must be bin or hex")
	}

	return &c, nil
}
