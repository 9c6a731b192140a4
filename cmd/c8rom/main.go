package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/disasm"
	"github.com/hexaflex/chip8/rom"
)

func main() {
	config, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if config.Version {
		fmt.Println(Version())
		return
	}

	if err := run(config, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run reads the input program and writes it, converted or listed, to the
// configured output. stdout is used when no output file is set.
func run(config *Config, stdout io.Writer) (err error) {
	program, err := rom.Load(config.Input, config.From)
	if err != nil {
		return err
	}

	w := stdout
	if config.Output != "" {
		fd, err := os.Create(config.Output)
		if err != nil {
			return errors.Wrapf(err, "create %s", config.Output)
		}

		defer func() {
			if cerr := fd.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		w = fd
	}

	switch {
	case config.List:
		return disasm.Listing(w, program, arch.ProgramStart)
	case config.To == rom.FormatBinary:
		_, err = w.Write(program)
		return err
	default:
		return rom.WriteHex(w, program)
	}
}
