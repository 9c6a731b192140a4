package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	config, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		printUsageHint()
		os.Exit(2)
	}

	if config.Version {
		fmt.Println(Version())
		return
	}

	logger := createLogger(config)
	if err := NewApp(config, logger).Run(ctx); err != nil {
		logger.Fatal("Execution failed", log.Err(err))
	}
}

// createLogger returns a logger with the verbosity selected on the command line.
func createLogger(config *Config) *log.Logger {
	cfg := log.DefaultConfig()
	if config.Debug || config.Trace {
		cfg.Level = log.DebugLevel
	} else if config.Quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
