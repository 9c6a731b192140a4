package main

import (
	"flag"
	"testing"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"

	"github.com/hexaflex/chip8/devices/fffe/cpu"
	"github.com/hexaflex/chip8/devices/fffe/mono"
	"github.com/hexaflex/chip8/rom"
	"github.com/hexaflex/chip8/vm"
)

func TestParseArgsDefaults(t *testing.T) {
	c, err := parseArgs([]string{"game.ch8"})
	assert.NoError(t, err)

	assert.Equal(t, "game.ch8", c.Program)
	assert.Equal(t, rom.FormatAuto, c.Format)
	assert.Equal(t, BackendGL, c.Backend)
	assert.Equal(t, 10, c.ScaleFactor)
	assert.Equal(t, vm.DefaultCyclesPerFrame, c.CyclesPerFrame)
	assert.Equal(t, cpu.DefaultQuirks(), c.Quirks)
	assert.Equal(t, mono.DefaultForeground, c.Foreground)
	assert.Equal(t, mono.DefaultBackground, c.Background)
	assert.True(t, c.DisplayWait)
	assert.False(t, c.Trace)
}

func TestParseArgsFlags(t *testing.T) {
	c, err := parseArgs([]string{
		"-backend", "headless",
		"-format", "hex",
		"-cycles", "20",
		"-frames", "120",
		"-seed", "7",
		"-fg", "#33ff66",
		"-quirk-shift-vy=false",
		"-quirk-display-wait=false",
		"-trace",
		"game.txt",
	})
	assert.NoError(t, err)

	assert.Equal(t, BackendHeadless, c.Backend)
	assert.Equal(t, rom.FormatHex, c.Format)
	assert.Equal(t, 20, c.CyclesPerFrame)
	assert.Equal(t, 120, c.Frames)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, mono.Color{R: 0x33, G: 0xff, B: 0x66}, c.Foreground)
	assert.False(t, c.Quirks.ShiftUsesVY)
	assert.True(t, c.Quirks.LoadStoreIncrementsI)
	assert.False(t, c.DisplayWait)
	assert.True(t, c.Trace)
}

func TestParseArgsVersion(t *testing.T) {
	c, err := parseArgs([]string{"-version"})
	assert.NoError(t, err)
	assert.True(t, c.Version)
}

func TestParseArgsHelp(t *testing.T) {
	_, err := parseArgs([]string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no program", nil, "expected exactly one program file"},
		{"two programs", []string{"a.ch8", "b.ch8"}, "expected exactly one program file"},
		{"backend", []string{"-backend", "vulkan", "a.ch8"}, `unknown backend "vulkan"`},
		{"scale", []string{"-scale-factor", "0", "a.ch8"}, "invalid scale factor 0"},
		{"cycles", []string{"-cycles", "0", "a.ch8"}, "invalid cycle count 0"},
		{"frames", []string{"-frames", "-1", "a.ch8"}, "invalid frame count -1"},
		{"format", []string{"-format", "elf", "a.ch8"}, "elf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}
