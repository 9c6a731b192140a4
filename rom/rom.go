// Package rom reads and writes CHIP-8 program images.
//
// Two encodings are supported: raw binary (.ch8) and hex text, where each
// line holds whitespace separated hex bytes, usually two per line so that a
// line reads as one instruction word.
package rom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
)

// Known error conditions.
var (
	ErrSyntax   = errors.New("invalid hex rom syntax")
	ErrTooLarge = errors.New("rom too large")
)

// Format selects a program encoding.
type Format int

// Known formats.
const (
	FormatAuto Format = iota
	FormatBinary
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "bin"
	case FormatHex:
		return "hex"
	}
	return "auto"
}

// ParseFormat returns the format for the given name: auto, bin or hex.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "bin", "ch8":
		return FormatBinary, nil
	case "hex":
		return FormatHex, nil
	}
	return FormatAuto, errors.Errorf("unknown rom format %q", name)
}

// Detect returns the format implied by a file name.
// Files ending in .hex or .txt are hex text, anything else is binary.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		return FormatHex
	}
	return FormatBinary
}

// Load reads the program in the given file.
func Load(path string, f Format) ([]byte, error) {
	if f == FormatAuto {
		f = Detect(path)
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var program []byte
	if f == FormatHex {
		program, err = ReadHex(fd)
	} else {
		program, err = ReadBinary(fd)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return program, nil
}

// ReadBinary reads a raw program image.
func ReadBinary(r io.Reader) ([]byte, error) {
	// Read one byte past the limit to detect oversized input.
	program, err := io.ReadAll(io.LimitReader(r, arch.MaxProgramSize+1))
	if err != nil {
		return nil, err
	}

	if len(program) > arch.MaxProgramSize {
		return nil, errors.Wrapf(ErrTooLarge, "limit is %d bytes", arch.MaxProgramSize)
	}
	return program, nil
}

// ReadHex reads a hex text program image.
//
// Each token is one byte written as one or two hex digits, with an optional
// 0x prefix. Text following '#' or "//" is a comment. Blank lines are ignored.
func ReadHex(r io.Reader) ([]byte, error) {
	var program []byte

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := scanner.Text()
		if n := strings.Index(text, "#"); n > -1 {
			text = text[:n]
		}
		if n := strings.Index(text, "//"); n > -1 {
			text = text[:n]
		}

		for _, tok := range strings.Fields(text) {
			digits := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			if len(digits) == 0 || len(digits) > 2 {
				return nil, errors.Wrapf(ErrSyntax, "line %d: %q", line, tok)
			}

			v, err := strconv.ParseUint(digits, 16, 8)
			if err != nil {
				return nil, errors.Wrapf(ErrSyntax, "line %d: %q", line, tok)
			}

			if len(program) >= arch.MaxProgramSize {
				return nil, errors.Wrapf(ErrTooLarge, "line %d: limit is %d bytes", line, arch.MaxProgramSize)
			}
			program = append(program, byte(v))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

// WriteHex writes the program as hex text, one instruction word per line.
// A trailing odd byte is written on a line of its own.
func WriteHex(w io.Writer, program []byte) error {
	bw := bufio.NewWriter(w)

	for i := 0; i < len(program); i += 2 {
		if i+1 < len(program) {
			fmt.Fprintf(bw, "%02X %02X\n", program[i], program[i+1])
		} else {
			fmt.Fprintf(bw, "%02X\n", program[i])
		}
	}

	return bw.Flush()
}
