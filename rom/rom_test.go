package rom

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/assert"

	"github.com/hexaflex/chip8/arch"
)

var fontCycle = []byte{
	0x60, 0x00,
	0x61, 0x0a,
	0x62, 0x0a,
	0xf0, 0x29,
	0xd1, 0x25,
	0x64, 0x1e,
	0xf4, 0x15,
	0xf5, 0x07,
	0x35, 0x00,
	0x12, 0x0e,
	0x00, 0xe0,
	0x65, 0x00,
	0x70, 0x01,
	0x40, 0x10,
	0x60, 0x00,
	0x12, 0x04,
}

func TestLoadHex(t *testing.T) {
	program, err := Load(filepath.Join("testdata", "font_cycle.hex"), FormatAuto)
	assert.NoError(t, err)
	assert.Equal(t, fontCycle, program)
}

func TestLoadBinary(t *testing.T) {
	program, err := Load(filepath.Join("testdata", "short.ch8"), FormatAuto)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00, 0x61, 0x0a}, program)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.ch8"), FormatBinary)
	assert.Error(t, err)
}

func TestReadHex(t *testing.T) {
	src := `
# comment line
60 0  // trailing comment
0xF0 0x29

a
`
	program, err := ReadHex(strings.NewReader(src))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00, 0xf0, 0x29, 0x0a}, program)
}

func TestReadHexSyntax(t *testing.T) {
	for _, src := range []string{"60 0g", "600", "60 0x", "zz"} {
		_, err := ReadHex(strings.NewReader("00 E0\n" + src))
		assert.True(t, errors.Is(err, ErrSyntax), src)
		assert.ErrorContains(t, err, "line 2")
	}
}

func TestReadTooLarge(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader(make([]byte, arch.MaxProgramSize+1)))
	assert.True(t, errors.Is(err, ErrTooLarge))

	program, err := ReadBinary(bytes.NewReader(make([]byte, arch.MaxProgramSize)))
	assert.NoError(t, err)
	assert.Equal(t, arch.MaxProgramSize, len(program))

	src := strings.Repeat("00\n", arch.MaxProgramSize+1)
	_, err = ReadHex(strings.NewReader(src))
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestWriteHex(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteHex(&buf, []byte{0x60, 0x00, 0xd1, 0x25, 0xab}))
	assert.Equal(t, "60 00\nD1 25\nAB\n", buf.String())

	program, err := ReadHex(&buf)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x00, 0xd1, 0x25, 0xab}, program)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"BIN", FormatBinary},
		{"ch8", FormatBinary},
		{"hex", FormatHex},
	}

	for _, tt := range tests {
		f, err := ParseFormat(tt.name)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, f)
	}

	_, err := ParseFormat("elf")
	assert.Error(t, err)

	assert.Equal(t, FormatHex, Detect("pong.HEX"))
	assert.Equal(t, FormatHex, Detect("pong.txt"))
	assert.Equal(t, FormatBinary, Detect("pong.ch8"))
	assert.Equal(t, "hex", FormatHex.String())
}
