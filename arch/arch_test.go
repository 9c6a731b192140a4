package arch

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestName(t *testing.T) {
	for op := CLS; op < opcodeCount; op++ {
		name, ok := Name(op)
		assert.True(t, ok, "opcode %d", op)
		assert.NotEmpty(t, name)
	}

	_, ok := Name(UNKNOWN)
	assert.False(t, ok)
	_, ok = Name(opcodeCount)
	assert.False(t, ok)
}

func TestRegisterIndex(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"V0", 0},
		{"v9", 9},
		{"VA", 10},
		{"vf", 15},
		{"VG", -1},
		{"I", -1},
		{"V10", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RegisterIndex(tt.name))
			assert.Equal(t, tt.want > -1, IsRegister(tt.name))
		})
	}
}

func TestRegisterName(t *testing.T) {
	for i := 0; i < RegisterCount; i++ {
		assert.Equal(t, i, RegisterIndex(RegisterName(i)))
	}
	assert.Equal(t, "", RegisterName(RegisterCount))
}

func TestGlyphAddress(t *testing.T) {
	assert.Equal(t, 0x50, GlyphAddress(0))
	assert.Equal(t, 3*5+0x50, GlyphAddress(3))
	assert.Equal(t, FontBase+len(Font)-GlyphSize, GlyphAddress(0xf))
}
