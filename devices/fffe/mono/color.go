package mono

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Default display colors.
var (
	DefaultForeground = Color{0xff, 0xff, 0xff}
	DefaultBackground = Color{0x00, 0x00, 0x00}
)

// ParseColor parses a color in the form RRGGBB, with an optional leading '#'.
func ParseColor(v string) (Color, error) {
	s := strings.TrimPrefix(v, "#")
	if len(s) != 6 {
		return Color{}, errors.Errorf("invalid color %q", v)
	}

	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, errors.Errorf("invalid color %q", v)
	}

	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Set implements flag.Value.
func (c *Color) Set(v string) error {
	nc, err := ParseColor(v)
	if err != nil {
		return err
	}
	*c = nc
	return nil
}

// RGBA returns the color as 0xRRGGBBAA with full opacity.
func (c Color) RGBA() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | 0xff
}

// vec4 returns the color as normalized RGBA components.
func (c Color) vec4() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		1,
	}
}
