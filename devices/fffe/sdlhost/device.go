// Package sdlhost implements a windowed host on top of SDL2: a scaled
// streaming texture for the display and the keyboard for the keypad.
package sdlhost

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// Keymap maps keypad codes 0x0-0xF to keyboard keys, in the
// 1234/QWER/ASDF/ZXCV layout.
var Keymap = [arch.KeyCount]sdl.Keycode{
	0x0: sdl.K_x,
	0x1: sdl.K_1,
	0x2: sdl.K_2,
	0x3: sdl.K_3,
	0x4: sdl.K_q,
	0x5: sdl.K_w,
	0x6: sdl.K_e,
	0x7: sdl.K_a,
	0x8: sdl.K_s,
	0x9: sdl.K_d,
	0xa: sdl.K_z,
	0xb: sdl.K_c,
	0xc: sdl.K_4,
	0xd: sdl.K_r,
	0xe: sdl.K_f,
	0xf: sdl.K_v,
}

// Config defines the window properties.
type Config struct {
	Title       string
	ScaleFactor int
	Fullscreen  bool
	Foreground  uint32 // Lit pixel color as 0xRRGGBBAA.
	Background  uint32 // Dark pixel color as 0xRRGGBBAA.
}

// Host is an SDL2 window implementing devices.Host.
type Host struct {
	config   Config
	logger   *log.Logger
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	keys     [arch.KeyCount]bool
	open     bool

	// OnKey, if set, receives every key press that is not part of the keypad.
	// Escape closes the window and is not forwarded.
	OnKey func(sdl.Keycode)
}

var _ devices.Host = &Host{}
var _ devices.Device = &Host{}

// New creates a new host. The window is created by Startup.
func New(config Config, logger *log.Logger) *Host {
	if config.ScaleFactor < 1 {
		config.ScaleFactor = 1
	}

	return &Host{
		config: config,
		logger: logger,
	}
}

// ID returns the device id.
func (h *Host) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialHost)
}

// Startup initializes SDL and opens the window.
// It must be called from the main thread.
func (h *Host) Startup() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrapf(err, "sdl.Init failed")
	}

	width := int32(arch.DisplayWidth * h.config.ScaleFactor)
	height := int32(arch.DisplayHeight * h.config.ScaleFactor)

	flags := uint32(sdl.WINDOW_SHOWN)
	if h.config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	h.window, err = sdl.CreateWindow(h.config.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, flags)
	if err != nil {
		h.dispose()
		return errors.Wrapf(err, "sdl.CreateWindow failed")
	}

	h.renderer, err = sdl.CreateRenderer(h.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		h.dispose()
		return errors.Wrapf(err, "sdl.CreateRenderer failed")
	}

	h.texture, err = h.renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, arch.DisplayWidth, arch.DisplayHeight)
	if err != nil {
		h.dispose()
		return errors.Wrapf(err, "texture creation failed")
	}

	h.keys = [arch.KeyCount]bool{}
	h.open = true
	return nil
}

// Shutdown closes the window and releases SDL.
func (h *Host) Shutdown() error {
	h.dispose()
	return nil
}

// SetTitle changes the window title.
func (h *Host) SetTitle(title string) {
	if h.window != nil {
		h.window.SetTitle(title)
	}
}

// Update renders the framebuffer.
func (h *Host) Update(fb []byte, width, height int) {
	if h.texture == nil {
		return
	}

	pixels, pitch, err := h.texture.Lock(nil)
	if err != nil {
		h.logger.Error("Texture lock failed", log.Err(err))
		return
	}

	render(pixels, pitch, fb, width, height, h.config.Foreground, h.config.Background)
	h.texture.Unlock()

	h.renderer.Clear()
	h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()
}

// IsKeyDown returns true if the given key is held.
func (h *Host) IsKeyDown(code int) bool {
	if code < 0 || code >= arch.KeyCount {
		return false
	}
	return h.keys[code]
}

// IsOpen processes pending window events and reports whether the
// window is still open.
func (h *Host) IsOpen() bool {
	if !h.open {
		return false
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			h.open = false

		case *sdl.KeyboardEvent:
			pressed := t.Type == sdl.KEYDOWN

			if code, ok := KeyCode(t.Keysym.Sym); ok {
				h.keys[code] = pressed
				continue
			}

			if !pressed || t.Repeat != 0 {
				continue
			}

			if t.Keysym.Sym == sdl.K_ESCAPE {
				h.open = false
			} else if h.OnKey != nil {
				h.OnKey(t.Keysym.Sym)
			}
		}
	}

	return h.open
}

// KeyCode returns the keypad code for the given key.
func KeyCode(sym sdl.Keycode) (int, bool) {
	for code, k := range Keymap {
		if k == sym {
			return code, true
		}
	}
	return 0, false
}

func (h *Host) dispose() {
	h.open = false

	if h.texture != nil {
		h.texture.Destroy()
		h.texture = nil
	}
	if h.renderer != nil {
		h.renderer.Destroy()
		h.renderer = nil
	}
	if h.window != nil {
		h.window.Destroy()
		h.window = nil
	}

	sdl.Quit()
}

// render writes the framebuffer as RGBA8888 pixels into dst, whose rows
// are pitch bytes apart.
func render(dst []byte, pitch int, fb []byte, width, height int, on, off uint32) {
	for y := 0; y < height; y++ {
		row := dst[y*pitch:]
		for x, v := range fb[y*width : (y+1)*width] {
			c := off
			if v != 0 {
				c = on
			}
			binary.NativeEndian.PutUint32(row[x*4:], c)
		}
	}
}
