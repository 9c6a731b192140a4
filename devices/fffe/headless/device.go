// Package headless implements a windowless host. It records every frame it
// is given and replays scripted key presses, which makes it suitable for
// tests and batch runs.
package headless

import (
	"bufio"
	"io"
	"sync"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// keyEvent changes a key state once a given number of frames has been displayed.
type keyEvent struct {
	frame   int
	code    int
	pressed bool
}

// Host is a devices.Host without a window.
type Host struct {
	m      sync.Mutex
	fb     []byte // Copy of the most recent frame.
	width  int    // Width of the most recent frame.
	height int    // Height of the most recent frame.
	frames int    // Number of frames received.
	limit  int    // Frame count after which the host closes; 0 is unlimited.
	closed bool   // Explicitly closed?
	keys   [arch.KeyCount]bool
	script []keyEvent
}

var _ devices.Host = &Host{}
var _ devices.Device = &Host{}

// New creates a host which reports itself closed after limit frames.
// A limit of 0 keeps it open until Close is called.
func New(limit int) *Host {
	return &Host{
		limit:  limit,
		width:  arch.DisplayWidth,
		height: arch.DisplayHeight,
		fb:     make([]byte, arch.FramebufferSize),
	}
}

// ID returns the device id.
func (h *Host) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialHeadless)
}

// Startup clears recorded frames and key state. Scripted events are kept.
func (h *Host) Startup() error {
	h.m.Lock()
	defer h.m.Unlock()

	clear(h.fb)
	h.frames = 0
	h.closed = false
	h.keys = [arch.KeyCount]bool{}
	return nil
}

// Shutdown marks the host closed.
func (h *Host) Shutdown() error {
	h.Close()
	return nil
}

// Update records a copy of the framebuffer and applies any key events
// scheduled for the new frame count.
func (h *Host) Update(fb []byte, width, height int) {
	h.m.Lock()
	defer h.m.Unlock()

	if len(h.fb) != len(fb) {
		h.fb = make([]byte, len(fb))
	}
	copy(h.fb, fb)
	h.width, h.height = width, height
	h.frames++

	pending := h.script[:0]
	for _, ev := range h.script {
		if ev.frame > h.frames {
			pending = append(pending, ev)
			continue
		}
		h.keys[ev.code] = ev.pressed
	}
	h.script = pending
}

// IsKeyDown returns true if the given key is held.
func (h *Host) IsKeyDown(code int) bool {
	if code < 0 || code >= arch.KeyCount {
		return false
	}

	h.m.Lock()
	defer h.m.Unlock()
	return h.keys[code]
}

// IsOpen returns false once the frame limit is reached or Close was called.
func (h *Host) IsOpen() bool {
	h.m.Lock()
	defer h.m.Unlock()
	return !h.closed && (h.limit == 0 || h.frames < h.limit)
}

// Close marks the host closed.
func (h *Host) Close() {
	h.m.Lock()
	h.closed = true
	h.m.Unlock()
}

// SetKey changes a key state immediately. Codes outside 0x0-0xF are ignored.
func (h *Host) SetKey(code int, pressed bool) {
	if code < 0 || code >= arch.KeyCount {
		return
	}

	h.m.Lock()
	h.keys[code] = pressed
	h.m.Unlock()
}

// Schedule changes a key state once the given number of frames has been
// received. Codes outside 0x0-0xF are ignored.
func (h *Host) Schedule(frame, code int, pressed bool) {
	if code < 0 || code >= arch.KeyCount {
		return
	}

	h.m.Lock()
	h.script = append(h.script, keyEvent{frame: frame, code: code, pressed: pressed})
	h.m.Unlock()
}

// Frames returns the number of frames received.
func (h *Host) Frames() int {
	h.m.Lock()
	defer h.m.Unlock()
	return h.frames
}

// Framebuffer returns a copy of the most recent frame.
func (h *Host) Framebuffer() []byte {
	h.m.Lock()
	defer h.m.Unlock()
	return append([]byte(nil), h.fb...)
}

// Pixel returns the value of the cell at (x, y) in the most recent frame.
func (h *Host) Pixel(x, y int) byte {
	h.m.Lock()
	defer h.m.Unlock()

	if x < 0 || y < 0 || x >= h.width || y >= h.height {
		return 0
	}
	return h.fb[y*h.width+x]
}

// Dump writes the most recent frame as text, one line per row,
// '#' for lit cells and '.' for dark ones.
func (h *Host) Dump(w io.Writer) error {
	h.m.Lock()
	defer h.m.Unlock()

	bw := bufio.NewWriter(w)
	for y := 0; y < h.height; y++ {
		for _, v := range h.fb[y*h.width : (y+1)*h.width] {
			c := byte('.')
			if v != 0 {
				c = '#'
			}
			bw.WriteByte(c)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
