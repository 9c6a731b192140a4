package devices

// Display renders a monochrome framebuffer.
//
// The framebuffer is row-major with one byte per pixel, holding 0 or 1.
// Implementations must not retain fb beyond the call.
type Display interface {
	Update(fb []byte, width, height int)
}

// Keypad reports the state of the 16 logical keys 0x0-0xF.
type Keypad interface {
	IsKeyDown(code int) bool
}

// Host is the collaborator a running machine draws to and reads input from.
// None of its methods may block indefinitely.
type Host interface {
	Display
	Keypad

	// IsOpen reports whether the window or session is still active.
	IsOpen() bool
}
