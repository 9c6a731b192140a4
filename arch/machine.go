package arch

import "time"

// Memory map.
//
//	0x000-0x1FF: reserved for the interpreter; the font table lives at FontBase.
//	0x200-0xFFF: program space.
const (
	MemorySize     = 0x1000                    // Total addressable memory.
	ProgramStart   = 0x200                     // Load and entry address for programs.
	MaxProgramSize = MemorySize - ProgramStart // Largest program that fits in memory.
	FontBase       = 0x50                      // Address of the built-in font table.
)

// Register file and peripheral dimensions.
const (
	RegisterCount = 16 // General purpose registers V0-VF.
	StackDepth    = 16 // Call stack slots.
	KeyCount      = 16 // Keys on the hex keypad.
)

// Display dimensions.
const (
	DisplayWidth    = 64
	DisplayHeight   = 32
	FramebufferSize = DisplayWidth * DisplayHeight
)

// Timing.
const (
	FrameRate   = 60                      // Timer and display refresh rate in Hz.
	FramePeriod = time.Second / FrameRate // Duration of a single frame.
)
