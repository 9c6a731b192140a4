package cpu

import "github.com/hexaflex/chip8/arch"

// Memory defines the system's memory bank.
type Memory []byte

// NewMemory returns a zeroed memory bank of arch.MemorySize bytes.
func NewMemory() Memory {
	return make(Memory, arch.MemorySize)
}

// U8 returns the 8-bit value at the given address.
func (m Memory) U8(addr int) byte {
	return m[addr]
}

// SetU8 sets the 8-bit value at the given address.
func (m Memory) SetU8(addr int, value byte) {
	m[addr] = value
}

// U16 returns the big-endian 16-bit value at the given address.
func (m Memory) U16(addr int) uint16 {
	return uint16(m[addr])<<8 | uint16(m[addr+1])
}

// SetU16 sets the big-endian 16-bit value at the given address.
func (m Memory) SetU16(addr int, value uint16) {
	m[addr] = byte(value >> 8)
	m[addr+1] = byte(value)
}

// Write writes len(p) bytes from p into memory, starting at the given address.
func (m Memory) Write(address int, p []byte) {
	copy(m[address:], p)
}

// Read reads len(p) bytes from memory into p, starting at the given address.
func (m Memory) Read(address int, p []byte) {
	copy(p, m[address:])
}

// InRange returns true if the n bytes starting at addr are all addressable.
func (m Memory) InRange(addr, n int) bool {
	return addr >= 0 && n >= 0 && addr+n <= len(m)
}

// reset zeroes the whole bank.
func (m Memory) reset() {
	clear(m)
}
