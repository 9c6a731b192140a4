package devices

import "fmt"

// Vendor is the manufacturer id shared by the bundled devices.
const Vendor = 0xfffe

// Serial numbers of the bundled devices.
const (
	SerialCPU      = 0x0001
	SerialDisplay  = 0x0002
	SerialKeypad   = 0x0003
	SerialHost     = 0x0004
	SerialClock    = 0x0005
	SerialHeadless = 0x0006
)

// ID identifies a device.
// The upper 16 bits hold the device manufacturer id.
// The lower 16 bits hold the device serial number.
type ID uint32

// NewID creates a new id with the given components.
func NewID(manufacturer, serial int) ID {
	return ID(manufacturer&0xffff)<<16 | ID(serial&0xffff)
}

// Manufacturer returns the manufacturer component of the id.
func (id ID) Manufacturer() int {
	return int(id>>16) & 0xffff
}

// Serial returns the device serial number component of the id.
func (id ID) Serial() int {
	return int(id) & 0xffff
}

func (id ID) String() string {
	return fmt.Sprintf("%04x:%04x", id.Manufacturer(), id.Serial())
}
