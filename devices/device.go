// Package devices defines the contracts between the virtual machine and the
// peripherals it talks to: device lifecycle, the display and the keypad.
package devices

import (
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// Device represents a peripheral device with managed resources.
type Device interface {
	// ID yields the manufacturer and serial number for the device.
	ID() ID

	// Startup initializes internal resources.
	Startup() error

	// Shutdown cleans up internal resources.
	Shutdown() error
}

// Map contains a list of registered peripherals.
type Map []Device

// Connect adds the given device to the device map.
// Returns false if the device type is already present in the set.
func (dm *Map) Connect(dev Device) bool {
	if (*dm).Find(dev.ID()) > -1 {
		return false
	}

	*dm = append(*dm, dev)
	return true
}

// Startup initializes all devices in connection order.
// A failing device does not prevent the others from starting.
func (dm Map) Startup(logger *log.Logger) error {
	var errorset ErrorSet

	for _, dev := range dm {
		logger.Debug("Device startup", log.Stringer("device", dev.ID()))
		if err := dev.Startup(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	return errorset.Err()
}

// Shutdown cleans up all devices in reverse connection order.
func (dm Map) Shutdown(logger *log.Logger) error {
	var errorset ErrorSet

	for i := len(dm) - 1; i >= 0; i-- {
		dev := dm[i]
		logger.Debug("Device shutdown", log.Stringer("device", dev.ID()))
		if err := dev.Shutdown(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	return errorset.Err()
}

// Find returns the index for the device with the given id.
// Returns -1 if it can't be found.
func (dm Map) Find(id ID) int {
	for i, dev := range dm {
		if dev.ID() == id {
			return i
		}
	}
	return -1
}
