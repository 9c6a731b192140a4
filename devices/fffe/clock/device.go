// Package clock implements the frame pacer driving the 60Hz timer and display cadence.
package clock

import (
	"time"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// TimeFunc returns the current time.
type TimeFunc func() time.Time

// Device reports when a frame period has elapsed.
type Device struct {
	now    TimeFunc      // Time source.
	period time.Duration // Frame period.
	start  time.Time     // Startup time.
	last   time.Time     // Time of the last frame tick.
}

var _ devices.Device = &Device{}

// New creates a clock with the given time source. A nil source selects time.Now.
func New(now TimeFunc) *Device {
	if now == nil {
		now = time.Now
	}

	d := &Device{
		now:    now,
		period: arch.FramePeriod,
	}
	d.reset()
	return d
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialClock)
}

// Startup restarts the clock.
func (d *Device) Startup() error {
	d.reset()
	return nil
}

// Shutdown has nothing to release.
func (d *Device) Shutdown() error {
	return nil
}

// Period returns the frame period.
func (d *Device) Period() time.Duration {
	return d.period
}

// Due returns true if at least one frame period has passed since the
// previous tick. Ticks stay on the period grid, so a late call does not
// delay the next tick. If more than one period was missed, the grid is
// moved to now and the missed ticks are dropped.
func (d *Device) Due() bool {
	now := d.now()
	if now.Sub(d.last) < d.period {
		return false
	}

	d.last = d.last.Add(d.period)
	if now.Sub(d.last) >= d.period {
		d.last = now
	}
	return true
}

// Uptime returns the time since startup.
func (d *Device) Uptime() time.Duration {
	return d.now().Sub(d.start)
}

func (d *Device) reset() {
	d.start = d.now()
	d.last = d.start
}
