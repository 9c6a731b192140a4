// Package hexpad implements the 16-key hex keypad on top of a GLFW keyboard
// and, if one is connected, a gamepad.
package hexpad

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/retroenv/retrogolib/log"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// KeySource reports the state of keyboard keys. *glfw.Window implements it.
type KeySource interface {
	GetKey(key glfw.Key) glfw.Action
}

// Keyboard maps keypad codes 0x0-0xF to keyboard keys:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var Keyboard = [arch.KeyCount]glfw.Key{
	0x0: glfw.KeyX,
	0x1: glfw.Key1,
	0x2: glfw.Key2,
	0x3: glfw.Key3,
	0x4: glfw.KeyQ,
	0x5: glfw.KeyW,
	0x6: glfw.KeyE,
	0x7: glfw.KeyA,
	0x8: glfw.KeyS,
	0x9: glfw.KeyD,
	0xa: glfw.KeyZ,
	0xb: glfw.KeyC,
	0xc: glfw.Key4,
	0xd: glfw.KeyR,
	0xe: glfw.KeyF,
	0xf: glfw.KeyV,
}

// Gamepad maps gamepad buttons to keypad codes.
var Gamepad = map[glfw.GamepadButton]int{
	glfw.ButtonDpadUp:    0x2,
	glfw.ButtonDpadLeft:  0x4,
	glfw.ButtonDpadRight: 0x6,
	glfw.ButtonDpadDown:  0x8,
	glfw.ButtonA:         0x5,
	glfw.ButtonB:         0x0,
}

// Device defines the keypad state.
type Device struct {
	keys      KeySource
	logger    *log.Logger
	joy       glfw.Joystick
	pad       [arch.KeyCount]bool // Keys held through the gamepad.
	connected bool                // A gamepad is connected.
}

var _ devices.Device = &Device{}
var _ devices.Keypad = &Device{}

// New creates a keypad reading the given key source.
func New(keys KeySource, logger *log.Logger) *Device {
	return &Device{
		keys:   keys,
		logger: logger,
	}
}

// ID returns the device id.
func (d *Device) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialKeypad)
}

// Startup detects any connected gamepad.
func (d *Device) Startup() error {
	glfw.SetJoystickCallback(d.configure)

	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		if joy.Present() && joy.IsGamepad() {
			d.configure(joy, glfw.Connected)
			break
		}
	}

	return nil
}

// Shutdown clears up device resources.
func (d *Device) Shutdown() error {
	glfw.SetJoystickCallback(nil)
	d.connected = false
	d.pad = [arch.KeyCount]bool{}
	return nil
}

// Update reads the gamepad state. It must be called from the main thread,
// once per frame.
func (d *Device) Update() {
	if !d.connected {
		return
	}
	d.apply(d.joy.GetGamepadState())
}

// IsKeyDown returns true if the key is held on the keyboard or the gamepad.
func (d *Device) IsKeyDown(code int) bool {
	if code < 0 || code >= arch.KeyCount {
		return false
	}

	if d.pad[code] {
		return true
	}
	return d.keys != nil && d.keys.GetKey(Keyboard[code]) == glfw.Press
}

// apply translates gamepad buttons into keypad state.
func (d *Device) apply(state *glfw.GamepadState) {
	d.pad = [arch.KeyCount]bool{}
	if state == nil {
		return
	}

	for btn, code := range Gamepad {
		if int(btn) < len(state.Buttons) && state.Buttons[btn] == glfw.Press {
			d.pad[code] = true
		}
	}
}

// configure is called whenever a joystick is connected or disconnected from the system.
func (d *Device) configure(joy glfw.Joystick, event glfw.PeripheralEvent) {
	d.connected = event == glfw.Connected && joy.IsGamepad()
	d.joy = joy
	d.pad = [arch.KeyCount]bool{}

	if d.connected {
		d.logger.Info("Gamepad connected", log.String("name", joy.GetGamepadName()))
	} else {
		d.logger.Info("Gamepad disconnected")
	}
}
