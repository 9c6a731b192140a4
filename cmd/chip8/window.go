package main

import (
	"context"

	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
	"github.com/hexaflex/chip8/devices/fffe/hexpad"
	"github.com/hexaflex/chip8/devices/fffe/mono"
	"github.com/hexaflex/chip8/devices/fffe/sdlhost"
)

// glfwKeys maps shortcut keys to actions for the GL backend.
var glfwKeys = map[glfw.Key]action{
	glfw.KeyF1: actionHelp,
	glfw.KeyF5: actionReload,
	glfw.KeyP:  actionPause,
	glfw.KeyN:  actionStep,
	glfw.KeyT:  actionTrace,
}

// sdlKeys maps shortcut keys to actions for the SDL backend.
var sdlKeys = map[sdl.Keycode]action{
	sdl.K_F1: actionHelp,
	sdl.K_F5: actionReload,
	sdl.K_p:  actionPause,
	sdl.K_n:  actionStep,
	sdl.K_t:  actionTrace,
}

// runSDL runs the program in an SDL2 window.
func (a *App) runSDL(ctx context.Context, program []byte) error {
	host := sdlhost.New(sdlhost.Config{
		Title:       Version(),
		ScaleFactor: a.config.ScaleFactor,
		Fullscreen:  a.config.Fullscreen,
		Foreground:  a.config.Foreground.RGBA(),
		Background:  a.config.Background.RGBA(),
	}, a.logger)

	host.OnKey = func(key sdl.Keycode) {
		a.perform(sdlKeys[key])
	}
	a.setTitle = host.SetTitle

	return a.run(ctx, host, program, true)
}

// runGL runs the program in a GLFW window rendered with OpenGL.
func (a *App) runGL(ctx context.Context, program []byte) error {
	window, err := a.initGL()
	if err != nil {
		return err
	}

	defer glfw.Terminate()
	defer window.Destroy()

	host := newGLFWHost(window, a.config, a.logger)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, act glfw.Action, _ glfw.ModifierKey) {
		if act != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			w.SetShouldClose(true)
			return
		}
		a.perform(glfwKeys[key])
	})
	a.setTitle = window.SetTitle

	return a.run(ctx, host, program, true)
}

// initGL initializes GLFW and openGL.
func (a *App) initGL() (*glfw.Window, error) {
	err := glfw.Init()
	if err != nil {
		return nil, errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor

	width := arch.DisplayWidth * a.config.ScaleFactor
	height := arch.DisplayHeight * a.config.ScaleFactor

	if a.config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()

		width = mode.Width
		height = mode.Height

		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Maximized, glfw.True)
	} else {
		glfw.WindowHint(glfw.Decorated, glfw.True)
		glfw.WindowHint(glfw.Maximized, glfw.False)
	}

	window, err := glfw.CreateWindow(width, height, Version(), monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	window.MakeContextCurrent()
	glfw.SwapInterval(0)

	err = gl.Init()
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, errors.Wrapf(err, "gl.Init failed")
	}

	a.logger.Debug("OpenGL initialized", log.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	gl.ClearColor(0, 0, 0, 1.0)
	return window, nil
}

// glfwHost presents the machine in a GLFW window: the display is drawn
// by the mono device and input is read by the hexpad device.
type glfwHost struct {
	window  *glfw.Window
	display *mono.Device
	keypad  *hexpad.Device
	devices devices.Map
	logger  *log.Logger
}

var _ devices.Host = &glfwHost{}
var _ devices.Device = &glfwHost{}

func newGLFWHost(window *glfw.Window, config *Config, logger *log.Logger) *glfwHost {
	h := &glfwHost{
		window:  window,
		display: mono.New(config.Foreground, config.Background),
		keypad:  hexpad.New(window, logger),
		logger:  logger,
	}

	h.devices.Connect(h.display)
	h.devices.Connect(h.keypad)
	return h
}

func (h *glfwHost) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialHost)
}

func (h *glfwHost) Startup() error {
	return h.devices.Startup(h.logger)
}

func (h *glfwHost) Shutdown() error {
	return h.devices.Shutdown(h.logger)
}

func (h *glfwHost) Update(fb []byte, width, height int) {
	h.display.Update(fb, width, height)

	fw, fh := h.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fw), int32(fh))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	h.display.Draw()
	h.window.SwapBuffers()
}

func (h *glfwHost) IsKeyDown(code int) bool {
	return h.keypad.IsKeyDown(code)
}

// IsOpen pumps window events and reports whether the window is still open.
func (h *glfwHost) IsOpen() bool {
	glfw.PollEvents()
	h.keypad.Update()
	return !h.window.ShouldClose()
}
