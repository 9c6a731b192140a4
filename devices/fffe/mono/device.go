// Package mono implements a monochrome OpenGL display for the 64x32 framebuffer.
package mono

import (
	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/pkg/errors"

	"github.com/hexaflex/chip8/arch"
	"github.com/hexaflex/chip8/devices"
)

// Device renders the framebuffer as a full window textured quad.
type Device struct {
	pixels      [arch.FramebufferSize]byte // Texture data; 0x00 or 0xff per pixel.
	foreground  Color                      // Color of lit pixels.
	background  Color                      // Color of dark pixels.
	shader      uint32
	vao         uint32
	vbo         uint32
	texture     uint32
	dirty       bool // Texture needs uploading.
	initialized bool
}

var _ devices.Device = &Device{}
var _ devices.Display = &Device{}

// New creates a new display with the given colors.
func New(foreground, background Color) *Device {
	return &Device{
		foreground: foreground,
		background: background,
	}
}

// ID returns the device identifier.
func (d *Device) ID() devices.ID {
	return devices.NewID(devices.Vendor, devices.SerialDisplay)
}

// Startup creates the GL resources. It requires a current GL context.
func (d *Device) Startup() error {
	var err error

	d.shader, err = compileProgram(vertex, fragment)
	if err != nil {
		return errors.Wrapf(err, "failed to compile shaders")
	}

	gl.UseProgram(d.shader)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	vertAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertPos")))
	texCoordAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertTexCoord")))

	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointer(vertAttrib, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))

	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))

	fg := d.foreground.vec4()
	bg := d.background.vec4()
	gl.Uniform4fv(gl.GetUniformLocation(d.shader, glStr("foreground")), 1, &fg[0])
	gl.Uniform4fv(gl.GetUniformLocation(d.shader, glStr("background")), 1, &bg[0])

	d.texture = makeTexture()
	d.dirty = true
	d.initialized = true
	return nil
}

// Shutdown releases the GL resources.
func (d *Device) Shutdown() error {
	if !d.initialized {
		return nil
	}

	d.initialized = false
	gl.DeleteTextures(1, &d.texture)
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteProgram(d.shader)
	return nil
}

// Update copies the framebuffer. The texture is uploaded on the next Draw.
func (d *Device) Update(fb []byte, width, height int) {
	if width != arch.DisplayWidth || height != arch.DisplayHeight {
		return
	}

	d.dirty = pack(d.pixels[:], fb) || d.dirty
}

// Draw renders the display contents into the current framebuffer.
func (d *Device) Draw() {
	if !d.initialized {
		return
	}

	if d.dirty {
		uploadTexture(d.texture, gl.R8, arch.DisplayWidth, arch.DisplayHeight, gl.RED, gl.UNSIGNED_BYTE, d.pixels[:])
		d.dirty = false
	}

	gl.UseProgram(d.shader)
	gl.BindVertexArray(d.vao)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)

	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// pack converts framebuffer cells into texture intensities.
// Returns true if dst changed.
func pack(dst, fb []byte) bool {
	changed := false
	for i, v := range fb[:min(len(fb), len(dst))] {
		p := byte(0)
		if v != 0 {
			p = 0xff
		}
		if dst[i] != p {
			dst[i] = p
			changed = true
		}
	}
	return changed
}

var quadVertices = []float32{
	//  X, Y, Z, U, V
	-1.0, -1.0, 0.0, 0.0, 1.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	1.0, 1.0, 0.0, 1.0, 0.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
}
