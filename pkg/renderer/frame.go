package renderer

import (
	"image"
	"image/color"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

// Frame is a finished image: one gamma corrected RGB triple per pixel with every channel in
// [0, 0.999]. Pixels are row-major with row 0 at the top of the image.
type Frame struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrame creates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the pixel at column x of row y
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the pixel at column x of row y
func (f *Frame) Set(x, y int, c core.Vec3) {
	f.Pixels[y*f.Width+x] = c
}

// ChannelByte scales a finished channel value to 0-255 as int(256*c)
func ChannelByte(c float64) uint8 {
	return uint8(max(0, min(255, int(256*c))))
}

// ToRGBA converts the frame to an 8-bit image
func (f *Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, toRGBA(f.At(x, y)))
		}
	}
	return img
}

func toRGBA(c core.Vec3) color.RGBA {
	return color.RGBA{
		R: ChannelByte(c.X),
		G: ChannelByte(c.Y),
		B: ChannelByte(c.Z),
		A: 255,
	}
}
