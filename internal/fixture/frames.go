// Package fixture generates synthetic camera frames for capture and
// pipeline tests.
package fixture

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame size of every generated frame.
const (
	Width  = 640
	Height = 480
)

// SolidFrame returns a BGR frame filled with gray level v.
func SolidFrame(v uint8) *gocv.Mat {
	s := float64(v)
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(s, s, s, 0), Height, Width, gocv.MatTypeCV8UC3)
	return &m
}

// MovingSquare returns n frames of a white square sliding left to right
// across a black background, size pixels per side.
func MovingSquare(n, size int) ([]*gocv.Mat, error) {
	if n < 1 || size < 1 || size >= Height {
		return nil, fmt.Errorf("invalid sequence: %d frames of %dpx", n, size)
	}

	step := 0
	if n > 1 {
		step = (Width - size) / (n - 1)
	}

	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frame := SolidFrame(0)
		x := i * step
		y := (Height - size) / 2
		gocv.Rectangle(frame, image.Rect(x, y, x+size, y+size), color.RGBA{R: 255, G: 255, B: 255, A: 0}, -1)
		frames = append(frames, frame)
	}
	return frames, nil
}

// Close releases every frame.
func Close(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
