package pointer

import (
	"math"

	"github.com/ayusman/airctrl/internal/detector"
)

// Mapper scales positions from camera frame pixels into a viewport.
type Mapper struct {
	FrameWidth, FrameHeight int
	ViewWidth, ViewHeight   int
}

// Map returns p in viewport coordinates, clamped to the viewport.
// A Mapper with a zero dimension returns p unchanged.
func (m Mapper) Map(p detector.Point2D) detector.Point2D {
	if m.FrameWidth <= 0 || m.FrameHeight <= 0 || m.ViewWidth <= 0 || m.ViewHeight <= 0 {
		return p
	}
	x := p.X * float64(m.ViewWidth) / float64(m.FrameWidth)
	y := p.Y * float64(m.ViewHeight) / float64(m.FrameHeight)
	return detector.Point2D{
		X: math.Max(0, math.Min(float64(m.ViewWidth-1), x)),
		Y: math.Max(0, math.Min(float64(m.ViewHeight-1), y)),
	}
}

// Target is a circular hover area, such as a menu button.
type Target struct {
	Name   string           `json:"name"`
	Center detector.Point2D `json:"center"`
	Radius float64          `json:"radius"`
}

// Hit reports whether p is over the target. Distance is measured in the
// Manhattan metric, so the hot area is a diamond inscribed in the circle.
func (t Target) Hit(p detector.Point2D) bool {
	return math.Abs(p.X-t.Center.X)+math.Abs(p.Y-t.Center.Y) < t.Radius
}

// HitTest returns the first target under p.
func HitTest(targets []Target, p detector.Point2D) (Target, bool) {
	for _, t := range targets {
		if t.Hit(p) {
			return t, true
		}
	}
	return Target{}, false
}
