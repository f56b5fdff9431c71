package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/airctrl/internal/detector"
)

// Distance returns the Euclidean distance between two screen points.
func Distance(a, b detector.Point2D) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

// AngleAtVertex returns the angle in degrees, in [0, 180], between the
// vectors b->a and b->c. A zero-length vector yields 180, which reads as a
// fully extended joint.
func AngleAtVertex(a, b, c detector.Point2D) float64 {
	ba := r2.Sub(vec(a), vec(b))
	bc := r2.Sub(vec(c), vec(b))

	na, nc := r2.Norm(ba), r2.Norm(bc)
	if na == 0 || nc == 0 {
		return 180.0
	}

	cos := r2.Dot(ba, bc) / (na * nc)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

func vec(p detector.Point2D) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
