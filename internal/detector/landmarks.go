// Package detector provides hand detection interfaces and landmark types for gesture recognition.
package detector

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmark model.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// ErrMalformedLandmarks is returned when a landmark sequence is not exactly
// NumLandmarks finite points.
var ErrMalformedLandmarks = errors.New("malformed hand landmarks")

// Point3D represents a landmark position. X and Y are in pixel space,
// Z is the model's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY drops the depth component.
func (p Point3D) XY() Point2D {
	return Point2D{X: p.X, Y: p.Y}
}

func (p Point3D) finite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Point2D is a screen-space position in pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHandLandmarks builds a hand from a raw point sequence. Short, long or
// non-finite sequences are rejected so callers can treat them as an absent
// hand rather than reading a partially filled one.
func NewHandLandmarks(points []Point3D, handedness string) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, ErrMalformedLandmarks
	}
	copy(h.Points[:], points)
	h.Handedness = handedness
	if !h.Valid() {
		return HandLandmarks{}, ErrMalformedLandmarks
	}
	return h, nil
}

// Valid reports whether every landmark coordinate is finite.
func (h *HandLandmarks) Valid() bool {
	if h == nil {
		return false
	}
	for _, p := range h.Points {
		if !p.finite() {
			return false
		}
	}
	return true
}

// Point2D returns landmark i projected to screen space.
func (h *HandLandmarks) Point2D(i int) Point2D {
	return h.Points[i].XY()
}

// Slot names which hand a single-hand consumer follows.
type Slot int

const (
	// SlotPrimary prefers the right hand and falls back to the first hand supplied.
	SlotPrimary Slot = iota
	// SlotLeft follows only a hand labeled "Left".
	SlotLeft
	// SlotRight follows only a hand labeled "Right".
	SlotRight
)

// SelectHand picks the hand used by single-hand consumers: the first hand
// labeled "Right", otherwise the first hand in the order supplied.
// Returns nil when no valid hand is present.
func SelectHand(hands []HandLandmarks) *HandLandmarks {
	return SelectHandFor(hands, SlotPrimary)
}

// SelectHandFor applies the selection policy of the given slot.
// Invalid hands are skipped.
func SelectHandFor(hands []HandLandmarks, slot Slot) *HandLandmarks {
	var first *HandLandmarks
	for i := range hands {
		h := &hands[i]
		if !h.Valid() {
			continue
		}
		switch slot {
		case SlotLeft:
			if h.Handedness == HandLeft {
				return h
			}
		case SlotRight:
			if h.Handedness == HandRight {
				return h
			}
		default:
			if h.Handedness == HandRight {
				return h
			}
			if first == nil {
				first = h
			}
		}
	}
	return first
}

// SelectedIndexTip returns the index fingertip of the selected hand.
func SelectedIndexTip(hands []HandLandmarks) (Point2D, bool) {
	h := SelectHand(hands)
	if h == nil {
		return Point2D{}, false
	}
	return h.Point2D(IndexTip), true
}

// PalmCenter returns the wrist of the selected hand, used as the palm anchor.
func PalmCenter(hands []HandLandmarks) (Point2D, bool) {
	h := SelectHand(hands)
	if h == nil {
		return Point2D{}, false
	}
	return h.Point2D(Wrist), true
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new HandLandmarks instance with normalized points.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := toVec(h.Points[Wrist])
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = fromVec(r3.Sub(toVec(h.Points[i]), wrist))
	}

	scale := r3.Norm(toVec(normalized.Points[MiddleMCP]))
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = fromVec(r3.Scale(1/scale, toVec(normalized.Points[i])))
	}

	return normalized
}

func toVec(p Point3D) r3.Vec   { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }
func fromVec(v r3.Vec) Point3D { return Point3D{X: v.X, Y: v.Y, Z: v.Z} }
