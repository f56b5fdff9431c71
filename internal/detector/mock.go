package detector

import (
	"sync"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r2"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Pose lists which fingers of a synthetic hand are extended.
type Pose struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// Synthetic right hand, palm facing the camera, in a 640x480 frame.
var (
	poseWrist    = r2.Vec{X: 320, Y: 420}
	poseThumbCMC = r2.Vec{X: 370, Y: 395}
	poseMCPs     = [4]r2.Vec{
		{X: 360, Y: 320}, // index
		{X: 330, Y: 310}, // middle
		{X: 300, Y: 315}, // ring
		{X: 270, Y: 330}, // pinky
	}
)

// PoseLandmarks builds a right hand in pixel space with the given fingers
// extended. Extended fingers are straight lines away from the wrist; curled
// fingers fold back sharply at the knuckle, and a curled thumb tucks its tip
// against the index knuckle.
func PoseLandmarks(p Pose) HandLandmarks {
	h := HandLandmarks{
		Handedness: HandRight,
		Score:      0.95,
	}
	set := func(i int, v r2.Vec) {
		h.Points[i] = Point3D{X: v.X, Y: v.Y}
	}

	set(Wrist, poseWrist)
	set(ThumbCMC, poseThumbCMC)
	if p.Thumb {
		dir := r2.Unit(r2.Sub(poseThumbCMC, poseWrist))
		set(ThumbMCP, r2.Add(poseThumbCMC, r2.Scale(30, dir)))
		set(ThumbIP, r2.Add(poseThumbCMC, r2.Scale(55, dir)))
		set(ThumbTip, r2.Add(poseThumbCMC, r2.Scale(80, dir)))
	} else {
		set(ThumbMCP, r2.Vec{X: 340, Y: 400})
		set(ThumbIP, r2.Vec{X: 355, Y: 380})
		set(ThumbTip, r2.Vec{X: 380, Y: 355})
	}

	open := [4]bool{p.Index, p.Middle, p.Ring, p.Pinky}
	for f, mcp := range poseMCPs {
		base := IndexMCP + 4*f
		dir := r2.Unit(r2.Sub(mcp, poseWrist))
		set(base, mcp)
		if open[f] {
			set(base+1, r2.Add(mcp, r2.Scale(40, dir)))
			set(base+2, r2.Add(mcp, r2.Scale(70, dir)))
			set(base+3, r2.Add(mcp, r2.Scale(95, dir)))
			continue
		}
		perp := r2.Vec{X: dir.Y, Y: -dir.X}
		set(base+1, r2.Add(mcp, r2.Add(r2.Scale(-30, dir), r2.Scale(6, perp))))
		set(base+2, r2.Add(mcp, r2.Add(r2.Scale(-15, dir), r2.Scale(18, perp))))
		set(base+3, r2.Add(mcp, r2.Scale(20, perp)))
		for i := base + 1; i <= base+3; i++ {
			h.Points[i].Z = -0.03
		}
	}

	return h
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true})
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true})
}

// FistLandmarks returns a closed fist with the thumb tucked over the index knuckle.
func FistLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{})
}

// PointingUpLandmarks returns a hand with only the index finger extended.
func PointingUpLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true})
}

// VictoryLandmarks returns a hand with index and middle fingers extended.
func VictoryLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Index: true, Middle: true})
}

// ILoveYouLandmarks returns a hand with thumb, index and middle fingers extended.
func ILoveYouLandmarks() HandLandmarks {
	return PoseLandmarks(Pose{Thumb: true, Index: true, Middle: true})
}

// PinchLandmarks returns an open hand whose thumb tip touches the index tip.
func PinchLandmarks() HandLandmarks {
	h := OpenPalmLandmarks()
	tip := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{X: tip.X + 10, Y: tip.Y + 5, Z: tip.Z}
	return h
}

// WithHandedness returns a copy of h relabeled as the given hand.
func WithHandedness(h HandLandmarks, handedness string) HandLandmarks {
	h.Handedness = handedness
	return h
}

// Translated returns a copy of h shifted by (dx, dy) pixels.
func Translated(h HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}
