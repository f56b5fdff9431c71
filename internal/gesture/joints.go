package gesture

import (
	"strings"

	"github.com/ayusman/airctrl/internal/detector"
)

// Finger identifies one of the five fingers.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	numFingers
)

var fingerNames = [numFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= numFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// joint is a three-landmark angle check with the vertex in the middle.
type joint struct {
	a, vertex, c int
}

// chains lists the two joints measured for each finger: the knuckle joint
// (seen from the wrist) and the next joint out along the finger.
var chains = [numFingers][2]joint{
	Thumb:  {{detector.Wrist, detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP}},
	Index:  {{detector.Wrist, detector.IndexMCP, detector.IndexPIP}, {detector.IndexMCP, detector.IndexPIP, detector.IndexDIP}},
	Middle: {{detector.Wrist, detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP}},
	Ring:   {{detector.Wrist, detector.RingMCP, detector.RingPIP}, {detector.RingMCP, detector.RingPIP, detector.RingDIP}},
	Pinky:  {{detector.Wrist, detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP}},
}

// FingerStates records which fingers are bent in one frame.
// The zero value has every finger open; use AllBent for the no-hand default.
type FingerStates struct {
	bent [numFingers]bool
}

// AllBent is the state reported when no hand is available.
func AllBent() FingerStates {
	var s FingerStates
	for f := range s.bent {
		s.bent[f] = true
	}
	return s
}

// OpenFingers returns states with exactly the listed fingers open.
func OpenFingers(open ...Finger) FingerStates {
	s := AllBent()
	for _, f := range open {
		s.bent[f] = false
	}
	return s
}

// Bent reports whether f is bent.
func (s FingerStates) Bent(f Finger) bool { return s.bent[f] }

// Open reports whether f is extended.
func (s FingerStates) Open(f Finger) bool { return !s.bent[f] }

// Only reports whether exactly the listed fingers are open and all others bent.
func (s FingerStates) Only(open ...Finger) bool {
	return s == OpenFingers(open...)
}

// String renders the states thumb-first, 'o' for open and '-' for bent.
func (s FingerStates) String() string {
	var b strings.Builder
	for _, bent := range s.bent {
		if bent {
			b.WriteByte('-')
		} else {
			b.WriteByte('o')
		}
	}
	return b.String()
}

// threshold returns the bend threshold for joint j (0 or 1) of finger f.
func (c *Classifier) threshold(f Finger, j int) float64 {
	t := c.cfg.AngleThreshold
	switch {
	case f == Thumb && j == 0:
		t += c.cfg.ThumbBaseOffset
	case f != Thumb && j == 1:
		t += c.cfg.FingerJointOffset
	}
	return t
}

// IsBent reports whether finger f of hand is bent: either of its two joint
// angles falls below its threshold. A missing hand counts as bent.
func (c *Classifier) IsBent(hand *detector.HandLandmarks, f Finger) bool {
	if !hand.Valid() {
		return true
	}
	for j, jt := range chains[f] {
		angle := AngleAtVertex(hand.Point2D(jt.a), hand.Point2D(jt.vertex), hand.Point2D(jt.c))
		if angle < c.threshold(f, j) {
			return true
		}
	}
	return false
}

// IsOpen is the negation of IsBent.
func (c *Classifier) IsOpen(hand *detector.HandLandmarks, f Finger) bool {
	return !c.IsBent(hand, f)
}

// FingerStates derives the bend state of every finger of hand.
func (c *Classifier) FingerStates(hand *detector.HandLandmarks) FingerStates {
	var s FingerStates
	for f := Thumb; f < numFingers; f++ {
		s.bent[f] = c.IsBent(hand, f)
	}
	return s
}
