package gesture

import "github.com/ayusman/airctrl/internal/detector"

// Label is a discrete gesture classification.
type Label string

// Gesture labels. The string values are what hosts and plugins see.
const (
	LabelPinch            Label = "pinch"
	LabelClosedFist       Label = "Closed_Fist"
	LabelThumbUp          Label = "Thumb_Up"
	LabelPointingUp       Label = "Pointing_Up"
	LabelOpenPalm         Label = "Open_Palm"
	LabelVictory          Label = "Victory"
	LabelILoveYou         Label = "ILoveYou"
	LabelThreeFingersOpen Label = "three_fingers_open"
	LabelUnknown          Label = "Unknown"
	// LabelNone means no hand is present or the label is not yet stable.
	LabelNone Label = "None"
)

// Labels lists every label a classification can produce, in decision order.
var Labels = []Label{
	LabelPinch,
	LabelClosedFist,
	LabelThumbUp,
	LabelPointingUp,
	LabelOpenPalm,
	LabelVictory,
	LabelILoveYou,
	LabelThreeFingersOpen,
	LabelUnknown,
}

// ParseLabel returns the label with the given name.
func ParseLabel(s string) (Label, bool) {
	if s == string(LabelNone) {
		return LabelNone, true
	}
	for _, l := range Labels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Measurements are the distance facts the decision order needs besides the
// finger states.
type Measurements struct {
	// PinchDistance is thumb tip to index tip.
	PinchDistance float64
	// ThumbToIndexMCP is thumb tip to index knuckle.
	ThumbToIndexMCP float64
	// PalmSpread is thumb base to pinky base.
	PalmSpread float64
	// ThumbAboveBase is true when the thumb tip is higher on screen than the thumb base.
	ThumbAboveBase bool
}

// Classifier maps a single hand to a gesture label. It holds only
// configuration and is safe for concurrent use.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Config returns the classifier's thresholds.
func (c *Classifier) Config() Config {
	return c.cfg
}

// IsPinch reports whether the thumb tip and index tip are closer than the
// pinch threshold.
func (c *Classifier) IsPinch(hand *detector.HandLandmarks) bool {
	if !hand.Valid() {
		return false
	}
	return Distance(hand.Point2D(detector.ThumbTip), hand.Point2D(detector.IndexTip)) < c.cfg.PinchThresholdPx
}

// Measure computes the auxiliary distances of hand.
func (c *Classifier) Measure(hand *detector.HandLandmarks) Measurements {
	thumbTip := hand.Point2D(detector.ThumbTip)
	thumbBase := hand.Point2D(detector.ThumbCMC)
	return Measurements{
		PinchDistance:   Distance(thumbTip, hand.Point2D(detector.IndexTip)),
		ThumbToIndexMCP: Distance(thumbTip, hand.Point2D(detector.IndexMCP)),
		PalmSpread:      Distance(thumbBase, hand.Point2D(detector.PinkyMCP)),
		ThumbAboveBase:  thumbTip.Y < thumbBase.Y,
	}
}

// Classify returns the label of hand for one frame, or LabelNone when the
// hand is missing or malformed.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Label {
	if !hand.Valid() {
		return LabelNone
	}
	return c.Decide(c.FingerStates(hand), c.Measure(hand))
}

// Decide applies the decision order to precomputed facts. The first matching
// rule wins, so ILoveYou shadows three_fingers_open, which shares its finger
// pattern.
func (c *Classifier) Decide(s FingerStates, m Measurements) Label {
	switch {
	case m.PinchDistance < c.cfg.PinchThresholdPx:
		return LabelPinch
	case s.Only() && m.ThumbToIndexMCP < c.cfg.FistThumbProximityPx:
		return LabelClosedFist
	case s.Only(Thumb) && m.ThumbAboveBase:
		return LabelThumbUp
	case s.Only(Index):
		return LabelPointingUp
	case s.Only(Thumb, Index, Middle, Ring, Pinky) && m.PalmSpread > c.cfg.OpenPalmSpreadPx:
		return LabelOpenPalm
	case s.Only(Index, Middle):
		return LabelVictory
	case s.Only(Thumb, Index, Middle):
		return LabelILoveYou
	case s.Only(Thumb, Index, Middle):
		// Unreachable with the current patterns; kept so the label stays in the order.
		return LabelThreeFingersOpen
	default:
		return LabelUnknown
	}
}
