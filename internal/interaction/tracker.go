// Package interaction runs the per-frame control flow that turns detected
// hands into a stable gesture label, a pointer position and click signals.
package interaction

import (
	"fmt"
	"time"

	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/pointer"
	"github.com/ayusman/airctrl/internal/timeutil"
)

// PointerSource selects which landmark drives the pointer.
type PointerSource string

const (
	// SourceIndexTip follows the index finger tip.
	SourceIndexTip PointerSource = "index_tip"
	// SourcePalm follows the wrist.
	SourcePalm PointerSource = "palm"
)

// ParsePointerSource validates a pointer source name.
func ParsePointerSource(s string) (PointerSource, error) {
	switch PointerSource(s) {
	case SourceIndexTip, SourcePalm:
		return PointerSource(s), nil
	case "":
		return SourceIndexTip, nil
	}
	return "", fmt.Errorf("unknown pointer source %q", s)
}

// Config holds the settings of one Tracker.
type Config struct {
	Gesture gesture.Config
	Dwell   pointer.DwellConfig
	Source  PointerSource
	Slot    detector.Slot
	// Targets are hover areas in frame pixels.
	Targets []pointer.Target
}

// DefaultConfig returns a primary-slot tracker following the index tip.
func DefaultConfig() Config {
	return Config{
		Gesture: gesture.DefaultConfig(),
		Dwell:   pointer.DefaultDwellConfig(),
		Source:  SourceIndexTip,
		Slot:    detector.SlotPrimary,
	}
}

// Frame is the result of processing one video frame.
type Frame struct {
	Timestamp  time.Time `json:"timestamp"`
	Hands      int       `json:"hands"`
	Handedness string    `json:"handedness,omitempty"`
	// Raw is the unstabilized classification of this frame.
	Raw gesture.Label `json:"raw"`
	// Label is the confirmed label.
	Label      gesture.Label    `json:"label"`
	Pointer    detector.Point2D `json:"pointer"`
	HasPointer bool             `json:"has_pointer"`
	// Pinch is true while thumb and index tips touch.
	Pinch bool `json:"pinch"`
	// Click is the one-shot dwell click.
	Click         bool    `json:"click"`
	DwellProgress float64 `json:"dwell_progress"`
	// Hover names the target under the pointer.
	Hover string `json:"hover,omitempty"`
}

// Tracker owns the cross-frame state for one hand slot: a label stabilizer
// and a dwell detector. It is not safe for concurrent use.
type Tracker struct {
	cfg        Config
	clock      timeutil.Clock
	classifier *gesture.Classifier
	stabilizer *gesture.Stabilizer
	dwell      *pointer.DwellDetector
}

// NewTracker creates a Tracker. A nil clock uses the wall clock.
func NewTracker(cfg Config, clock timeutil.Clock) *Tracker {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if cfg.Source == "" {
		cfg.Source = SourceIndexTip
	}
	return &Tracker{
		cfg:        cfg,
		clock:      clock,
		classifier: gesture.NewClassifier(cfg.Gesture),
		stabilizer: gesture.NewStabilizer(cfg.Gesture.StabilityWindow, cfg.Gesture.MajorityRatio),
		dwell:      pointer.NewDwellDetector(cfg.Dwell, clock),
	}
}

// Config returns the tracker's settings.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Process runs one frame: hand selection, classification, stabilization,
// pointer extraction and dwell detection.
func (t *Tracker) Process(hands []detector.HandLandmarks) Frame {
	f := Frame{
		Timestamp: t.clock.Now(),
		Hands:     len(hands),
	}

	hand := detector.SelectHandFor(hands, t.cfg.Slot)
	if hand == nil {
		f.Raw = gesture.LabelNone
		f.Label = t.stabilizer.Update(gesture.LabelNone)
		t.dwell.Update(detector.Point2D{}, false)
		return f
	}

	f.Handedness = hand.Handedness
	f.Raw = t.classifier.Classify(hand)
	f.Label = t.stabilizer.Update(f.Raw)
	f.Pinch = t.classifier.IsPinch(hand)

	f.Pointer = t.pointerOf(hand)
	f.HasPointer = true
	f.Click = t.dwell.Update(f.Pointer, true)
	f.DwellProgress = t.dwell.Progress()
	if target, ok := pointer.HitTest(t.cfg.Targets, f.Pointer); ok {
		f.Hover = target.Name
	}
	return f
}

func (t *Tracker) pointerOf(hand *detector.HandLandmarks) detector.Point2D {
	if t.cfg.Source == SourcePalm {
		return hand.Point2D(detector.Wrist)
	}
	return hand.Point2D(detector.IndexTip)
}

// StabilizerLen returns the number of labels in the stabilizer window.
func (t *Tracker) StabilizerLen() int {
	return t.stabilizer.Len()
}

// Reset clears the stabilizer and dwell state.
func (t *Tracker) Reset() {
	t.stabilizer.Reset()
	t.dwell.Reset()
}
