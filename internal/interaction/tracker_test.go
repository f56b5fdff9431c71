package interaction

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/airctrl/internal/detector"
	"github.com/ayusman/airctrl/internal/gesture"
	"github.com/ayusman/airctrl/internal/pointer"
	"github.com/ayusman/airctrl/internal/timeutil"
)

const frameInterval = 33 * time.Millisecond

func newTestTracker(t *testing.T, cfg Config) (*Tracker, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewTracker(cfg, clock), clock
}

func hands(h ...detector.HandLandmarks) []detector.HandLandmarks { return h }

func TestTracker_AbsentHands(t *testing.T) {
	tr, clock := newTestTracker(t, DefaultConfig())

	for i := 0; i < 3; i++ {
		tr.Process(hands(detector.VictoryLandmarks()))
		clock.Advance(frameInterval)
	}
	if tr.StabilizerLen() != 3 {
		t.Fatalf("stabilizer length = %d, want 3", tr.StabilizerLen())
	}

	var labels []gesture.Label
	for i := 0; i < 5; i++ {
		f := tr.Process(nil)
		labels = append(labels, f.Label)
		if tr.StabilizerLen() != 0 {
			t.Fatalf("stabilizer length = %d after absence, want 0", tr.StabilizerLen())
		}
		if f.HasPointer || f.Click || f.Pinch {
			t.Errorf("absent frame reported pointer state: %+v", f)
		}
		clock.Advance(frameInterval)
	}

	want := []gesture.Label{gesture.LabelNone, gesture.LabelNone, gesture.LabelNone, gesture.LabelNone, gesture.LabelNone}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_StabilizesLabel(t *testing.T) {
	tr, clock := newTestTracker(t, DefaultConfig())

	var got []gesture.Label
	for _, h := range []detector.HandLandmarks{
		detector.ThumbsUpLandmarks(),
		detector.ThumbsUpLandmarks(),
		detector.ThumbsUpLandmarks(),
		detector.FistLandmarks(), // single noisy frame
		detector.ThumbsUpLandmarks(),
	} {
		f := tr.Process(hands(h))
		got = append(got, f.Label)
		clock.Advance(frameInterval)
	}

	want := []gesture.Label{
		gesture.LabelNone,
		gesture.LabelNone,
		gesture.LabelThumbUp,
		gesture.LabelThumbUp,
		gesture.LabelThumbUp,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_PointerAndDwell(t *testing.T) {
	tr, clock := newTestTracker(t, DefaultConfig())
	hand := detector.PointingUpLandmarks()
	tip := hand.Point2D(detector.IndexTip)

	clicks := 0
	var last Frame
	for elapsed := time.Duration(0); elapsed <= 900*time.Millisecond; elapsed += 100 * time.Millisecond {
		last = tr.Process(hands(hand))
		if last.Click {
			clicks++
			if elapsed != 800*time.Millisecond {
				t.Errorf("click at %v, want 800ms", elapsed)
			}
		}
		clock.Advance(100 * time.Millisecond)
	}

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if !last.HasPointer || last.Pointer != tip {
		t.Errorf("pointer = %+v (%v), want index tip %+v", last.Pointer, last.HasPointer, tip)
	}
	if last.Handedness != detector.HandRight || last.Hands != 1 {
		t.Errorf("unexpected hand metadata: %+v", last)
	}
	if last.Label != gesture.LabelPointingUp {
		t.Errorf("label = %s, want Pointing_Up", last.Label)
	}
}

func TestTracker_PalmSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourcePalm
	tr, _ := newTestTracker(t, cfg)

	hand := detector.OpenPalmLandmarks()
	f := tr.Process(hands(hand))
	if f.Pointer != hand.Point2D(detector.Wrist) {
		t.Errorf("pointer = %+v, want wrist", f.Pointer)
	}
}

func TestTracker_Hover(t *testing.T) {
	hand := detector.PointingUpLandmarks()
	tip := hand.Point2D(detector.IndexTip)

	cfg := DefaultConfig()
	cfg.Targets = []pointer.Target{
		{Name: "far", Center: detector.Point2D{X: tip.X + 500, Y: tip.Y}, Radius: 40},
		{Name: "play", Center: detector.Point2D{X: tip.X + 10, Y: tip.Y - 10}, Radius: 40},
		{Name: "shadowed", Center: tip, Radius: 40},
	}
	tr, _ := newTestTracker(t, cfg)

	if f := tr.Process(hands(hand)); f.Hover != "play" {
		t.Errorf("hover = %q, want first hit %q", f.Hover, "play")
	}
	if f := tr.Process(nil); f.Hover != "" {
		t.Errorf("hover without a hand = %q", f.Hover)
	}
}

func TestTracker_Pinch(t *testing.T) {
	tr, _ := newTestTracker(t, DefaultConfig())

	f := tr.Process(hands(detector.PinchLandmarks()))
	if !f.Pinch || f.Raw != gesture.LabelPinch {
		t.Errorf("pinch frame = %+v", f)
	}
	f = tr.Process(hands(detector.OpenPalmLandmarks()))
	if f.Pinch {
		t.Error("open palm should not pinch")
	}
}

func TestTracker_Slots(t *testing.T) {
	left := detector.WithHandedness(detector.VictoryLandmarks(), detector.HandLeft)
	right := detector.OpenPalmLandmarks()

	cfg := DefaultConfig()
	cfg.Gesture.StabilityWindow = 1
	cfg.Slot = detector.SlotLeft
	leftTracker, _ := newTestTracker(t, cfg)
	cfg.Slot = detector.SlotRight
	rightTracker, _ := newTestTracker(t, cfg)

	if got := leftTracker.Process(hands(right, left)).Label; got != gesture.LabelVictory {
		t.Errorf("left slot label = %s, want Victory", got)
	}
	if got := rightTracker.Process(hands(right, left)).Label; got != gesture.LabelOpenPalm {
		t.Errorf("right slot label = %s, want Open_Palm", got)
	}
	if got := leftTracker.Process(hands(right)).Label; got != gesture.LabelNone {
		t.Errorf("left slot without left hand = %s, want None", got)
	}
}

func TestTracker_MalformedHandIsAbsent(t *testing.T) {
	tr, _ := newTestTracker(t, DefaultConfig())
	tr.Process(hands(detector.FistLandmarks()))
	tr.Process(hands(detector.FistLandmarks()))

	broken := detector.FistLandmarks()
	broken.Points[detector.IndexTip].Y = math.Inf(1)
	f := tr.Process(hands(broken))

	if f.Label != gesture.LabelNone || f.HasPointer {
		t.Errorf("malformed hand frame = %+v", f)
	}
	if tr.StabilizerLen() != 0 {
		t.Errorf("stabilizer length = %d, want 0", tr.StabilizerLen())
	}
}

func TestTracker_Reset(t *testing.T) {
	tr, _ := newTestTracker(t, DefaultConfig())
	tr.Process(hands(detector.FistLandmarks()))
	tr.Reset()
	if tr.StabilizerLen() != 0 {
		t.Errorf("stabilizer length = %d after Reset", tr.StabilizerLen())
	}
}

func TestParsePointerSource(t *testing.T) {
	for in, want := range map[string]PointerSource{"": SourceIndexTip, "index_tip": SourceIndexTip, "palm": SourcePalm} {
		got, err := ParsePointerSource(in)
		if err != nil || got != want {
			t.Errorf("ParsePointerSource(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePointerSource("elbow"); err == nil {
		t.Error("expected error for unknown source")
	}
}
