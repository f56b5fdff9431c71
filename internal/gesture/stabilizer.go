package gesture

import "math"

// StabilizerState is the fill state of a Stabilizer's window.
type StabilizerState int

const (
	// Filling means fewer than capacity labels have been seen since the last reset.
	Filling StabilizerState = iota
	// Stable means the window is full and majority voting is active.
	Stable
)

func (s StabilizerState) String() string {
	switch s {
	case Filling:
		return "filling"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// Stabilizer debounces a per-frame label stream by majority vote over a
// fixed window. It is owned by a single input stream and is not safe for
// concurrent use.
type Stabilizer struct {
	window    []Label // ring buffer, len == capacity
	next      int
	count     int
	need      int
	confirmed Label
}

// NewStabilizer creates a Stabilizer voting over the last window labels.
// A label is confirmed when it fills at least ratio of the window.
func NewStabilizer(window int, ratio float64) *Stabilizer {
	if window < 1 {
		window = 1
	}
	need := int(math.Ceil(ratio*float64(window) - 1e-9))
	if need < 1 {
		need = 1
	}
	return &Stabilizer{
		window:    make([]Label, window),
		need:      need,
		confirmed: LabelNone,
	}
}

// Update records the raw label of the current frame and returns the
// confirmed label. LabelNone marks an absent hand: the window is cleared and
// LabelNone is returned.
func (s *Stabilizer) Update(raw Label) Label {
	if raw == LabelNone || raw == "" {
		s.Reset()
		return LabelNone
	}

	s.window[s.next] = raw
	s.next = (s.next + 1) % len(s.window)
	if s.count < len(s.window) {
		s.count++
	}

	if s.State() == Filling {
		return LabelNone
	}

	label, n := s.mode()
	if n >= s.need {
		s.confirmed = label
	}
	return s.confirmed
}

// mode returns the most frequent label in the window. Ties go to the label
// seen most recently.
func (s *Stabilizer) mode() (Label, int) {
	counts := make(map[Label]int, len(s.window))
	var best Label
	bestN := 0
	for i := 0; i < s.count; i++ {
		// newest first
		idx := (s.next - 1 - i + 2*len(s.window)) % len(s.window)
		l := s.window[idx]
		counts[l]++
		if counts[l] > bestN {
			best, bestN = l, counts[l]
		}
	}
	return best, bestN
}

// Reset clears the window and the confirmed label.
func (s *Stabilizer) Reset() {
	for i := range s.window {
		s.window[i] = ""
	}
	s.next = 0
	s.count = 0
	s.confirmed = LabelNone
}

// Len returns the number of labels currently in the window.
func (s *Stabilizer) Len() int { return s.count }

// Cap returns the window capacity.
func (s *Stabilizer) Cap() int { return len(s.window) }

// State reports whether the window has filled.
func (s *Stabilizer) State() StabilizerState {
	if s.count < len(s.window) {
		return Filling
	}
	return Stable
}

// Confirmed returns the last confirmed label without updating.
func (s *Stabilizer) Confirmed() Label { return s.confirmed }
