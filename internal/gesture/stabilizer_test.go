package gesture

import "testing"

func TestStabilizer(t *testing.T) {
	t.Run("filling emits None until the window is full", func(t *testing.T) {
		s := NewStabilizer(3, 0.6)

		for i := 0; i < 2; i++ {
			if got := s.Update(LabelVictory); got != LabelNone {
				t.Fatalf("update %d = %s, want None while filling", i, got)
			}
			if s.State() != Filling {
				t.Fatalf("state = %s, want filling", s.State())
			}
		}

		if got := s.Update(LabelVictory); got != LabelVictory {
			t.Errorf("third update = %s, want Victory", got)
		}
		if s.State() != Stable || s.Len() != 3 {
			t.Errorf("state = %s len = %d, want stable/3", s.State(), s.Len())
		}
	})

	t.Run("single frame noise is suppressed", func(t *testing.T) {
		s := NewStabilizer(3, 0.6)
		for _, l := range []Label{LabelOpenPalm, LabelOpenPalm, LabelOpenPalm} {
			s.Update(l)
		}

		if got := s.Update(LabelUnknown); got != LabelOpenPalm {
			t.Errorf("noisy frame produced %s, want Open_Palm", got)
		}
		if s.Len() != 3 {
			t.Errorf("window grew to %d", s.Len())
		}
	})

	t.Run("no majority keeps the previous confirmed label", func(t *testing.T) {
		s := NewStabilizer(4, 0.6)
		for i := 0; i < 4; i++ {
			s.Update(LabelThumbUp)
		}
		if s.Confirmed() != LabelThumbUp {
			t.Fatalf("confirmed = %s, want Thumb_Up", s.Confirmed())
		}

		// window becomes Thumb_Up, Thumb_Up, Victory, Pointing_Up: 50% is not enough
		s.Update(LabelVictory)
		if got := s.Update(LabelPointingUp); got != LabelThumbUp {
			t.Errorf("split window = %s, want previous Thumb_Up", got)
		}

		// alternating two labels never reaches 60% of four
		for i := 0; i < 8; i++ {
			l := LabelVictory
			if i%2 == 1 {
				l = LabelPointingUp
			}
			if got := s.Update(l); i >= 2 && got != LabelThumbUp {
				t.Fatalf("alternating update %d = %s, want Thumb_Up", i, got)
			}
		}
	})

	t.Run("no majority before any confirmation is None", func(t *testing.T) {
		s := NewStabilizer(3, 0.6)
		s.Update(LabelVictory)
		s.Update(LabelPointingUp)
		if got := s.Update(LabelOpenPalm); got != LabelNone {
			t.Errorf("got %s, want None", got)
		}
	})

	t.Run("absence clears history immediately", func(t *testing.T) {
		s := NewStabilizer(3, 0.6)
		for i := 0; i < 3; i++ {
			s.Update(LabelClosedFist)
		}

		for i := 0; i < 5; i++ {
			if got := s.Update(LabelNone); got != LabelNone {
				t.Fatalf("absent frame %d = %s, want None", i, got)
			}
			if s.Len() != 0 {
				t.Fatalf("history length %d after absence, want 0", s.Len())
			}
			if s.State() != Filling {
				t.Fatalf("state = %s after absence, want filling", s.State())
			}
		}
		if s.Confirmed() != LabelNone {
			t.Errorf("confirmed = %s after absence, want None", s.Confirmed())
		}

		// refilling starts over
		s.Update(LabelVictory)
		if got := s.Update(LabelVictory); got != LabelNone {
			t.Errorf("got %s while refilling, want None", got)
		}
	})

	t.Run("window of one confirms every frame", func(t *testing.T) {
		s := NewStabilizer(1, 0.6)
		for _, l := range []Label{LabelVictory, LabelUnknown, LabelPinch} {
			if got := s.Update(l); got != l {
				t.Errorf("Update(%s) = %s", l, got)
			}
		}
	})

	t.Run("ratio rounds up to whole frames", func(t *testing.T) {
		s := NewStabilizer(5, 0.6)
		for _, l := range []Label{LabelPinch, LabelPinch, LabelVictory, LabelVictory, LabelPinch} {
			s.Update(l)
		}
		if s.Confirmed() != LabelPinch {
			t.Errorf("3 of 5 should confirm, got %s", s.Confirmed())
		}
	})

	t.Run("invalid window is clamped", func(t *testing.T) {
		s := NewStabilizer(0, 0.6)
		if s.Cap() != 1 {
			t.Errorf("Cap() = %d, want 1", s.Cap())
		}
	})
}

func TestStabilizerState_String(t *testing.T) {
	if Filling.String() != "filling" || Stable.String() != "stable" {
		t.Error("unexpected state names")
	}
	if StabilizerState(9).String() != "unknown" {
		t.Error("out of range state should be unknown")
	}
}
