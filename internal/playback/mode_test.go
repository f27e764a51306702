package playback

import "testing"

func TestNewStateStartsContinuous(t *testing.T) {
	s := NewState()
	if s.Mode() != Continuous {
		t.Errorf("initial mode = %v, want continuous", s.Mode())
	}
}

func TestToggle(t *testing.T) {
	s := NewState()

	if got := s.Toggle(); got != AutoPause {
		t.Errorf("first toggle = %v, want auto-pause", got)
	}
	if got := s.Toggle(); got != Continuous {
		t.Errorf("second toggle = %v, want continuous", got)
	}
}

func TestBoundaryAction(t *testing.T) {
	s := NewState()

	if got := s.OnSegmentBoundaryReached(); got != AdvanceAndContinue {
		t.Errorf("continuous boundary action = %v, want advance", got)
	}

	s.Toggle()
	if got := s.OnSegmentBoundaryReached(); got != Pause {
		t.Errorf("auto-pause boundary action = %v, want pause", got)
	}

	// asking twice must not consume the mode
	if got := s.OnSegmentBoundaryReached(); got != Pause {
		t.Errorf("repeated boundary action = %v, want pause", got)
	}
}

func TestModeString(t *testing.T) {
	if Continuous.String() != "continuous" {
		t.Errorf("Continuous.String() = %q", Continuous.String())
	}
	if AutoPause.String() != "auto-pause" {
		t.Errorf("AutoPause.String() = %q", AutoPause.String())
	}
}
