package playback

// playback mode across segment boundaries
type Mode int

const (
	// keep playing into the next segment
	Continuous Mode = iota
	// stop at the end of the active segment
	AutoPause
)

func (m Mode) String() string {
	if m == AutoPause {
		return "auto-pause"
	}
	return "continuous"
}

// what the playback driver should do at a segment boundary
type BoundaryAction int

const (
	AdvanceAndContinue BoundaryAction = iota
	Pause
)

// State is the playback mode machine. The only transition is an
// explicit user toggle; the mode survives navigation for the whole
// session. The engine never touches playback hardware: the driver polls
// OnSegmentBoundaryReached when the clock passes the active segment's
// natural end and acts on the answer.
type State struct {
	mode Mode
}

func NewState() *State {
	return &State{mode: Continuous}
}

func (s *State) Mode() Mode {
	return s.mode
}

// Toggle flips between Continuous and AutoPause and returns the new mode.
func (s *State) Toggle() Mode {
	if s.mode == Continuous {
		s.mode = AutoPause
	} else {
		s.mode = Continuous
	}
	return s.mode
}

// OnSegmentBoundaryReached answers the driver's question at a segment
// boundary: pause there, or advance to the next segment and keep going.
func (s *State) OnSegmentBoundaryReached() BoundaryAction {
	if s.mode == AutoPause {
		return Pause
	}
	return AdvanceAndContinue
}
