package segment

import (
	"time"
)

// Identity names a logical segment for export deduplication: the first
// aligned entry it covers plus how many consecutive entries it merges.
// Two Segment values with the same Identity share created state.
type Identity struct {
	Anchor int
	Span   int
}

// mutable per-identity state
type state struct {
	startOffset time.Duration
	endOffset   time.Duration
	created     bool
	gen         uint64
}

// Session owns the identity-keyed segment state for one loaded track
// set. It is the single place the created flag and boundary offsets
// live, so transient Segment views can never disagree about them. Not
// safe for concurrent use; the interaction loop is the only writer.
type Session struct {
	states map[Identity]*state
}

func NewSession() *Session {
	return &Session{states: make(map[Identity]*state)}
}

// Reset discards all segment state. Called when a new track set is
// loaded and every outstanding Identity becomes meaningless.
func (s *Session) Reset() {
	s.states = make(map[Identity]*state)
}

func (s *Session) lookup(id Identity) *state {
	if st, ok := s.states[id]; ok {
		return st
	}
	st := &state{}
	s.states[id] = st
	return st
}

// Offsets returns the boundary adjustments recorded for id.
func (s *Session) Offsets(id Identity) (start, end time.Duration) {
	st := s.lookup(id)
	return st.startOffset, st.endOffset
}

// SetOffsets records clamped boundary adjustments and bumps the
// identity's generation so any in-flight export of the previous state
// can no longer mark this identity created.
func (s *Session) SetOffsets(id Identity, start, end time.Duration) {
	st := s.lookup(id)
	st.startOffset = start
	st.endOffset = end
	st.gen++
}

// Created reports whether an export has succeeded for id.
func (s *Session) Created(id Identity) bool {
	return s.lookup(id).created
}

// Generation returns the current request generation for id. An exporter
// captures this before starting and passes it back to MarkCreated.
func (s *Session) Generation(id Identity) uint64 {
	return s.lookup(id).gen
}

// MarkCreated flips the created flag for id, but only if gen still
// matches the identity's current generation. A stale response (the
// segment was adjusted while the export was in flight) is ignored and
// reported as false.
func (s *Session) MarkCreated(id Identity, gen uint64) bool {
	st := s.lookup(id)
	if st.gen != gen {
		return false
	}
	st.created = true
	return true
}
