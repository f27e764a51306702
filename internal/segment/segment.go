package segment

import (
	"time"
)

// Segment is a materialized view of one aligned entry, or a merged run
// of consecutive entries, together with the session state recorded for
// its identity. It is the unit of playback, adjustment, and export.
// Views are cheap and transient; the authoritative state stays in the
// Session.
type Segment struct {
	Anchor int
	Span   int

	// natural boundaries: start of the first covered entry, end of the last
	Start time.Duration
	End   time.Duration

	StartOffset time.Duration
	EndOffset   time.Duration

	OriginalText    string
	TranslationText string

	Created bool
}

func (s *Segment) Identity() Identity {
	return Identity{Anchor: s.Anchor, Span: s.Span}
}

// EffectiveStart is the natural start shifted by the recorded offset.
func (s *Segment) EffectiveStart() time.Duration {
	return s.Start + s.StartOffset
}

// EffectiveEnd is the natural end shifted by the recorded offset.
func (s *Segment) EffectiveEnd() time.Duration {
	return s.End + s.EndOffset
}
