package subtitle

import (
	"fmt"
	"time"
)

// represents single timed subtitle entry
type Entry struct {
	Index     int // 1-based ordinal within its track
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// ordered sequence of entries loaded from one source
type Track struct {
	Entries []Entry

	// Timed is false for plain-text tracks, which carry no timestamps of
	// their own and borrow timing from the original track once aligned.
	Timed bool
}

func (t *Track) Len() int {
	return len(t.Entries)
}

// OutOfOrder reports the ordinals of entries that start earlier than the
// entry before them. Input order is trusted and never re-sorted; a
// violation is a data-quality warning, not an error.
func (t *Track) OutOfOrder() []int {
	if !t.Timed {
		return nil
	}
	var bad []int
	for i := 1; i < len(t.Entries); i++ {
		if t.Entries[i].StartTime < t.Entries[i-1].StartTime {
			bad = append(bad, t.Entries[i].Index)
		}
	}
	return bad
}

// fatal parse failure, with the line that caused it
type ParseError struct {
	Reason string
	Line   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
