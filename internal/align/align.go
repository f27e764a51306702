package align

import (
	"fmt"
	"time"

	"github.com/cardslicer/cardslicer/internal/subtitle"
)

// positional pairing of one original entry with its translation
type Entry struct {
	Index           int // 0-based position in the aligned sequence
	Start           time.Duration
	End             time.Duration
	OriginalText    string
	TranslationText string
}

// ordered aligned entries; the unit navigation and search operate on
type Sequence []Entry

func (s Sequence) Len() int {
	return len(s)
}

// non-fatal length mismatch between the two tracks
type Warning struct {
	OriginalCount    int
	TranslationCount int
}

func (w *Warning) Message() string {
	return fmt.Sprintf(
		"track lengths differ: original has %d entries, translation has %d; extra entries dropped",
		w.OriginalCount, w.TranslationCount,
	)
}

// Align pairs the two tracks strictly by ordinal position and truncates
// to the shorter one. Timing always comes from the original entry, so a
// text-only translation track becomes time-bearing here. Alignment never
// matches by time overlap: mismatched tracks should be visible to the
// user, not silently reshuffled. The warning is non-nil iff the lengths
// differ; an empty sequence is valid.
func Align(orig, trans *subtitle.Track) (Sequence, *Warning) {
	n := len(orig.Entries)
	if len(trans.Entries) < n {
		n = len(trans.Entries)
	}

	seq := make(Sequence, 0, n)
	for i := 0; i < n; i++ {
		seq = append(seq, Entry{
			Index:           i,
			Start:           orig.Entries[i].StartTime,
			End:             orig.Entries[i].EndTime,
			OriginalText:    orig.Entries[i].Text,
			TranslationText: trans.Entries[i].Text,
		})
	}

	var warning *Warning
	if len(orig.Entries) != len(trans.Entries) {
		warning = &Warning{
			OriginalCount:    len(orig.Entries),
			TranslationCount: len(trans.Entries),
		}
	}

	return seq, warning
}
