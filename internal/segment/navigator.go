package segment

import (
	"sort"
	"strings"
	"time"

	"github.com/cardslicer/cardslicer/internal/align"
)

// MinLength is the smallest effective segment length boundary
// adjustments may produce. Matches a 50ms nudge step.
const MinLength = 50 * time.Millisecond

// Navigator maps playback positions to segments and implements
// next/previous/extend over one aligned sequence. All methods degrade to
// no-ops at the sequence boundaries; none of them error. Like the
// Session it is confined to the single interaction context.
type Navigator struct {
	seq     align.Sequence
	session *Session

	anchor int // -1 when the sequence is empty
	span   int
}

func NewNavigator(seq align.Sequence, session *Session) *Navigator {
	n := &Navigator{seq: seq, session: session, anchor: 0, span: 1}
	if len(seq) == 0 {
		n.anchor = -1
		n.span = 0
	}
	return n
}

// Empty reports whether there is no segment to navigate.
func (n *Navigator) Empty() bool {
	return n.anchor < 0
}

// Active returns the currently selected segment, or nil when empty.
func (n *Navigator) Active() *Segment {
	if n.Empty() {
		return nil
	}
	return n.segment(n.anchor, n.span)
}

// SegmentAt is a pure mapping from a playback position to the segment
// covering it: the entry whose [start, end) contains pos, otherwise the
// nearest entry starting at or after pos, otherwise the last entry. The
// playback driver calls this on every clock tick; it never mutates the
// active selection.
func (n *Navigator) SegmentAt(pos time.Duration) *Segment {
	if n.Empty() {
		return nil
	}
	return n.segment(n.entryAt(pos), 1)
}

// SeekTo re-anchors the active selection from the playback clock,
// collapsing any extended span.
func (n *Navigator) SeekTo(pos time.Duration) *Segment {
	if n.Empty() {
		return nil
	}
	n.anchor = n.entryAt(pos)
	n.span = 1
	return n.Active()
}

// Next advances the anchor by one aligned entry, clamped at the end, and
// collapses the span.
func (n *Navigator) Next() *Segment {
	if n.Empty() {
		return nil
	}
	if n.anchor < len(n.seq)-1 {
		n.anchor++
	}
	n.span = 1
	return n.Active()
}

// Previous moves the anchor back by one aligned entry, clamped at the
// start, and collapses the span.
func (n *Navigator) Previous() *Segment {
	if n.Empty() {
		return nil
	}
	if n.anchor > 0 {
		n.anchor--
	}
	n.span = 1
	return n.Active()
}

// CanExtend reports whether another aligned entry can be merged into the
// active selection.
func (n *Navigator) CanExtend() bool {
	return !n.Empty() && n.anchor+n.span < len(n.seq)
}

// ExtendSelection merges the next aligned entry into the active segment.
// The merged segment keeps its natural start and takes the natural end
// of the newly included entry. At the sequence end this is a no-op.
func (n *Navigator) ExtendSelection() *Segment {
	if n.CanExtend() {
		n.span++
	}
	return n.Active()
}

// AdjustStart shifts the active segment's effective start by delta,
// clamped so it never crosses the preceding out-of-span entry's natural
// end and always stays at least MinLength before the effective end.
func (n *Navigator) AdjustStart(delta time.Duration) *Segment {
	if n.Empty() {
		return nil
	}

	id := Identity{Anchor: n.anchor, Span: n.span}
	startOff, endOff := n.session.Offsets(id)

	natStart := n.seq[n.anchor].Start
	natEnd := n.seq[n.anchor+n.span-1].End

	effStart := natStart + startOff + delta
	if lo := n.startFloor(); effStart < lo {
		effStart = lo
	}
	if hi := natEnd + endOff - MinLength; effStart > hi {
		effStart = hi
	}

	n.session.SetOffsets(id, effStart-natStart, endOff)
	return n.Active()
}

// AdjustEnd shifts the active segment's effective end by delta, clamped
// so it never crosses the following entry's natural start and always
// stays at least MinLength after the effective start.
func (n *Navigator) AdjustEnd(delta time.Duration) *Segment {
	if n.Empty() {
		return nil
	}

	id := Identity{Anchor: n.anchor, Span: n.span}
	startOff, endOff := n.session.Offsets(id)

	natStart := n.seq[n.anchor].Start
	natEnd := n.seq[n.anchor+n.span-1].End

	effEnd := natEnd + endOff + delta
	if hi, ok := n.endCeiling(); ok && effEnd > hi {
		effEnd = hi
	}
	if lo := natStart + startOff + MinLength; effEnd < lo {
		effEnd = lo
	}

	n.session.SetOffsets(id, startOff, effEnd-natEnd)
	return n.Active()
}

// natural end of the entry before the span, or zero at the front
func (n *Navigator) startFloor() time.Duration {
	if n.anchor == 0 {
		return 0
	}
	return n.seq[n.anchor-1].End
}

// natural start of the entry after the span, absent at the back
func (n *Navigator) endCeiling() (time.Duration, bool) {
	next := n.anchor + n.span
	if next >= len(n.seq) {
		return 0, false
	}
	return n.seq[next].Start, true
}

func (n *Navigator) entryAt(pos time.Duration) int {
	// first entry starting strictly after pos
	idx := sort.Search(len(n.seq), func(i int) bool {
		return n.seq[i].Start > pos
	})

	if idx > 0 && pos < n.seq[idx-1].End {
		return idx - 1
	}
	if idx < len(n.seq) {
		return idx
	}
	return len(n.seq) - 1
}

// materializes the view for a run of entries, joining texts the way the
// exported card shows them: original as one flowing sentence, translation
// line per entry so missing translations stay visible
func (n *Navigator) segment(anchor, span int) *Segment {
	id := Identity{Anchor: anchor, Span: span}
	startOff, endOff := n.session.Offsets(id)

	var origParts, transParts []string
	for i := anchor; i < anchor+span; i++ {
		if t := strings.TrimSpace(n.seq[i].OriginalText); t != "" {
			origParts = append(origParts, t)
		}
		transParts = append(transParts, n.seq[i].TranslationText)
	}

	return &Segment{
		Anchor:          anchor,
		Span:            span,
		Start:           n.seq[anchor].Start,
		End:             n.seq[anchor+span-1].End,
		StartOffset:     startOff,
		EndOffset:       endOff,
		OriginalText:    strings.Join(origParts, " "),
		TranslationText: strings.Join(transParts, "\n"),
		Created:         n.session.Created(id),
	}
}
