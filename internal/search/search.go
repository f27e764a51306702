package search

import (
	"errors"
	"strings"

	"github.com/cardslicer/cardslicer/internal/align"
)

var (
	// rejected user input, recoverable by typing a query
	ErrEmptyQuery = errors.New("search query is empty")
	// Advance called before any successful search, or after the index
	// was invalidated by a reload
	ErrNoActiveSearch = errors.New("no active search")
)

// which track a match was found in
type TrackSelector int

const (
	TrackOriginal TrackSelector = iota
	TrackTranslation
)

func (t TrackSelector) String() string {
	if t == TrackTranslation {
		return "translation"
	}
	return "original"
}

// which tracks a query scans
type Scope int

const (
	ScopeOriginal Scope = iota
	ScopeTranslation
	ScopeBoth
)

type Direction int

const (
	Next Direction = iota
	Previous
)

// one location where the query text occurs
type Match struct {
	Track      TrackSelector
	EntryIndex int // 0-based index into the aligned sequence
	Offset     int // byte offset of the match within the entry text
}

// Index scans the aligned sequence for case-insensitive substring
// matches and keeps a circular cursor over the last result set. Like the
// rest of the engine it is confined to the interaction context; a new
// query simply replaces the previous one (last call wins).
type Index struct {
	seq     align.Sequence
	matches []Match
	cursor  int
}

func NewIndex(seq align.Sequence) *Index {
	return &Index{seq: seq}
}

// Search scans entries in ascending index order, original before
// translation within an entry when scope is ScopeBoth. No matches is an
// empty result, not an error; the first match becomes the current one.
func (x *Index) Search(query string, scope Scope) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	needle := strings.ToLower(query)
	var matches []Match

	for _, entry := range x.seq {
		if scope == ScopeOriginal || scope == ScopeBoth {
			if off := indexFold(entry.OriginalText, needle); off >= 0 {
				matches = append(matches, Match{
					Track:      TrackOriginal,
					EntryIndex: entry.Index,
					Offset:     off,
				})
			}
		}
		if scope == ScopeTranslation || scope == ScopeBoth {
			if off := indexFold(entry.TranslationText, needle); off >= 0 {
				matches = append(matches, Match{
					Track:      TrackTranslation,
					EntryIndex: entry.Index,
					Offset:     off,
				})
			}
		}
	}

	x.matches = matches
	x.cursor = 0
	return matches, nil
}

// Current returns the match the cursor sits on.
func (x *Index) Current() (Match, error) {
	if len(x.matches) == 0 {
		return Match{}, ErrNoActiveSearch
	}
	return x.matches[x.cursor], nil
}

// Advance cycles the cursor through the last result set, wrapping at
// both ends. Advancing over N matches N times returns to the first.
func (x *Index) Advance(dir Direction) (Match, error) {
	n := len(x.matches)
	if n == 0 {
		return Match{}, ErrNoActiveSearch
	}

	if dir == Previous {
		x.cursor = (x.cursor - 1 + n) % n
	} else {
		x.cursor = (x.cursor + 1) % n
	}
	return x.matches[x.cursor], nil
}

// Invalidate discards the result set; called when the track set is
// reloaded and entry indexes no longer mean anything.
func (x *Index) Invalidate() {
	x.matches = nil
	x.cursor = 0
}

// byte offset of the first case-insensitive occurrence; needle must
// already be lowered
func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), needle)
}
