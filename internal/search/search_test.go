package search

import (
	"errors"
	"testing"
	"time"

	"github.com/cardslicer/cardslicer/internal/align"
)

func testSequence() align.Sequence {
	entries := []struct {
		orig, trans string
	}{
		{"Hola, ¿cómo estás?", "Hello, how are you?"},
		{"Muy bien, gracias", "Very well, thanks"},
		{"Hasta luego", "See you later"},
		{"¿Cómo te llamas?", "What is your name?"},
	}

	seq := make(align.Sequence, len(entries))
	for i, e := range entries {
		seq[i] = align.Entry{
			Index:           i,
			Start:           time.Duration(i) * 2 * time.Second,
			End:             time.Duration(i)*2*time.Second + time.Second,
			OriginalText:    e.orig,
			TranslationText: e.trans,
		}
	}
	return seq
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("CóMo", ScopeOriginal)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].EntryIndex != 0 || matches[1].EntryIndex != 3 {
		t.Errorf("matches at entries %d, %d; want 0, 3",
			matches[0].EntryIndex, matches[1].EntryIndex)
	}
}

func TestSearchScopeBothOrdersOriginalFirst(t *testing.T) {
	seq := testSequence()
	// "you" occurs in the translations of entries 0 and 2
	seq[1].OriginalText = "you said it"
	index := NewIndex(seq)

	matches, err := index.Search("you", ScopeBoth)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	want := []struct {
		entry int
		track TrackSelector
	}{
		{0, TrackTranslation},
		{1, TrackOriginal},
		{2, TrackTranslation},
	}
	for i, w := range want {
		if matches[i].EntryIndex != w.entry || matches[i].Track != w.track {
			t.Errorf("match %d = entry %d/%s, want entry %d/%s",
				i, matches[i].EntryIndex, matches[i].Track, w.entry, w.track)
		}
	}
}

func TestSearchScopeTranslationOnly(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("gracias", ScopeTranslation)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches in translation scope, got %d", len(matches))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	index := NewIndex(testSequence())

	if _, err := index.Search("   ", ScopeBoth); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSearchNoMatchesIsNotAnError(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("zzzzz", ScopeBoth)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
	if _, err := index.Current(); !errors.Is(err, ErrNoActiveSearch) {
		t.Errorf("Current after no matches: %v", err)
	}
	if _, err := index.Advance(Next); !errors.Is(err, ErrNoActiveSearch) {
		t.Errorf("Advance after no matches: %v", err)
	}
}

func TestAdvanceCyclesThroughMatches(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("o", ScopeOriginal)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	n := len(matches)
	if n < 2 {
		t.Fatalf("need at least 2 matches, got %d", n)
	}

	first, err := index.Current()
	if err != nil {
		t.Fatalf("Current error: %v", err)
	}
	if first != matches[0] {
		t.Errorf("first match should be current after Search")
	}

	// advancing n times over n matches returns to the first
	var last Match
	for i := 0; i < n; i++ {
		last, err = index.Advance(Next)
		if err != nil {
			t.Fatalf("Advance error: %v", err)
		}
	}
	if last != first {
		t.Errorf("after %d advances: %+v, want %+v", n, last, first)
	}
}

func TestAdvancePreviousWrapsToLast(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("o", ScopeOriginal)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	match, err := index.Advance(Previous)
	if err != nil {
		t.Fatalf("Advance error: %v", err)
	}
	if match != matches[len(matches)-1] {
		t.Errorf("Previous from the first match should wrap to the last")
	}
}

func TestNewSearchReplacesOldResults(t *testing.T) {
	index := NewIndex(testSequence())

	if _, err := index.Search("cómo", ScopeOriginal); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	index.Advance(Next)

	matches, err := index.Search("luego", ScopeOriginal)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	current, err := index.Current()
	if err != nil {
		t.Fatalf("Current error: %v", err)
	}
	if current.EntryIndex != 2 {
		t.Errorf("cursor should reset to the new first match, got entry %d",
			current.EntryIndex)
	}
}

func TestInvalidate(t *testing.T) {
	index := NewIndex(testSequence())

	if _, err := index.Search("bien", ScopeOriginal); err != nil {
		t.Fatalf("Search error: %v", err)
	}
	index.Invalidate()

	if _, err := index.Current(); !errors.Is(err, ErrNoActiveSearch) {
		t.Errorf("Current after Invalidate: %v", err)
	}
}

func TestMatchOffset(t *testing.T) {
	index := NewIndex(testSequence())

	matches, err := index.Search("luego", ScopeOriginal)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Offset != len("Hasta ") {
		t.Errorf("offset = %d, want %d", matches[0].Offset, len("Hasta "))
	}
}
