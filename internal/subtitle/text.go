package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParsePlainText parses a line-per-entry source with no timing, the
// common shape of a hand-written translation. Blank lines separate
// nothing and are skipped. The resulting track is text-only and becomes
// time-bearing only when aligned against a timed original track.
func ParsePlainText(r io.Reader) (*Track, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		entries = append(entries, Entry{
			Index: len(entries) + 1,
			Text:  trimmed,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading plain-text content: %w", err)
	}

	return &Track{Entries: entries, Timed: false}, nil
}
