package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`,
)

// parser position within a subtitle block
const (
	srtWantIndex = iota
	srtWantTimes
	srtWantText
)

// ParseSRT parses SubRip content. Unlike lenient players it fails on
// malformed timestamp lines, sequence numbers that do not increase, and
// blocks truncated before their text, so bad source files surface at
// load time instead of as silently missing segments.
func ParseSRT(r io.Reader) (*Track, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	var current Entry
	var textLines []string

	state := srtWantIndex
	lineNum := 0
	lastIndex := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		switch state {
		case srtWantIndex:
			if trimmed == "" {
				continue
			}
			index, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("expected sequence number, got %q", trimmed),
					Line:   lineNum,
				}
			}
			if index <= lastIndex {
				return nil, &ParseError{
					Reason: fmt.Sprintf(
						"sequence number %d does not increase (previous %d)",
						index, lastIndex,
					),
					Line: lineNum,
				}
			}
			lastIndex = index
			current = Entry{Index: index}
			state = srtWantTimes

		case srtWantTimes:
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) != 9 {
				return nil, &ParseError{
					Reason: fmt.Sprintf("malformed timestamp line %q", trimmed),
					Line:   lineNum,
				}
			}
			start, err := clockDuration(matches[1], matches[2], matches[3], matches[4])
			if err != nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("invalid start timestamp: %v", err),
					Line:   lineNum,
				}
			}
			end, err := clockDuration(matches[5], matches[6], matches[7], matches[8])
			if err != nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("invalid end timestamp: %v", err),
					Line:   lineNum,
				}
			}
			if end <= start {
				return nil, &ParseError{
					Reason: fmt.Sprintf("end time %v is not after start time %v", end, start),
					Line:   lineNum,
				}
			}
			current.StartTime = start
			current.EndTime = end
			state = srtWantText

		case srtWantText:
			if trimmed == "" {
				if len(textLines) == 0 {
					return nil, &ParseError{
						Reason: fmt.Sprintf("subtitle block %d has no text", current.Index),
						Line:   lineNum,
					}
				}
				current.Text = strings.Join(textLines, "\n")
				entries = append(entries, current)
				textLines = nil
				state = srtWantIndex
				continue
			}
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT content: %w", err)
	}

	switch {
	case state == srtWantText && len(textLines) > 0:
		current.Text = strings.Join(textLines, "\n")
		entries = append(entries, current)
	case state != srtWantIndex:
		return nil, &ParseError{
			Reason: fmt.Sprintf("truncated subtitle block %d", current.Index),
			Line:   lineNum,
		}
	}

	return &Track{Entries: entries, Timed: true}, nil
}

func clockDuration(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
