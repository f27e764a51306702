package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// ParseVTT parses WebVTT content. Cue identifiers are optional in VTT,
// so entries are numbered in encounter order. NOTE and STYLE blocks are
// skipped. A cue line containing "-->" that does not parse as a
// timestamp pair is a fatal ParseError.
func ParseVTT(r io.Reader) (*Track, error) {
	scanner := bufio.NewScanner(r)

	var entries []Entry
	var current *Entry
	var textLines []string

	lineNum := 0
	headerSeen := false
	cueIndex := 0
	cueLine := 0

	flush := func() error {
		if current == nil {
			return nil
		}
		if len(textLines) == 0 {
			return &ParseError{
				Reason: fmt.Sprintf("cue %d has no text", current.Index),
				Line:   cueLine,
			}
		}
		current.Text = strings.Join(textLines, "\n")
		entries = append(entries, *current)
		current = nil
		textLines = nil
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if !headerSeen {
			if strings.HasPrefix(trimmed, "WEBVTT") {
				headerSeen = true
				continue
			}
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if strings.Contains(line, "-->") {
			if err := flush(); err != nil {
				return nil, err
			}

			var parts []string
			if matches := vttTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
				parts = matches[1:]
			} else if matches := vttShortTimestampRegex.FindStringSubmatch(line); len(matches) == 7 {
				parts = []string{
					"00", matches[1], matches[2], matches[3],
					"00", matches[4], matches[5], matches[6],
				}
			} else {
				return nil, &ParseError{
					Reason: fmt.Sprintf("malformed timestamp line %q", trimmed),
					Line:   lineNum,
				}
			}

			startTime, err := clockDuration(parts[0], parts[1], parts[2], parts[3])
			if err != nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("invalid start timestamp: %v", err),
					Line:   lineNum,
				}
			}
			endTime, err := clockDuration(parts[4], parts[5], parts[6], parts[7])
			if err != nil {
				return nil, &ParseError{
					Reason: fmt.Sprintf("invalid end timestamp: %v", err),
					Line:   lineNum,
				}
			}
			if endTime <= startTime {
				return nil, &ParseError{
					Reason: fmt.Sprintf("end time %v is not after start time %v", endTime, startTime),
					Line:   lineNum,
				}
			}

			cueIndex++
			cueLine = lineNum
			current = &Entry{Index: cueIndex, StartTime: startTime, EndTime: endTime}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
		// otherwise a cue identifier; discarded, cues are numbered in order
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT content: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &Track{Entries: entries, Timed: true}, nil
}
