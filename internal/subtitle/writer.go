package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteSRT writes a timed track as SubRip, renumbering entries from 1.
func WriteSRT(track *Track, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for i, entry := range track.Entries {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(entry.StartTime),
			formatSRTTime(entry.EndTime)))
		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// WritePlainText writes one entry per line, dropping timing. Embedded
// line breaks are flattened so the file stays line-per-entry and can be
// re-parsed by ParsePlainText.
func WritePlainText(track *Track, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for _, entry := range track.Entries {
		sb.WriteString(strings.ReplaceAll(entry.Text, "\n", " "))
		sb.WriteString("\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
