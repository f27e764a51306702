package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and parses a subtitle file, dispatching on the extension.
// A .txt file produces a text-only track (one entry per non-empty line).
func Load(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt":
		return ParseSRT(file)
	case ".vtt":
		return ParseVTT(file)
	case ".txt":
		return ParsePlainText(file)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}
