package cli

import (
	"fmt"
	"os"

	"github.com/cardslicer/cardslicer/internal/align"
	"github.com/cardslicer/cardslicer/internal/anki"
	"github.com/cardslicer/cardslicer/internal/subtitle"
)

// resolveAnkiURL keeps an explicit --anki-url flag, then falls back to
// the ANKICONNECT_URL environment variable, then the default endpoint.
func resolveAnkiURL(flagValue string) string {
	if flagValue != "" && flagValue != anki.DefaultURL {
		return flagValue
	}
	if env := os.Getenv("ANKICONNECT_URL"); env != "" {
		return env
	}
	return anki.DefaultURL
}

// loadSequence parses both subtitle tracks and pairs them by position.
// The original track must carry timing; the translation may be a plain
// text file that borrows timing during alignment.
func loadSequence(originalPath, translationPath string) (align.Sequence, error) {
	original, err := subtitle.Load(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load original track: %w", err)
	}
	if original.Len() == 0 {
		return nil, fmt.Errorf("original track contains no entries: %s", originalPath)
	}
	if !original.Timed {
		return nil, fmt.Errorf(
			"original track %s carries no timing: use .srt or .vtt",
			originalPath,
		)
	}
	if ords := original.OutOfOrder(); len(ords) > 0 {
		logger.Warnw("original track has out-of-order timestamps",
			"file", originalPath,
			"entries", ords,
		)
	}

	translation, err := subtitle.Load(translationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load translation track: %w", err)
	}
	if translation.Len() == 0 {
		return nil, fmt.Errorf(
			"translation track contains no entries: %s",
			translationPath,
		)
	}

	seq, warning := align.Align(original, translation)
	if warning != nil {
		logger.Warnw(warning.Message(),
			"original", warning.OriginalCount,
			"translation", warning.TranslationCount,
		)
	}

	return seq, nil
}
