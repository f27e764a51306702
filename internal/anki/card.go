package anki

import (
	"context"
	"strconv"
	"strings"

	"github.com/cardslicer/cardslicer/internal/export"
)

// CreateCard implements the export coordinator's card-service contract:
// ensure the deck, then add one note with the clip attached. Field text
// is plain; only line breaks are converted so Anki renders them.
func (c *Client) CreateCard(
	ctx context.Context,
	req *export.Request,
) (string, error) {
	if err := c.EnsureDeck(ctx, req.DeckName); err != nil {
		return "", err
	}

	back := strings.TrimSpace(req.TranslationText)
	if back == "" {
		back = "(no translation)"
	}
	if req.SourceLabel != "" {
		back += "\n\nSource: " + req.SourceLabel
	}

	noteID, err := c.AddNote(ctx, Note{
		DeckName: req.DeckName,
		Front:    nl2br(req.OriginalText),
		Back:     nl2br(back),
		Tags:     req.Tags,
		ClipName: req.ClipName,
		Clip:     req.Clip,
	})
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(noteID, 10), nil
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
