package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cardslicer/cardslicer/internal/logging"
	"github.com/cardslicer/cardslicer/internal/segment"
)

// one card-creation request for the external card service
type Request struct {
	Start           time.Duration // effective, offset-adjusted
	End             time.Duration
	OriginalText    string
	TranslationText string
	DeckName        string
	SourceLabel     string
	Tags            []string
	ClipName        string
	Clip            []byte
}

// Slicer is the audio-resource side of an export: it turns the
// effective time range into clip bytes.
type Slicer interface {
	Slice(ctx context.Context, start, end time.Duration) ([]byte, error)
}

// CardCreator is the external card-management collaborator. It owns
// deck auto-creation and media storage; the coordinator only hands it a
// complete request.
type CardCreator interface {
	CreateCard(ctx context.Context, req *Request) (string, error)
}

// idempotency guard: this identity already has a successful export
type AlreadyExportedError struct {
	Identity segment.Identity
}

func (e *AlreadyExportedError) Error() string {
	return fmt.Sprintf(
		"segment %d (span %d) has already been exported; extend the selection or pick another segment",
		e.Identity.Anchor+1, e.Identity.Span,
	)
}

// caller-supplied card metadata
type Metadata struct {
	DeckName    string
	SourceLabel string
	Tags        []string
}

// outcome of an asynchronous export
type Result struct {
	CardID string
	Err    error
}

// Coordinator builds export payloads and drives them through the audio
// slicer and the card service, enforcing at-most-one successful export
// per segment identity. It never retries on its own: every failure is
// surfaced with its stage (slice, service, validation) so the caller
// knows what to fix before retrying.
type Coordinator struct {
	session *segment.Session
	slicer  Slicer
	cards   CardCreator
	meta    Metadata
	logger  *logging.Logger
}

func NewCoordinator(
	session *segment.Session,
	slicer Slicer,
	cards CardCreator,
	meta Metadata,
	logger *logging.Logger,
) *Coordinator {
	if meta.DeckName == "" {
		meta.DeckName = "CardSlicer"
	}
	return &Coordinator{
		session: session,
		slicer:  slicer,
		cards:   cards,
		meta:    meta,
		logger:  logger,
	}
}

// Candidate builds the request for seg without touching the audio or
// the service. It fails fast with AlreadyExportedError when the
// segment's identity is already created, regardless of what any UI
// state claims.
func (c *Coordinator) Candidate(seg *segment.Segment) (*Request, error) {
	id := seg.Identity()
	if c.session.Created(id) {
		return nil, &AlreadyExportedError{Identity: id}
	}

	return &Request{
		Start:           seg.EffectiveStart(),
		End:             seg.EffectiveEnd(),
		OriginalText:    seg.OriginalText,
		TranslationText: seg.TranslationText,
		DeckName:        c.meta.DeckName,
		SourceLabel:     c.meta.SourceLabel,
		Tags:            c.meta.Tags,
		ClipName:        c.clipName(seg),
	}, nil
}

// Export runs one complete export: slice, create, mark created. The
// created flag is set only after the service confirms, and only if the
// segment state has not changed since the request was built, so a stale
// response can never mark a since-adjusted segment as exported.
func (c *Coordinator) Export(
	ctx context.Context,
	seg *segment.Segment,
) (string, error) {
	req, err := c.Candidate(seg)
	if err != nil {
		return "", err
	}

	id := seg.Identity()
	gen := c.session.Generation(id)

	clip, err := c.slicer.Slice(ctx, req.Start, req.End)
	if err != nil {
		return "", fmt.Errorf("slice clip: %w", err)
	}
	req.Clip = clip

	cardID, err := c.cards.CreateCard(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create card: %w", err)
	}

	if !c.session.MarkCreated(id, gen) {
		c.logger.Warnw("segment adjusted during export; created flag left unset",
			"anchor", id.Anchor,
			"span", id.Span,
			"card_id", cardID,
		)
	}

	c.logger.Infow("segment exported",
		"anchor", id.Anchor,
		"span", id.Span,
		"card_id", cardID,
		"start", req.Start,
		"end", req.End,
	)
	return cardID, nil
}

// Submit runs Export on its own goroutine so the interactive loop stays
// responsive while the slice and the network call block. The buffered
// channel delivers exactly one Result.
func (c *Coordinator) Submit(
	ctx context.Context,
	seg *segment.Segment,
) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		cardID, err := c.Export(ctx, seg)
		ch <- Result{CardID: cardID, Err: err}
	}()
	return ch
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// media filename unique per identity and effective range, so re-exports
// after an adjustment do not overwrite the stored clip
func (c *Coordinator) clipName(seg *segment.Segment) string {
	base := c.meta.SourceLabel
	if base == "" {
		base = c.meta.DeckName
	}
	base = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(base), "_")

	return fmt.Sprintf("%s_%04d_%d_%d.mp3",
		base,
		seg.Anchor+1,
		seg.Span,
		seg.EffectiveStart().Milliseconds(),
	)
}
