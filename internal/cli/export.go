package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/anki"
	"github.com/cardslicer/cardslicer/internal/audio"
	"github.com/cardslicer/cardslicer/internal/export"
	"github.com/cardslicer/cardslicer/internal/segment"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one segment as a flashcard",
	Long: `Export a segment as a flashcard: the original text on the front, the
translation on the back, and the audio clip for the segment attached.

Cards are created through AnkiConnect in a running Anki. The segment is
picked by its 1-based number (as printed by search); --span merges it
with the following segments, and the offset flags nudge the clip
boundaries.

Examples:
  cardslicer export -a ep1.mp3 --original ep1.srt --translation ep1.en.srt --segment 12
  cardslicer export -a ep1.mp3 --original ep1.srt --translation ep1.en.srt --segment 12 --span 2 --deck Spanish
  cardslicer export -a ep1.mp3 --original ep1.srt --translation ep1.en.srt --segment 12 --start-offset=-200ms --dry-run`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("audio", "a", "", "Audio recording to slice the clip from (required)")
	exportCmd.Flags().
		String("original", "", "Original-language subtitle track (required)")
	exportCmd.Flags().
		String("translation", "", "Translation subtitle track (required)")
	exportCmd.Flags().
		IntP("segment", "s", 0, "1-based segment number to export (required)")
	exportCmd.Flags().
		Int("span", 1, "Number of consecutive segments to merge")
	exportCmd.Flags().
		Duration("start-offset", 0, "Nudge the clip start (e.g. -200ms)")
	exportCmd.Flags().
		Duration("end-offset", 0, "Nudge the clip end (e.g. 500ms)")
	exportCmd.Flags().
		StringP("deck", "d", "CardSlicer", "Deck to create the card in")
	exportCmd.Flags().
		String("source", "", "Source label shown on the card back (defaults to the audio filename)")
	exportCmd.Flags().
		StringSlice("tags", nil, "Tags to attach to the note")
	exportCmd.Flags().
		String("anki-url", anki.DefaultURL, "AnkiConnect endpoint")
	exportCmd.Flags().
		Bool("dry-run", false, "Show what would be exported without slicing or contacting Anki")

	_ = exportCmd.MarkFlagRequired("audio")
	_ = exportCmd.MarkFlagRequired("original")
	_ = exportCmd.MarkFlagRequired("translation")
	_ = exportCmd.MarkFlagRequired("segment")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	audioPath, _ := cmd.Flags().GetString("audio")
	originalPath, _ := cmd.Flags().GetString("original")
	translationPath, _ := cmd.Flags().GetString("translation")
	segmentNum, _ := cmd.Flags().GetInt("segment")
	span, _ := cmd.Flags().GetInt("span")
	startOffset, _ := cmd.Flags().GetDuration("start-offset")
	endOffset, _ := cmd.Flags().GetDuration("end-offset")
	deck, _ := cmd.Flags().GetString("deck")
	source, _ := cmd.Flags().GetString("source")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	ankiURL, _ := cmd.Flags().GetString("anki-url")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	seq, err := loadSequence(originalPath, translationPath)
	if err != nil {
		return err
	}

	if segmentNum < 1 || segmentNum > seq.Len() {
		return fmt.Errorf(
			"segment %d out of range: track has %d segments",
			segmentNum,
			seq.Len(),
		)
	}
	if span < 1 {
		return fmt.Errorf("span must be at least 1, got %d", span)
	}
	if segmentNum-1+span > seq.Len() {
		return fmt.Errorf(
			"span %d starting at segment %d runs past the last segment %d",
			span,
			segmentNum,
			seq.Len(),
		)
	}

	session := segment.NewSession()
	nav := segment.NewNavigator(seq, session)
	nav.SeekTo(seq[segmentNum-1].Start)
	for i := 1; i < span; i++ {
		nav.ExtendSelection()
	}
	if startOffset != 0 {
		nav.AdjustStart(startOffset)
	}
	if endOffset != 0 {
		nav.AdjustEnd(endOffset)
	}

	seg := nav.Active()

	if source == "" {
		source = strings.TrimSuffix(
			filepath.Base(audioPath),
			filepath.Ext(audioPath),
		)
	}

	meta := export.Metadata{
		DeckName:    deck,
		SourceLabel: source,
		Tags:        tags,
	}

	if dryRun {
		coordinator := export.NewCoordinator(session, nil, nil, meta, logger)
		req, err := coordinator.Candidate(seg)
		if err != nil {
			return err
		}
		fmt.Printf("Would export segment %d (span %d):\n", segmentNum, span)
		fmt.Printf("  Clip:        %v - %v (%v)\n",
			req.Start, req.End, req.End-req.Start)
		fmt.Printf("  Front:       %s\n", excerpt(req.OriginalText, 70))
		fmt.Printf("  Back:        %s\n", excerpt(req.TranslationText, 70))
		fmt.Printf("  Deck:        %s\n", req.DeckName)
		fmt.Printf("  Clip name:   %s\n", req.ClipName)
		return nil
	}

	src, err := audio.NewFileSource(audioPath)
	if err != nil {
		return err
	}

	client := anki.NewClient(resolveAnkiURL(ankiURL), logger)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf(
			"cannot reach Anki at %s (is Anki running with AnkiConnect?): %w",
			ankiURL,
			err,
		)
	}

	coordinator := export.NewCoordinator(session, src, client, meta, logger)

	start := time.Now()
	cardID, err := coordinator.Export(ctx, seg)
	if err != nil {
		return err
	}

	fmt.Printf("Card created: note %s in deck %q (%v)\n",
		cardID, deck, time.Since(start).Round(time.Millisecond))

	return nil
}
