package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/align"
	"github.com/cardslicer/cardslicer/internal/anki"
	"github.com/cardslicer/cardslicer/internal/audio"
	"github.com/cardslicer/cardslicer/internal/export"
	"github.com/cardslicer/cardslicer/internal/playback"
	"github.com/cardslicer/cardslicer/internal/search"
	"github.com/cardslicer/cardslicer/internal/segment"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive segment navigation and export",
	Long: `Open an interactive session over a recording and its subtitle tracks:
step through segments, nudge their boundaries, search both tracks, and
export segments as flashcards without restarting the command.

Type "help" inside the session for the command list.

Examples:
  cardslicer shell -a ep1.mp3 --original ep1.srt --translation ep1.en.srt
  cardslicer shell -a ep1.mp3 --original ep1.srt --translation ep1.en.srt --deck Spanish`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().
		StringP("audio", "a", "", "Audio recording (required)")
	shellCmd.Flags().
		String("original", "", "Original-language subtitle track (required)")
	shellCmd.Flags().
		String("translation", "", "Translation subtitle track (required)")
	shellCmd.Flags().
		StringP("deck", "d", "CardSlicer", "Deck to create cards in")
	shellCmd.Flags().
		String("source", "", "Source label for exported cards (defaults to the audio filename)")
	shellCmd.Flags().
		StringSlice("tags", nil, "Tags to attach to exported notes")
	shellCmd.Flags().
		String("anki-url", anki.DefaultURL, "AnkiConnect endpoint")
}

func runShell(cmd *cobra.Command, args []string) error {
	audioPath, _ := cmd.Flags().GetString("audio")
	originalPath, _ := cmd.Flags().GetString("original")
	translationPath, _ := cmd.Flags().GetString("translation")
	deck, _ := cmd.Flags().GetString("deck")
	source, _ := cmd.Flags().GetString("source")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	ankiURL, _ := cmd.Flags().GetString("anki-url")

	if audioPath == "" || originalPath == "" || translationPath == "" {
		return fmt.Errorf("--audio, --original, and --translation are required")
	}

	seq, err := loadSequence(originalPath, translationPath)
	if err != nil {
		return err
	}
	if seq.Len() == 0 {
		return fmt.Errorf("nothing to navigate: aligned sequence is empty")
	}

	src, err := audio.NewFileSource(audioPath)
	if err != nil {
		return err
	}

	if source == "" {
		source = strings.TrimSuffix(
			filepath.Base(audioPath),
			filepath.Ext(audioPath),
		)
	}

	session := segment.NewSession()
	client := anki.NewClient(resolveAnkiURL(ankiURL), logger)
	coordinator := export.NewCoordinator(
		session,
		src,
		client,
		export.Metadata{DeckName: deck, SourceLabel: source, Tags: tags},
		logger,
	)

	sh := &shell{
		seq:   seq,
		nav:   segment.NewNavigator(seq, session),
		index: search.NewIndex(seq),
		pb:    playback.NewState(),
		src:   src,
		coord: coordinator,
		out:   os.Stdout,
	}

	fmt.Printf("Loaded %d segments over %v of audio. Type \"help\" for commands.\n",
		seq.Len(), src.Duration())
	sh.printStatus()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if sh.handle(context.Background(), scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}

// shell owns one interactive session; handle processes a single input
// line and reports whether the session should end.
type shell struct {
	seq   align.Sequence
	nav   *segment.Navigator
	index *search.Index
	pb    *playback.State
	src   audio.Source
	coord *export.Coordinator
	out   io.Writer
}

// default nudge when start/end is given without a delta
const defaultNudge = 200 * time.Millisecond

func (s *shell) handle(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "h", "?":
		s.printHelp()
	case "status", "st":
		s.printStatus()
	case "next", "n":
		s.nav.Next()
		s.syncClock()
		s.printStatus()
	case "prev", "p":
		s.nav.Previous()
		s.syncClock()
		s.printStatus()
	case "extend", "x":
		if !s.nav.CanExtend() {
			fmt.Fprintln(s.out, "already at the last segment")
			return false
		}
		s.nav.ExtendSelection()
		s.printStatus()
	case "seek":
		s.cmdSeek(rest)
	case "start":
		s.cmdNudge(rest, s.nav.AdjustStart)
	case "end":
		s.cmdNudge(rest, s.nav.AdjustEnd)
	case "mode", "m":
		fmt.Fprintf(s.out, "playback mode: %s\n", s.pb.Toggle())
	case "play":
		s.cmdPlay()
	case "search", "/":
		s.cmdSearch(rest)
	case "fn":
		s.cmdAdvanceMatch(search.Next)
	case "fp":
		s.cmdAdvanceMatch(search.Previous)
	case "export", "e":
		s.cmdExport(ctx)
	default:
		fmt.Fprintf(s.out, "unknown command %q; type \"help\"\n", cmd)
	}
	return false
}

func (s *shell) printHelp() {
	fmt.Fprint(s.out, `commands:
  status (st)        show the active segment
  next (n), prev (p) step between segments
  extend (x)         merge the next segment into the selection
  seek <pos>         jump to a position (90s, 1:30, 1:02:30.500)
  start <delta>      nudge the clip start (e.g. start -200ms)
  end <delta>        nudge the clip end (e.g. end 500ms)
  mode (m)           toggle continuous / auto-pause playback
  play               play the active segment (virtual clock)
  search <text> (/)  search both tracks
  fn, fp             jump to the next / previous match
  export (e)         export the active segment as a flashcard
  quit (q)           leave the session
`)
}

func (s *shell) printStatus() {
	seg := s.nav.Active()
	if seg == nil {
		fmt.Fprintln(s.out, "no active segment")
		return
	}

	marker := ""
	if seg.Created {
		marker = "  [card created]"
	}
	fmt.Fprintf(s.out, "segment %d", seg.Anchor+1)
	if seg.Span > 1 {
		fmt.Fprintf(s.out, "-%d", seg.Anchor+seg.Span)
	}
	fmt.Fprintf(s.out, "  %v - %v%s\n",
		seg.EffectiveStart(), seg.EffectiveEnd(), marker)
	if seg.StartOffset != 0 || seg.EndOffset != 0 {
		fmt.Fprintf(s.out, "  offsets: start %v, end %v\n",
			seg.StartOffset, seg.EndOffset)
	}
	fmt.Fprintf(s.out, "  %s\n", excerpt(seg.OriginalText, 70))
	if t := strings.TrimSpace(seg.TranslationText); t != "" {
		fmt.Fprintf(s.out, "  %s\n", excerpt(t, 70))
	}
}

// keep the virtual clock on the active segment so play starts there
func (s *shell) syncClock() {
	if seg := s.nav.Active(); seg != nil {
		s.src.Seek(seg.EffectiveStart())
	}
}

func (s *shell) cmdSeek(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: seek <pos>")
		return
	}
	pos, err := parsePosition(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "bad position %q: %v\n", args[0], err)
		return
	}
	s.src.Seek(pos)
	s.nav.SeekTo(pos)
	s.printStatus()
}

func (s *shell) cmdNudge(
	args []string,
	adjust func(time.Duration) *segment.Segment,
) {
	delta := defaultNudge
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "bad delta %q: %v\n", args[0], err)
			return
		}
		delta = d
	}
	adjust(delta)
	s.printStatus()
}

// play walks the virtual clock to the segment boundary and asks the
// playback mode what happens there. There is no real audio device; the
// clip itself is what ends up on the card.
func (s *shell) cmdPlay() {
	seg := s.nav.Active()
	if seg == nil {
		return
	}

	fmt.Fprintf(s.out, "playing %v - %v\n",
		seg.EffectiveStart(), seg.EffectiveEnd())
	s.src.Seek(seg.EffectiveEnd())

	switch s.pb.OnSegmentBoundaryReached() {
	case playback.Pause:
		fmt.Fprintln(s.out, "paused at segment end")
	case playback.AdvanceAndContinue:
		s.nav.Next()
		s.syncClock()
		s.printStatus()
	}
}

func (s *shell) cmdSearch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "usage: search <text>")
		return
	}
	query := strings.Join(args, " ")

	matches, err := s.index.Search(query, search.ScopeBoth)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	if len(matches) == 0 {
		fmt.Fprintf(s.out, "no matches for %q\n", query)
		return
	}

	fmt.Fprintf(s.out, "%d match(es)\n", len(matches))
	s.jumpToMatch(matches[0])
}

func (s *shell) cmdAdvanceMatch(dir search.Direction) {
	match, err := s.index.Advance(dir)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	s.jumpToMatch(match)
}

func (s *shell) jumpToMatch(m search.Match) {
	s.nav.SeekTo(s.seq[m.EntryIndex].Start)
	s.syncClock()
	fmt.Fprintf(s.out, "match in %s track:\n", m.Track)
	s.printStatus()
}

func (s *shell) cmdExport(ctx context.Context) {
	seg := s.nav.Active()
	if seg == nil {
		return
	}

	fmt.Fprintln(s.out, "exporting...")
	result := <-s.coord.Submit(ctx, seg)
	if result.Err != nil {
		fmt.Fprintf(s.out, "export failed: %v\n", result.Err)
		return
	}
	fmt.Fprintf(s.out, "card created: note %s\n", result.CardID)
}

// parsePosition accepts a Go duration (90s, 1.5m) or a clock position
// (SS, MM:SS, HH:MM:SS, with optional .millis).
func parsePosition(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("position cannot be negative")
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("expected [HH:]MM:SS")
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("expected [HH:]MM:SS")
		}
		total = total*60 + v
	}
	return time.Duration(total * float64(time.Second)), nil
}
