package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find text across both subtitle tracks",
	Long: `Search both subtitle tracks for a case-insensitive substring and list
every matching segment with its timing, so the segment number can be fed
straight into export.

Examples:
  cardslicer search "por que" --original ep1.srt --translation ep1.en.srt
  cardslicer search hello --original ep1.srt --translation ep1.en.srt --scope translation`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().
		String("original", "", "Original-language subtitle track (required)")
	searchCmd.Flags().
		String("translation", "", "Translation subtitle track (required)")
	searchCmd.Flags().
		String("scope", "both", "Tracks to scan (original, translation, both)")

	_ = searchCmd.MarkFlagRequired("original")
	_ = searchCmd.MarkFlagRequired("translation")
}

func parseScope(s string) (search.Scope, error) {
	switch strings.ToLower(s) {
	case "original":
		return search.ScopeOriginal, nil
	case "translation":
		return search.ScopeTranslation, nil
	case "both":
		return search.ScopeBoth, nil
	default:
		return 0, fmt.Errorf(
			"invalid scope %q: use original, translation, or both",
			s,
		)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	originalPath, _ := cmd.Flags().GetString("original")
	translationPath, _ := cmd.Flags().GetString("translation")
	scopeStr, _ := cmd.Flags().GetString("scope")

	scope, err := parseScope(scopeStr)
	if err != nil {
		return err
	}

	seq, err := loadSequence(originalPath, translationPath)
	if err != nil {
		return err
	}

	index := search.NewIndex(seq)
	matches, err := index.Search(query, scope)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return nil
	}

	fmt.Printf("%d match(es) for %q:\n", len(matches), query)
	for _, m := range matches {
		entry := seq[m.EntryIndex]
		text := entry.OriginalText
		if m.Track == search.TrackTranslation {
			text = entry.TranslationText
		}
		fmt.Printf("  segment %d  %v - %v  [%s]  %s\n",
			m.EntryIndex+1,
			entry.Start,
			entry.End,
			m.Track,
			excerpt(text, 60),
		)
	}

	return nil
}

// single-line preview of the matched text
func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
