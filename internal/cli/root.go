package cli

import (
	"github.com/cardslicer/cardslicer/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cardslicer",
	Short: "Turn audio with dual subtitle tracks into flashcards",
	Long: `Cardslicer pairs an audio recording with an original-language subtitle
track and a translation track, lets you navigate and adjust the
segments, and exports any segment as a flashcard with its audio clip
attached.

Cards are created in a running Anki through the AnkiConnect add-on.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
