package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/audio"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a recording and its subtitle tracks",
	Long: `Check that an audio recording and its two subtitle tracks load and
pair up cleanly, without creating any cards.

Reports entry counts, track-length mismatches, out-of-order timestamps,
and how the subtitle timeline compares to the audio duration.

Examples:
  cardslicer check --original ep1.srt --translation ep1.en.srt
  cardslicer check -a ep1.mp3 --original ep1.srt --translation ep1.en.txt`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().
		StringP("audio", "a", "", "Audio recording to check against (optional)")
	checkCmd.Flags().
		String("original", "", "Original-language subtitle track (required)")
	checkCmd.Flags().
		String("translation", "", "Translation subtitle track (required)")

	_ = checkCmd.MarkFlagRequired("original")
	_ = checkCmd.MarkFlagRequired("translation")
}

func runCheck(cmd *cobra.Command, args []string) error {
	originalPath, _ := cmd.Flags().GetString("original")
	translationPath, _ := cmd.Flags().GetString("translation")
	audioPath, _ := cmd.Flags().GetString("audio")

	seq, err := loadSequence(originalPath, translationPath)
	if err != nil {
		return err
	}

	fmt.Printf("Tracks paired: %d segments\n", seq.Len())
	if seq.Len() > 0 {
		last := seq[seq.Len()-1]
		fmt.Printf("  First segment: %v - %v\n", seq[0].Start, seq[0].End)
		fmt.Printf("  Last segment:  %v - %v\n", last.Start, last.End)
	}

	if audioPath == "" {
		return nil
	}

	if !audio.IsMediaFile(audioPath) {
		return fmt.Errorf("unsupported media file: %s", audioPath)
	}

	duration, err := audio.GetDuration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to probe audio: %w", err)
	}

	fmt.Printf("Audio duration: %v\n", duration)
	if seq.Len() > 0 {
		lastEnd := seq[seq.Len()-1].End
		if lastEnd > duration {
			logger.Warnw("subtitle timeline runs past the audio",
				"last_entry_end", lastEnd,
				"audio_duration", duration,
			)
			fmt.Printf(
				"  WARNING: last entry ends at %v, past the audio end\n",
				lastEnd,
			)
		}
	}

	return nil
}
