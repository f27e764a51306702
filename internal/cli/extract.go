package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardslicer/cardslicer/internal/audio"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track from a video file so it can be navigated and
sliced like any other recording.

Supports multiple output formats: wav, mp3, aac, flac.

Examples:
  cardslicer extract ep1.mp4
  cardslicer extract ep1.mp4 -o ep1.mp3 -f mp3
  cardslicer extract ep1.mkv --format wav --sample-rate 44100 --channels 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("format", "f", "mp3", "Output audio format (wav, mp3, aac, flac)")
	extractCmd.Flags().
		IntP("sample-rate", "r", 44100, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		IntP("channels", "c", 2, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + "." + format
	}

	validFormats := map[string]bool{
		"wav":  true,
		"mp3":  true,
		"aac":  true,
		"flac": true,
	}
	if !validFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	opts := audio.ExtractOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}

	ctx := context.Background()
	if err := audio.Extract(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Audio extracted successfully: %s\n", absOutput)

	return nil
}
