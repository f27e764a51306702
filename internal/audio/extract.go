package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/cardslicer/cardslicer/internal/ffmpeg"
)

// holds options for audio extraction
type ExtractOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for a recording used with subtitle tracks
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format:     "mp3",
		SampleRate: 44100,
		Channels:   2,
	}
}

// Extract pulls the audio track out of a video file so the recording
// can be navigated and sliced like any other audio source.
func Extract(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",              // No video
		"ar": opts.SampleRate, // Sample rate
		"ac": opts.Channels,   // Channels
		"y":  "",              // Overwrite output
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}
