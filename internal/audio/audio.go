package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/cardslicer/cardslicer/internal/ffmpeg"
)

// Source is the audio-resource collaborator the engine consumes: a
// playback clock plus byte-level clip extraction. Implementations own
// the actual decoding; the engine only asks for slices and positions.
type Source interface {
	// Slice returns the encoded audio between start and end.
	Slice(ctx context.Context, start, end time.Duration) ([]byte, error)
	Duration() time.Duration
	Position() time.Duration
	Seek(pos time.Duration)
}

// failed clip extraction, surfaced with the requested range
type SliceError struct {
	Start time.Duration
	End   time.Duration
	Err   error
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice %v-%v: %v", e.Start, e.End, e.Err)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}

// FileSource serves slices from a local media file through ffmpeg and
// keeps a virtual playback position for drivers without a real audio
// device. Slice blocks on the ffmpeg process; callers that must stay
// responsive run it off the interactive loop.
type FileSource struct {
	path     string
	duration time.Duration
	pos      time.Duration
}

// slight tolerance so a slice ending at the probed duration is not
// rejected over container rounding
const durationSlack = 500 * time.Millisecond

func NewFileSource(path string) (*FileSource, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	duration, err := GetDuration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe audio duration: %w", err)
	}

	return &FileSource{path: path, duration: duration}, nil
}

func (f *FileSource) Duration() time.Duration {
	return f.duration
}

func (f *FileSource) Position() time.Duration {
	return f.pos
}

func (f *FileSource) Seek(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	if pos > f.duration {
		pos = f.duration
	}
	f.pos = pos
}

// Slice re-encodes the requested range as mp3 and returns the bytes.
// Out-of-range times fail before ffmpeg is ever invoked.
func (f *FileSource) Slice(
	ctx context.Context,
	start, end time.Duration,
) ([]byte, error) {
	if start < 0 || end <= start {
		return nil, &SliceError{
			Start: start,
			End:   end,
			Err:   fmt.Errorf("invalid range"),
		}
	}
	if end > f.duration+durationSlack {
		return nil, &SliceError{
			Start: start,
			End:   end,
			Err:   fmt.Errorf("range exceeds audio duration %v", f.duration),
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &SliceError{Start: start, End: end, Err: err}
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, &SliceError{Start: start, End: end, Err: err}
	}

	tmp, err := os.CreateTemp("", "cardslicer-clip-*.mp3")
	if err != nil {
		return nil, &SliceError{Start: start, End: end, Err: err}
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	kwargs := ffmpeg.KwArgs{
		"ss":     start.Seconds(),
		"t":      (end - start).Seconds(),
		"vn":     "",
		"acodec": "libmp3lame",
		"y":      "",
	}

	err = ffmpeg.Input(f.path).
		Output(tmpPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return nil, &SliceError{
			Start: start,
			End:   end,
			Err:   fmt.Errorf("ffmpeg failed: %w", err),
		}
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, &SliceError{Start: start, End: end, Err: err}
	}
	if len(data) == 0 {
		return nil, &SliceError{
			Start: start,
			End:   end,
			Err:   fmt.Errorf("ffmpeg produced an empty clip"),
		}
	}

	return data, nil
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio/video file
func GetDuration(filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
