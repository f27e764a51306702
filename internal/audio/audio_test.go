package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSliceErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := &SliceError{
		Start: time.Second,
		End:   2 * time.Second,
		Err:   cause,
	}

	if !errors.Is(err, cause) {
		t.Error("SliceError should unwrap to its cause")
	}

	msg := err.Error()
	if msg != "slice 1s-2s: disk on fire" {
		t.Errorf("Error() = %q", msg)
	}
}

func TestSliceRejectsInvalidRanges(t *testing.T) {
	src := &FileSource{path: "recording.mp3", duration: 10 * time.Second}

	tests := []struct {
		name       string
		start, end time.Duration
	}{
		{"negative start", -time.Second, time.Second},
		{"end before start", 2 * time.Second, time.Second},
		{"zero-length", time.Second, time.Second},
		{"past the duration", 9 * time.Second, 12 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.Slice(context.Background(), tt.start, tt.end)
			var sliceErr *SliceError
			if !errors.As(err, &sliceErr) {
				t.Fatalf("expected *SliceError, got %T: %v", err, err)
			}
			if sliceErr.Start != tt.start || sliceErr.End != tt.end {
				t.Errorf("error range = %v-%v", sliceErr.Start, sliceErr.End)
			}
		})
	}
}

func TestSliceHonoursCancelledContext(t *testing.T) {
	src := &FileSource{path: "recording.mp3", duration: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Slice(ctx, time.Second, 2*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSeekClamps(t *testing.T) {
	src := &FileSource{path: "recording.mp3", duration: 10 * time.Second}

	src.Seek(-time.Second)
	if src.Position() != 0 {
		t.Errorf("negative seek should clamp to 0, got %v", src.Position())
	}

	src.Seek(time.Minute)
	if src.Position() != 10*time.Second {
		t.Errorf("seek past the end should clamp to the duration, got %v",
			src.Position())
	}

	src.Seek(3 * time.Second)
	if src.Position() != 3*time.Second {
		t.Errorf("in-range seek lost: %v", src.Position())
	}
}

func TestFileTypeDetection(t *testing.T) {
	tests := []struct {
		path            string
		isAudio, isVideo bool
	}{
		{"recording.mp3", true, false},
		{"recording.WAV", true, false},
		{"episode.mkv", false, true},
		{"episode.mp4", false, true},
		{"notes.txt", false, false},
	}

	for _, tt := range tests {
		if got := IsAudioFile(tt.path); got != tt.isAudio {
			t.Errorf("IsAudioFile(%q) = %v", tt.path, got)
		}
		if got := IsVideoFile(tt.path); got != tt.isVideo {
			t.Errorf("IsVideoFile(%q) = %v", tt.path, got)
		}
		if got := IsMediaFile(tt.path); got != (tt.isAudio || tt.isVideo) {
			t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
		}
	}
}

func TestNewFileSourceMissingFile(t *testing.T) {
	if _, err := NewFileSource("/does/not/exist.mp3"); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestDefaultExtractOptions(t *testing.T) {
	opts := DefaultExtractOptions()
	if opts.Format != "mp3" || opts.SampleRate != 44100 || opts.Channels != 2 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}
