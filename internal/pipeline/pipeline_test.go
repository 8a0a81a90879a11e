package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/captions"
	"github.com/videostove/videostove/internal/config"
)

type failingTranscriber struct{}

func (failingTranscriber) Transcribe(ctx context.Context, mediaPath string, wordTimestamps bool) ([]captions.Segment, error) {
	return nil, errors.New("whisper crashed")
}

func TestApplyCaptionsFailureKeepsRender(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(video, []byte("render"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Captions.Enabled = true

	p := &Pipeline{
		cfg:       cfg,
		captioner: captions.New(nil, failingTranscriber{}, cfg, zerolog.Nop(), 1),
		logger:    zerolog.Nop(),
	}

	// A transcription failure must not sink the render.
	p.applyCaptions(context.Background(), video)

	data, err := os.ReadFile(video)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "render" {
		t.Error("finished video modified after captioning failure")
	}
}
