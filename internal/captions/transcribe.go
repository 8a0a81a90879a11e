// Package captions turns narration into burned-in subtitles: transcribe,
// pace the text into cues, render SRT or karaoke ASS, and burn the result
// back into the video.
package captions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/logging"
)

// Word is a single transcribed word with its spoken interval.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is a transcribed phrase. Words is populated only when word
// timestamps were requested.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Transcriber produces speech segments from a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string, wordTimestamps bool) ([]Segment, error)
}

// WhisperCLI shells out to a whisper command line tool. Both the openai
// reference CLI and whisper-ctranslate2 accept the same flags and emit
// the same JSON shape.
type WhisperCLI struct {
	binary string
	model  string
	logger zerolog.Logger
}

// NewTranscriber resolves the configured engine to a CLI binary.
func NewTranscriber(cfg *config.CaptionConfig, logger zerolog.Logger) (*WhisperCLI, error) {
	binary := "whisper"
	if cfg.Engine == "faster_whisper" {
		binary = "whisper-ctranslate2"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", binary, err)
	}

	return &WhisperCLI{
		binary: path,
		model:  cfg.Model,
		logger: logging.WithComponent(logger, "transcribe"),
	}, nil
}

// whisperOutput mirrors the JSON whisper writes with --output_format json.
type whisperOutput struct {
	Segments []Segment `json:"segments"`
}

// Transcribe runs the whisper CLI against mediaPath and parses its JSON
// output. wordTimestamps asks for per-word intervals, needed by live
// timing and karaoke.
func (w *WhisperCLI) Transcribe(ctx context.Context, mediaPath string, wordTimestamps bool) ([]Segment, error) {
	outDir, err := os.MkdirTemp("", "videostove-whisper-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		mediaPath,
		"--task", "transcribe",
		"--model", w.model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
	}
	if wordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}

	w.logger.Info().
		Str("media", mediaPath).
		Str("model", w.model).
		Bool("word_timestamps", wordTimestamps).
		Msg("transcribing")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("transcription failed: %s", detail)
	}

	jsonPath, err := findJSONOutput(outDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing transcription output: %w", err)
	}

	// Whisper pads words with leading spaces.
	for si := range out.Segments {
		for wi := range out.Segments[si].Words {
			out.Segments[si].Words[wi].Word = strings.TrimSpace(out.Segments[si].Words[wi].Word)
		}
	}

	w.logger.Info().Int("segments", len(out.Segments)).Msg("transcription complete")
	return out.Segments, nil
}

func findJSONOutput(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no transcription output found in %s", dir)
	}
	return matches[0], nil
}

// CollectWords flattens segments into their word list, dropping words
// without usable timestamps.
func CollectWords(segments []Segment) []Word {
	var words []Word
	for _, seg := range segments {
		for _, w := range seg.Words {
			if w.Word == "" {
				continue
			}
			words = append(words, w)
		}
	}
	return words
}
