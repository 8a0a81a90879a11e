package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/videostove/videostove/pkg/util"
)

// ConcatOptions defines concatenation parameters
type ConcatOptions struct {
	Inputs []string
	Output string

	// TrimTo cuts the concatenated output at this many seconds when > 0.
	TrimTo float64

	ProgressFunc ProgressFunc
}

// Concat merges multiple video files into one using the concat demuxer
// with stream copy. When the demuxer rejects the inputs (mismatched
// parameters), it falls back to a re-encoding concat filter.
func (e *Executor) Concat(ctx context.Context, opts ConcatOptions) error {
	if len(opts.Inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Msg("concatenating videos")

	concatFile, err := e.createConcatFile(opts.Inputs)
	if err != nil {
		return fmt.Errorf("failed to create concat file: %w", err)
	}
	defer os.Remove(concatFile)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", concatFile,
		"-c", "copy",
	}
	if opts.TrimTo > 0 {
		args = append(args, "-t", util.FormatSeconds(opts.TrimTo))
	}
	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		e.logger.Warn().Err(err).Msg("concat demuxer failed, re-encoding")
		return e.concatFilter(ctx, opts)
	}
	return nil
}

// concatFilter concatenates through the concat filter, re-encoding. The
// inputs this path sees are silent intermediates, so only video streams
// are wired.
func (e *Executor) concatFilter(ctx context.Context, opts ConcatOptions) error {
	args := make([]string, 0, len(opts.Inputs)*2+8)
	var labels strings.Builder
	for i, input := range opts.Inputs {
		args = append(args, "-i", input)
		fmt.Fprintf(&labels, "[%d:v]", i)
	}

	filter := fmt.Sprintf("%sconcat=n=%d:v=1:a=0[outv]", labels.String(), len(opts.Inputs))
	args = append(args,
		"-filter_complex", filter,
		"-map", "[outv]",
		"-c:v", DefaultVideoCodec,
		"-preset", CrossfadePreset,
		"-crf", strconv.Itoa(CrossfadeCRF),
	)
	if opts.TrimTo > 0 {
		args = append(args, "-t", util.FormatSeconds(opts.TrimTo))
	}
	args = append(args, opts.Output)

	return e.Run(ctx, RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	})
}

// StreamLoop repeats a clip loops times via -stream_loop with stream
// copy, trimming to trimTo seconds.
func (e *Executor) StreamLoop(ctx context.Context, input, output string, loops int, trimTo float64) error {
	if loops < 1 {
		return fmt.Errorf("loop count must be at least 1, got %d", loops)
	}

	e.logger.Debug().
		Str("input", input).
		Int("loops", loops).
		Float64("trim_to", trimTo).
		Msg("looping clip")

	args := []string{
		"-stream_loop", strconv.Itoa(loops - 1),
		"-i", input,
		"-c", "copy",
		"-t", util.FormatSeconds(trimTo),
		output,
	}

	return e.Run(ctx, RunOptions{Args: args})
}

// createConcatFile generates a temporary file list for ffmpeg concat
func (e *Executor) createConcatFile(inputs []string) (string, error) {
	tmpFile, err := os.CreateTemp("", "videostove-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", absPath); err != nil {
			return "", err
		}
	}

	return tmpFile.Name(), nil
}
