package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/videostove/videostove/pkg/util"
)

// CrossfadeTotal returns the duration of n clips joined with xfade:
// each transition overlaps the clips by the fade duration.
func CrossfadeTotal(durations []float64, fadeDuration float64) float64 {
	var total float64
	for _, d := range durations {
		total += d
	}
	if len(durations) > 1 {
		total -= fadeDuration * float64(len(durations)-1)
	}
	if total < 0 {
		return 0
	}
	return total
}

// Crossfade joins clips pairwise with the xfade filter. Each step merges
// the accumulated result with the next clip, offsetting the fade so it
// ends exactly at the accumulated duration. A single input is copied
// through untouched.
func (e *Executor) Crossfade(ctx context.Context, inputs []string, output string, fadeDuration float64) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files provided")
	}
	if len(inputs) == 1 {
		return util.CopyFile(inputs[0], output)
	}

	e.logger.Info().
		Int("inputs", len(inputs)).
		Float64("fade", fadeDuration).
		Msg("crossfading clips")

	tmpDir, err := os.MkdirTemp("", "videostove-xfade-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	current := inputs[0]
	for i, next := range inputs[1:] {
		currentDur, err := e.Duration(ctx, current)
		if err != nil {
			return fmt.Errorf("probing %s: %w", current, err)
		}

		offset := currentDur - fadeDuration
		if offset < 0 {
			offset = 0
		}

		step := output
		if i < len(inputs)-2 {
			step = filepath.Join(tmpDir, fmt.Sprintf("xfade_%03d.mp4", i))
		}

		filter := fmt.Sprintf("xfade=transition=fade:duration=%s:offset=%s",
			util.FormatSeconds(fadeDuration), util.FormatSeconds(offset))

		args := []string{
			"-i", current,
			"-i", next,
			"-filter_complex", filter,
			"-c:v", DefaultVideoCodec,
			"-preset", CrossfadePreset,
			"-crf", strconv.Itoa(CrossfadeCRF),
			step,
		}

		if err := e.Run(ctx, RunOptions{Args: args}); err != nil {
			return fmt.Errorf("crossfade step %d: %w", i, err)
		}
		current = step
	}

	return nil
}
