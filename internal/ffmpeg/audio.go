package ffmpeg

import (
	"context"
	"fmt"

	"github.com/videostove/videostove/pkg/util"
)

// NormalizeAudio re-encodes the narration track to a uniform mp3 so its
// duration probes reliably and every downstream consumer sees the same
// parameters. Returns the normalized duration in seconds.
func (e *Executor) NormalizeAudio(ctx context.Context, input, output string) (float64, error) {
	e.logger.Debug().Str("input", input).Msg("normalizing audio")

	args := []string{
		"-i", input,
		"-c:a", "libmp3lame",
		"-b:a", "320k",
		"-ar", "44100",
		output,
	}

	if err := e.Run(ctx, RunOptions{Args: args}); err != nil {
		return 0, fmt.Errorf("audio normalization failed: %w", err)
	}

	return e.Duration(ctx, output)
}

// ExtractAudio pulls the audio track out as 16 kHz mono PCM, the format
// speech recognition models expect.
func (e *Executor) ExtractAudio(ctx context.Context, input, output string) error {
	e.logger.Debug().Str("input", input).Msg("extracting audio for transcription")

	args := []string{
		"-i", input,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		output,
	}

	return e.Run(ctx, RunOptions{Args: args})
}

// MixOptions configures the final audio mix.
type MixOptions struct {
	Video     string
	MainAudio string
	BGMusic   string // empty disables background music

	MainVolume float64
	BGVolume   float64

	// Duration trims the muxed output to the narration length.
	Duration float64

	// VideoArgs overrides the video codec arguments. Nil stream copies,
	// which is safe whenever the master was already encoded to its
	// final form.
	VideoArgs []string

	Output       string
	ProgressFunc ProgressFunc
}

// MixAudio muxes the narration (and optional looping background music)
// under the assembled video. Video is stream copied; only audio is
// encoded.
func (e *Executor) MixAudio(ctx context.Context, opts MixOptions) error {
	if opts.Video == "" || opts.MainAudio == "" || opts.Output == "" {
		return fmt.Errorf("video, main audio and output paths are required")
	}

	e.logger.Info().
		Str("video", opts.Video).
		Bool("bg_music", opts.BGMusic != "").
		Msg("mixing audio")

	args := []string{
		"-i", opts.Video,
		"-i", opts.MainAudio,
	}

	var filter string
	if opts.BGMusic != "" {
		args = append(args, "-stream_loop", "-1", "-i", opts.BGMusic)
		filter = fmt.Sprintf(
			"[1:a]volume=%s[a_main];[2:a]volume=%s[a_bg];[a_main][a_bg]amix=inputs=2:duration=first:dropout_transition=2[a_out]",
			util.FormatSeconds(opts.MainVolume), util.FormatSeconds(opts.BGVolume))
	} else {
		filter = fmt.Sprintf("[1:a]volume=%s[a_out]", util.FormatSeconds(opts.MainVolume))
	}

	args = append(args,
		"-filter_complex", filter,
		"-map", "0:v:0",
		"-map", "[a_out]",
	)
	if len(opts.VideoArgs) > 0 {
		args = append(args, opts.VideoArgs...)
	} else {
		args = append(args, "-c:v", "copy")
	}
	args = append(args, "-c:a", DefaultAudioCodec, "-b:a", "192k")
	if opts.Duration > 0 {
		args = append(args, "-t", util.FormatSeconds(opts.Duration))
	}
	args = append(args, opts.Output)

	return e.Run(ctx, RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("mixing")
		},
	})
}
