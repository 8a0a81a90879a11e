package captions

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/pkg/util"
)

// Captioner runs the full captioning pass over a finished video.
type Captioner struct {
	exec        *ffmpeg.Executor
	transcriber Transcriber
	burner      *Burner
	cfg         *config.Config
	logger      zerolog.Logger
	rng         *rand.Rand
}

// New creates a captioner. seed feeds the chunked word pacing only.
func New(exec *ffmpeg.Executor, transcriber Transcriber, cfg *config.Config, logger zerolog.Logger, seed int64) *Captioner {
	return &Captioner{
		exec:        exec,
		transcriber: transcriber,
		burner:      NewBurner(exec, cfg, logger),
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "captions"),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// AddCaptions transcribes videoPath, burns the captions in, and replaces
// the original file with the captioned version. Silence is not an error:
// a video with no detectable speech passes through unchanged.
func (c *Captioner) AddCaptions(ctx context.Context, videoPath string) error {
	if !c.cfg.Captions.Enabled {
		c.logger.Debug().Msg("captions disabled, skipping")
		return nil
	}
	if !util.FileExists(videoPath) {
		return fmt.Errorf("video not found: %s", videoPath)
	}

	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	tempOutput := base + "_captioned_temp" + filepath.Ext(videoPath)

	var subtitlePath string
	var err error
	if c.cfg.Captions.KaraokeEffect {
		subtitlePath, err = c.prepareKaraoke(ctx, videoPath, base)
	} else {
		subtitlePath, err = c.prepareStandard(ctx, videoPath, base)
	}
	if err != nil {
		return err
	}
	if subtitlePath == "" {
		c.logger.Info().Msg("no speech found, nothing to caption")
		return nil
	}
	defer util.CleanupFiles(subtitlePath, tempOutput)

	if err := c.burner.Burn(ctx, videoPath, subtitlePath, tempOutput); err != nil {
		return fmt.Errorf("burning captions: %w", err)
	}

	// Swap in the captioned file only after the burn fully succeeded.
	if err := os.Rename(tempOutput, videoPath); err != nil {
		return fmt.Errorf("replacing video with captioned version: %w", err)
	}

	c.logger.Info().Str("video", videoPath).Msg("captioning complete")
	return nil
}

// prepareStandard transcribes the video and writes an SRT. Returns an
// empty path when there is nothing to caption.
func (c *Captioner) prepareStandard(ctx context.Context, videoPath, base string) (string, error) {
	wordTimestamps := c.cfg.Captions.LiveTiming
	segments, err := c.transcriber.Transcribe(ctx, videoPath, wordTimestamps)
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}
	if len(segments) == 0 {
		return "", nil
	}

	cues := BuildCues(segments, &c.cfg.Captions, c.rng)
	if len(cues) == 0 {
		return "", nil
	}

	srtPath := base + "_temp.srt"
	if err := WriteSRT(srtPath, cues); err != nil {
		return "", fmt.Errorf("writing srt: %w", err)
	}
	return srtPath, nil
}

// prepareKaraoke extracts the audio, transcribes with word timestamps,
// and writes a karaoke ASS track.
func (c *Captioner) prepareKaraoke(ctx context.Context, videoPath, base string) (string, error) {
	audioPath := base + "_temp_audio.wav"
	if err := c.exec.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return "", fmt.Errorf("extracting audio: %w", err)
	}
	defer os.Remove(audioPath)

	segments, err := c.transcriber.Transcribe(ctx, audioPath, true)
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}

	words := CollectWords(segments)
	if len(words) == 0 {
		return "", nil
	}

	assPath := base + "_temp.ass"
	if err := WriteKaraokeASS(assPath, words); err != nil {
		return "", fmt.Errorf("writing ass: %w", err)
	}
	return assPath, nil
}
