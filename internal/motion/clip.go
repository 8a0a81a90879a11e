package motion

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/pkg/util"
)

// Generator renders image clips through ffmpeg.
type Generator struct {
	exec   *ffmpeg.Executor
	cfg    *config.Config
	logger zerolog.Logger
	rng    *rand.Rand
}

// NewGenerator creates a clip generator. seed feeds the random animation
// style only.
func NewGenerator(exec *ffmpeg.Executor, cfg *config.Config, logger zerolog.Logger, seed int64) *Generator {
	return &Generator{
		exec:   exec,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "motion"),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// ClipRequest describes one image's place in the slideshow.
type ClipRequest struct {
	ImagePath string
	Output    string
	Index     int
	Total     int

	// IsFirst and IsLast control the fades, not the motion rotation:
	// a slideshow preceded by intro videos fades in on the intro, not
	// on its opening slide.
	IsFirst bool
	IsLast  bool
}

// Render produces one motion clip from a still image. Clip length always
// comes from the configured image duration; position-based overrides
// caused drift between the timeline math and the rendered files.
func (g *Generator) Render(ctx context.Context, req ClipRequest) error {
	if !util.FileExists(req.ImagePath) {
		return fmt.Errorf("image not found: %s", req.ImagePath)
	}

	duration := g.cfg.ImageDuration
	direction := PickDirection(g.cfg.AnimationStyle, req.Index, req.Total, g.rng)

	fadeIn := g.cfg.UseFadeIn && req.IsFirst
	fadeOut := g.cfg.UseFadeOut && req.IsLast
	filter := Filter(direction, duration, fadeIn, fadeOut)

	g.logger.Debug().
		Str("image", req.ImagePath).
		Str("direction", string(direction)).
		Float64("duration", duration).
		Msg("rendering motion clip")

	encArgs, err := g.exec.EncoderArgs(ctx, g.cfg.EncoderMode, g.cfg.CRF, g.cfg.Preset)
	if err != nil {
		return err
	}

	args := []string{
		"-loop", "1",
		"-i", req.ImagePath,
		"-vf", filter,
		"-t", util.FormatSeconds(duration),
		"-r", fmt.Sprintf("%d", ffmpeg.FrameRate),
	}
	args = append(args, encArgs...)
	args = append(args, "-pix_fmt", "yuv420p", "-an", req.Output)

	return g.exec.Run(ctx, ffmpeg.RunOptions{Args: args})
}
