// Package overlay composites an effect video (grain, dust, light leaks)
// over a rendered master. Overlay failures never sink a render: the
// master passes through untouched.
package overlay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/pkg/util"
)

// Applier composites overlay videos onto masters.
type Applier struct {
	exec   *ffmpeg.Executor
	cfg    *config.Config
	logger zerolog.Logger
}

// NewApplier creates an overlay applier.
func NewApplier(exec *ffmpeg.Executor, cfg *config.Config, logger zerolog.Logger) *Applier {
	return &Applier{
		exec:   exec,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "overlay"),
	}
}

// Apply composites overlayVideo over master for duration seconds. The
// overlay is looped to cover the full master. A missing overlay file or
// a failed composite degrades to a plain copy of the master.
func (a *Applier) Apply(ctx context.Context, master, overlayVideo, output string, duration float64) error {
	if overlayVideo == "" || !util.FileExists(overlayVideo) {
		return util.CopyFile(master, output)
	}

	a.logger.Info().
		Str("mode", a.cfg.OverlayMode).
		Float64("opacity", a.cfg.OverlayOpacity).
		Str("overlay", overlayVideo).
		Msg("applying overlay")

	var args []string
	if a.cfg.OverlayMode == "screen_blend" {
		args = a.screenBlendArgs(master, overlayVideo, duration)
	} else {
		args = a.simpleArgs(master, overlayVideo)
	}

	encArgs, err := a.exec.EncoderArgs(ctx, a.cfg.EncoderMode, a.cfg.CRF, a.cfg.Preset)
	if err != nil {
		return err
	}
	args = append(args, encArgs...)
	args = append(args, "-t", util.FormatSeconds(duration), "-an", output)

	if err := a.exec.Run(ctx, ffmpeg.RunOptions{Args: args}); err != nil {
		a.logger.Warn().Err(err).Msg("overlay failed, continuing without overlay")
		return util.CopyFile(master, output)
	}
	return nil
}

// simpleArgs alpha-blends the overlay on top of the master.
func (a *Applier) simpleArgs(master, overlayVideo string) []string {
	filter := fmt.Sprintf(
		"[1:v]format=yuva420p,colorchannelmixer=aa=%s[ovr];[0:v][ovr]overlay=format=auto,setsar=1[v]",
		util.FormatSeconds(a.cfg.OverlayOpacity))

	return []string{
		"-i", master,
		"-stream_loop", "-1", "-i", overlayVideo,
		"-filter_complex", filter,
		"-map", "[v]",
	}
}

// screenBlendArgs lightens the master with the overlay. Blending happens
// in rgb24; screen mode in YUV shifts colors.
func (a *Applier) screenBlendArgs(master, overlayVideo string, duration float64) []string {
	filter := fmt.Sprintf(
		"[1:v]scale=1920:1080,format=yuva420p,colorchannelmixer=aa=%s,format=rgb24[ov];"+
			"[0:v]format=rgb24[bg];"+
			"[bg][ov]blend=all_mode=screen,format=rgb24,setsar=1,format=yuv420p[v]",
		util.FormatSeconds(a.cfg.OverlayOpacity))

	return []string{
		"-stream_loop", "-1", "-i", master, "-t", util.FormatSeconds(duration),
		"-stream_loop", "-1", "-i", overlayVideo,
		"-filter_complex", filter,
		"-map", "[v]",
	}
}
