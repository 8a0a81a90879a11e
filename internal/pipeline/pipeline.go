// Package pipeline assembles a project's media into the final narrated
// video. A montage runs in stages: normalize the narration, process intro
// videos, render one slideshow cycle, composite the overlay, loop the
// cycle to fill the narration, assemble the master, and mix the audio.
// Intermediates live in a per-run temp dir and are discarded on exit.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/captions"
	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/internal/motion"
	"github.com/videostove/videostove/internal/overlay"
	"github.com/videostove/videostove/internal/project"
	"github.com/videostove/videostove/pkg/util"
)

// Pipeline renders projects into finished videos.
type Pipeline struct {
	exec      *ffmpeg.Executor
	cfg       *config.Config
	gen       *motion.Generator
	ovl       *overlay.Applier
	captioner *captions.Captioner
	logger    zerolog.Logger
}

// New creates a pipeline. seed feeds the random animation style and the
// chunked caption pacing.
func New(exec *ffmpeg.Executor, cfg *config.Config, logger zerolog.Logger, seed int64) *Pipeline {
	return &Pipeline{
		exec:   exec,
		cfg:    cfg,
		gen:    motion.NewGenerator(exec, cfg, logger, seed),
		ovl:    overlay.NewApplier(exec, cfg, logger),
		logger: logging.WithComponent(logger, "pipeline"),
	}
}

// WithCaptioner enables the captioning pass after assembly.
func (p *Pipeline) WithCaptioner(c *captions.Captioner) *Pipeline {
	p.captioner = c
	return p
}

// Run builds the project into output according to the configured mode,
// then captions the result when a captioner is attached.
func (p *Pipeline) Run(ctx context.Context, proj *project.Project, output string) error {
	if err := proj.Validate(p.cfg.ProjectMode); err != nil {
		return err
	}

	p.logger.Info().
		Str("project", proj.Name).
		Str("mode", string(p.cfg.ProjectMode)).
		Int("images", len(proj.Images)).
		Int("videos", len(proj.Videos)).
		Msg("starting render")

	var err error
	switch p.cfg.ProjectMode {
	case config.ModeVideosOnly:
		err = p.videosOnly(ctx, proj, output)
	case config.ModeSlideshow:
		err = p.montage(ctx, proj, proj.Images, nil, output)
	default:
		err = p.montage(ctx, proj, proj.Images, proj.Videos, output)
	}
	if err != nil {
		return err
	}

	if p.captioner != nil {
		p.applyCaptions(ctx, output)
	}

	p.logger.Info().Str("output", output).Msg("render complete")
	return nil
}

// applyCaptions runs the captioning pass over the finished video. The
// pass is best effort: on any failure the uncaptioned render stands and
// the project still succeeds.
func (p *Pipeline) applyCaptions(ctx context.Context, output string) {
	if err := p.captioner.AddCaptions(ctx, output); err != nil {
		p.logger.Warn().Err(err).Msg("captioning failed, keeping uncaptioned video")
	}
}

// montage builds intro videos plus a looped image slideshow, timed to the
// narration.
func (p *Pipeline) montage(ctx context.Context, proj *project.Project, images, videos []string, output string) error {
	workDir, err := os.MkdirTemp("", "videostove-montage-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	// Stage 1: narration sets the timeline length.
	processedAudio := filepath.Join(workDir, "audio.mp3")
	audioDuration, err := p.exec.NormalizeAudio(ctx, proj.MainAudio, processedAudio)
	if err != nil {
		return fmt.Errorf("processing narration: %w", err)
	}
	p.logger.Info().Float64("duration", audioDuration).Msg("narration processed")

	// Stage 2: intro videos play first, each normalized to the shared
	// raster. A failed intro is skipped, not fatal.
	introClips, introDuration := p.processIntros(ctx, workDir, videos, len(images) > 0)
	remaining := RemainingTime(audioDuration, introDuration)

	// Stage 3: one slideshow cycle, rendered once and looped later.
	var cycle string
	var cycleDuration float64
	if remaining > 0 && len(images) > 0 {
		cycle, err = p.buildCycle(ctx, workDir, images, len(introClips) > 0, remaining)
		if err != nil {
			return err
		}
		cycleDuration, err = p.exec.Duration(ctx, cycle)
		if err != nil {
			return err
		}
		p.logger.Info().Float64("cycle", cycleDuration).Msg("slideshow cycle built")
	}

	// Stage 4: overlay goes onto each intro and onto the single clean
	// cycle, so looping multiplies one composite instead of many.
	if p.cfg.UseOverlay && proj.Overlay != "" {
		introClips, err = p.overlayIntros(ctx, workDir, introClips, proj.Overlay)
		if err != nil {
			return err
		}
		if cycle != "" {
			overlaid := filepath.Join(workDir, "cycle_overlaid.mp4")
			if err := p.ovl.Apply(ctx, cycle, proj.Overlay, overlaid, cycleDuration); err != nil {
				return err
			}
			cycle = overlaid
		}
	}

	// Stage 5: stitch the master to exactly the narration length.
	master := filepath.Join(workDir, "master_no_audio.mp4")
	if err := p.assembleMaster(ctx, workDir, introClips, introDuration, cycle, cycleDuration, remaining, audioDuration, master); err != nil {
		return err
	}

	// Stage 6: mix narration and background music under the master.
	return p.exec.MixAudio(ctx, ffmpeg.MixOptions{
		Video:        master,
		MainAudio:    processedAudio,
		BGMusic:      p.bgMusic(proj),
		MainVolume:   p.cfg.MainAudioVolume,
		BGVolume:     p.cfg.BGVolume,
		Duration:     audioDuration,
		Output:       output,
		ProgressFunc: p.logProgress("final mix"),
	})
}

// processIntros normalizes each intro video. The first fades in; the last
// fades out only when no slideshow follows it.
func (p *Pipeline) processIntros(ctx context.Context, workDir string, videos []string, hasImages bool) ([]string, float64) {
	var clips []string
	var total float64

	for i, video := range videos {
		duration, err := p.exec.Duration(ctx, video)
		if err != nil {
			p.logger.Warn().Err(err).Str("video", video).Msg("skipping unreadable intro video")
			continue
		}

		clip := filepath.Join(workDir, fmt.Sprintf("intro_%03d.mp4", i))
		fadeIn := i == 0 && p.cfg.UseFadeIn
		fadeOut := i == len(videos)-1 && !hasImages && p.cfg.UseFadeOut

		if err := p.processVideoClip(ctx, video, clip, duration, fadeIn, fadeOut); err != nil {
			p.logger.Warn().Err(err).Str("video", video).Msg("skipping failed intro video")
			continue
		}
		clips = append(clips, clip)
		total += duration
	}
	return clips, total
}

// buildCycle renders every image once and joins them into a single
// slideshow cycle.
func (p *Pipeline) buildCycle(ctx context.Context, workDir string, images []string, hasIntros bool, remaining float64) (string, error) {
	cycleDuration := p.cfg.ImageDuration * float64(len(images))
	willLoop := remaining > cycleDuration

	var clips []string
	for i, image := range images {
		clip := filepath.Join(workDir, fmt.Sprintf("image_%03d.mp4", i))
		req := motion.ClipRequest{
			ImagePath: image,
			Output:    clip,
			Index:     i,
			Total:     len(images),
			IsFirst:   i == 0 && !hasIntros,
			IsLast:    i == len(images)-1 && !willLoop,
		}
		if err := p.gen.Render(ctx, req); err != nil {
			return "", fmt.Errorf("rendering image %s: %w", filepath.Base(image), err)
		}
		clips = append(clips, clip)
	}

	cycle := filepath.Join(workDir, "slideshow_cycle.mp4")
	if p.cfg.UseCrossfade && len(clips) > 1 {
		if err := p.exec.Crossfade(ctx, clips, cycle, p.cfg.CrossfadeDuration); err != nil {
			return "", fmt.Errorf("crossfading slideshow: %w", err)
		}
	} else {
		if err := p.exec.Concat(ctx, ffmpeg.ConcatOptions{Inputs: clips, Output: cycle}); err != nil {
			return "", fmt.Errorf("concatenating slideshow: %w", err)
		}
	}
	return cycle, nil
}

// overlayIntros composites the overlay onto every intro clip.
func (p *Pipeline) overlayIntros(ctx context.Context, workDir string, clips []string, overlayVideo string) ([]string, error) {
	out := make([]string, 0, len(clips))
	for i, clip := range clips {
		duration, err := p.exec.Duration(ctx, clip)
		if err != nil {
			return nil, err
		}
		overlaid := filepath.Join(workDir, fmt.Sprintf("intro_%03d_overlaid.mp4", i))
		if err := p.ovl.Apply(ctx, clip, overlayVideo, overlaid, duration); err != nil {
			return nil, err
		}
		out = append(out, overlaid)
	}
	return out, nil
}

// assembleMaster builds the silent master video at exactly audioDuration
// seconds from the intro clips and the (possibly absent) slideshow cycle.
func (p *Pipeline) assembleMaster(ctx context.Context, workDir string, introClips []string, introDuration float64, cycle string, cycleDuration, remaining, audioDuration float64, master string) error {
	// Intros alone already cover the narration: trim them to fit.
	if remaining <= 0 {
		if len(introClips) == 0 {
			return fmt.Errorf("nothing to assemble: no intro clips and no slideshow")
		}
		p.logger.Info().Msg("intro videos cover the narration, trimming")
		if len(introClips) == 1 {
			return p.exec.StreamLoop(ctx, introClips[0], master, 1, audioDuration)
		}
		return p.exec.Concat(ctx, ffmpeg.ConcatOptions{
			Inputs: introClips,
			Output: master,
			TrimTo: audioDuration,
		})
	}

	// Build the intro master and the looped slideshow master.
	var components []string

	if len(introClips) == 1 {
		components = append(components, introClips[0])
	} else if len(introClips) > 1 {
		introMaster := filepath.Join(workDir, "intro_master.mp4")
		if err := p.exec.Concat(ctx, ffmpeg.ConcatOptions{Inputs: introClips, Output: introMaster}); err != nil {
			return err
		}
		components = append(components, introMaster)
	}

	if cycle != "" {
		slideshowMaster := filepath.Join(workDir, "slideshow_master.mp4")
		loops := LoopCount(remaining, cycleDuration)
		p.logger.Info().Int("loops", loops).Float64("fill", remaining).Msg("looping slideshow cycle")
		if err := p.exec.StreamLoop(ctx, cycle, slideshowMaster, loops, remaining); err != nil {
			return err
		}
		components = append(components, slideshowMaster)
	}

	switch len(components) {
	case 0:
		return fmt.Errorf("nothing to assemble")
	case 1:
		if p.cfg.UseFadeOut {
			return p.fadeOutPass(ctx, components[0], master)
		}
		return util.CopyFile(components[0], master)
	}

	if p.cfg.BlackFade {
		return p.blackFadeJoin(ctx, components[0], components[1], introDuration, master)
	}

	joined := master
	if p.cfg.UseFadeOut {
		joined = filepath.Join(workDir, "assembled.mp4")
	}
	if err := p.exec.Concat(ctx, ffmpeg.ConcatOptions{Inputs: components, Output: joined}); err != nil {
		return err
	}
	if p.cfg.UseFadeOut {
		return p.fadeOutPass(ctx, joined, master)
	}
	return nil
}

// blackFadeJoin dips to black between the intro and the slideshow, then
// fades the whole timeline out at the end.
func (p *Pipeline) blackFadeJoin(ctx context.Context, intro, slideshow string, introDuration float64, output string) error {
	slideDuration, err := p.exec.Duration(ctx, slideshow)
	if err != nil {
		return err
	}

	filter := fmt.Sprintf(
		"[0:v]fade=t=out:st=%s:d=%s:color=black[intro_fade];"+
			"[1:v]fade=t=in:st=0:d=%s:color=black[slide_fade];"+
			"[intro_fade][slide_fade]concat=n=2:v=1:a=0[v]",
		util.FormatSeconds(introDuration-fadeDuration),
		util.FormatSeconds(fadeDuration),
		util.FormatSeconds(fadeDuration))

	mapLabel := "[v]"
	if p.cfg.UseFadeOut {
		total := introDuration + slideDuration
		filter += fmt.Sprintf(";[v]fade=t=out:st=%s:d=%s[vfinal]",
			util.FormatSeconds(total-fadeDuration), util.FormatSeconds(fadeDuration))
		mapLabel = "[vfinal]"
	}

	args := []string{
		"-i", intro,
		"-i", slideshow,
		"-filter_complex", filter,
		"-map", mapLabel,
		"-c:v", ffmpeg.DefaultVideoCodec,
		"-preset", p.cfg.Preset,
		"-crf", fmt.Sprintf("%d", p.cfg.CRF),
		output,
	}
	return p.exec.Run(ctx, ffmpeg.RunOptions{Args: args})
}

// fadeOutPass re-encodes input with a fade to black over its last half
// second.
func (p *Pipeline) fadeOutPass(ctx context.Context, input, output string) error {
	duration, err := p.exec.Duration(ctx, input)
	if err != nil {
		return err
	}

	encArgs, err := p.exec.EncoderArgs(ctx, p.cfg.EncoderMode, p.cfg.CRF, p.cfg.Preset)
	if err != nil {
		return err
	}

	args := []string{
		"-i", input,
		"-vf", fmt.Sprintf("fade=t=out:st=%s:d=%s",
			util.FormatSeconds(duration-fadeDuration), util.FormatSeconds(fadeDuration)),
		"-an",
	}
	args = append(args, encArgs...)
	args = append(args, output)
	return p.exec.Run(ctx, ffmpeg.RunOptions{Args: args})
}

// logProgress returns a progress callback that reports encode progress
// for the named stage.
func (p *Pipeline) logProgress(stage string) ffmpeg.ProgressFunc {
	return func(prog *ffmpeg.Progress) {
		p.logger.Info().
			Str("stage", stage).
			Int("frame", prog.Frame).
			Str("time", prog.Time).
			Str("speed", prog.Speed).
			Msg("encoding")
	}
}

// bgMusic returns the background track, or empty when disabled.
func (p *Pipeline) bgMusic(proj *project.Project) string {
	if !p.cfg.UseBGMusic {
		return ""
	}
	return proj.BGMusic
}
