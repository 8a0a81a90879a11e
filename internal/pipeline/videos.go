package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/project"
	"github.com/videostove/videostove/pkg/util"
)

// videosOnly compiles the project's videos back to back, looping the
// whole sequence when the narration outlasts it.
func (p *Pipeline) videosOnly(ctx context.Context, proj *project.Project, output string) error {
	workDir, err := os.MkdirTemp("", "videostove-videos-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	audioDuration, err := p.exec.Duration(ctx, proj.MainAudio)
	if err != nil {
		return fmt.Errorf("probing narration: %w", err)
	}

	var totalVideo float64
	for _, video := range proj.Videos {
		d, err := p.exec.Duration(ctx, video)
		if err != nil {
			return fmt.Errorf("probing %s: %w", filepath.Base(video), err)
		}
		totalVideo += d
	}

	needsLooping := totalVideo < audioDuration
	loops := 1
	if needsLooping {
		loops = LoopCount(audioDuration, totalVideo)
		p.logger.Info().Int("loops", loops).Msg("videos shorter than narration, looping")
	}

	// Normalize every video. Fades only bracket the compilation, and the
	// closing fade moves to a later pass when the sequence loops.
	processed := make([]string, 0, len(proj.Videos))
	for i, video := range proj.Videos {
		duration, err := p.exec.Duration(ctx, video)
		if err != nil {
			return err
		}
		clip := filepath.Join(workDir, fmt.Sprintf("processed_%03d.mp4", i))
		fadeIn := i == 0 && p.cfg.UseFadeIn
		fadeOut := i == len(proj.Videos)-1 && !needsLooping && p.cfg.UseFadeOut

		if err := p.processVideoClip(ctx, video, clip, duration, fadeIn, fadeOut); err != nil {
			return fmt.Errorf("processing %s: %w", filepath.Base(video), err)
		}
		processed = append(processed, clip)
	}

	// Repeat the full sequence enough times, then cut at the narration.
	inputs := make([]string, 0, len(processed)*loops)
	for i := 0; i < loops; i++ {
		inputs = append(inputs, processed...)
	}

	var trimTo float64
	if totalVideo*float64(loops) > audioDuration {
		trimTo = audioDuration
	}

	compiled := filepath.Join(workDir, "compiled.mp4")
	if err := p.exec.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs: inputs,
		Output: compiled,
		TrimTo: trimTo,
	}); err != nil {
		return err
	}

	final := compiled
	if p.cfg.UseOverlay && proj.Overlay != "" {
		overlaid := filepath.Join(workDir, "compiled_overlaid.mp4")
		if err := p.ovl.Apply(ctx, compiled, proj.Overlay, overlaid, audioDuration); err != nil {
			return err
		}
		final = overlaid
	}

	// A looped compilation ends mid-clip, so fade the cut point out.
	if needsLooping && p.cfg.UseFadeOut {
		faded := filepath.Join(workDir, "compiled_faded.mp4")
		args := []string{
			"-i", final,
			"-vf", fmt.Sprintf("fade=t=out:st=%s:d=%s",
				util.FormatSeconds(audioDuration-fadeDuration), util.FormatSeconds(fadeDuration)),
			"-an",
			"-c:v", ffmpeg.DefaultVideoCodec,
			"-preset", ffmpeg.CrossfadePreset,
			"-crf", strconv.Itoa(ffmpeg.CrossfadeCRF),
			faded,
		}
		if err := p.exec.Run(ctx, ffmpeg.RunOptions{Args: args}); err != nil {
			return err
		}
		final = faded
	}

	encArgs, err := p.exec.EncoderArgs(ctx, p.cfg.EncoderMode, p.cfg.CRF, p.cfg.Preset)
	if err != nil {
		return err
	}

	return p.exec.MixAudio(ctx, ffmpeg.MixOptions{
		Video:        final,
		MainAudio:    proj.MainAudio,
		BGMusic:      p.bgMusic(proj),
		MainVolume:   p.cfg.MainAudioVolume,
		BGVolume:     p.cfg.BGVolume,
		Duration:     audioDuration,
		VideoArgs:    encArgs,
		Output:       output,
		ProgressFunc: p.logProgress("final mix"),
	})
}

// processVideoClip normalizes a source video to the shared raster and
// frame rate, silent, with optional bracketing fades. All source videos
// pass through here so stream copy concat works downstream.
func (p *Pipeline) processVideoClip(ctx context.Context, input, output string, duration float64, fadeIn, fadeOut bool) error {
	fb := ffmpeg.NewFilterBuilder().ScaleCover(ffmpeg.FrameWidth, ffmpeg.FrameHeight)
	if fadeIn {
		fb.FadeIn(fadeDuration)
	}
	if fadeOut {
		fb.FadeOut(duration-fadeDuration, fadeDuration)
	}

	args := []string{
		"-i", input,
		"-vf", fb.Build(),
		"-r", strconv.Itoa(ffmpeg.FrameRate),
		"-c:v", ffmpeg.DefaultVideoCodec,
		"-preset", ffmpeg.CrossfadePreset,
		"-crf", strconv.Itoa(ffmpeg.CrossfadeCRF),
		"-pix_fmt", "yuv420p",
		"-an",
		output,
	}
	return p.exec.Run(ctx, ffmpeg.RunOptions{Args: args})
}
