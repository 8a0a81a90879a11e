package captions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/internal/logging"
	"github.com/videostove/videostove/pkg/util"
)

// Burner renders a subtitle file into the video frames.
type Burner struct {
	exec   *ffmpeg.Executor
	cfg    *config.Config
	logger zerolog.Logger
}

// NewBurner creates a subtitle burner.
func NewBurner(exec *ffmpeg.Executor, cfg *config.Config, logger zerolog.Logger) *Burner {
	return &Burner{
		exec:   exec,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "burnin"),
	}
}

// Burn renders subtitlePath into video, writing output. SRT files get
// the configured styling via force_style; ASS files carry their own.
func (b *Burner) Burn(ctx context.Context, video, subtitlePath, output string) error {
	filter := fmt.Sprintf("subtitles='%s'", escapeSubtitlePath(subtitlePath))
	if strings.HasSuffix(strings.ToLower(subtitlePath), ".srt") {
		filter += ":" + b.forceStyle()
	}

	encArgs, err := b.exec.EncoderArgs(ctx, b.cfg.EncoderMode, b.cfg.CRF, b.cfg.Preset)
	if err != nil {
		return err
	}

	args := []string{
		"-i", video,
		"-vf", filter,
		"-c:a", "copy",
	}
	args = append(args, encArgs...)
	args = append(args, output)

	b.logger.Info().Str("subtitles", subtitlePath).Msg("burning subtitles")
	return b.exec.Run(ctx, ffmpeg.RunOptions{Args: args})
}

// forceStyle maps the caption config onto libass style overrides.
func (b *Burner) forceStyle() string {
	cc := &b.cfg.Captions

	font := cc.FontFamily
	fontFile := cc.FontFile
	if fontFile == "" {
		fontFile = b.cfg.Assets.FontFile
	}
	if fontFile != "" {
		if util.FileExists(fontFile) {
			font = fontFile
		} else {
			b.logger.Warn().Str("font", fontFile).Msg("custom font not found, using system font")
		}
	}

	bold := 0
	if cc.FontWeight == "bold" {
		bold = 1
	}

	return fmt.Sprintf(
		"force_style='FontName=%s,FontSize=%d,Bold=%d,PrimaryColour=%s,OutlineColour=%s,Outline=%d,Alignment=%d,MarginV=%d,MarginL=%d,MarginR=%d'",
		font, cc.FontSize, bold,
		hexToASSColor(cc.TextColor),
		hexToASSColor(cc.OutlineColor),
		cc.OutlineWidth,
		alignment(cc.VerticalPos, cc.HorizontalPos),
		cc.MarginVertical,
		cc.MarginHorizontal,
		cc.MarginHorizontal,
	)
}

// alignment maps position names to libass numpad alignment: bottom row
// is 1-3, middle 4-6, top 7-9.
func alignment(vertical, horizontal string) int {
	a := 2
	switch horizontal {
	case "left":
		a = 1
	case "right":
		a = 3
	}
	switch vertical {
	case "center":
		a += 3
	case "top":
		a += 6
	}
	return a
}

// hexToASSColor converts "#RRGGBB" to libass "&Hbbggrr". Unparseable
// colors fall back to white.
func hexToASSColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "&Hffffff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "&Hffffff"
	}
	r := (v >> 16) & 0xff
	g := (v >> 8) & 0xff
	bl := v & 0xff
	return fmt.Sprintf("&H%02x%02x%02x", bl, g, r)
}

// escapeSubtitlePath escapes characters the subtitles filter treats as
// syntax.
func escapeSubtitlePath(path string) string {
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	path = strings.ReplaceAll(path, `'`, `\'`)
	return path
}
