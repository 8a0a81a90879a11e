// Package motion renders still images into moving clips. Each image gets
// a zoom or pan direction chosen by the animation style, and the
// sequential style rotates pan directions so adjacent slides never repeat
// a movement.
package motion

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/videostove/videostove/internal/ffmpeg"
	"github.com/videostove/videostove/pkg/util"
)

// Direction is the movement applied to a single image.
type Direction string

const (
	ZoomIn   Direction = "zoom_in"
	ZoomOut  Direction = "zoom_out"
	PanRight Direction = "right"
	PanLeft  Direction = "left"
	PanDown  Direction = "down"
	PanUp    Direction = "up"
	NoMotion Direction = "no_motion"
)

// panRotation is the cycle middle slides walk through under the
// sequential style.
var panRotation = []Direction{PanRight, PanLeft, PanDown, PanUp}

// PickDirection selects the motion for image i of total under the given
// animation style. rng is only consulted by the random style; pass nil
// for deterministic styles.
func PickDirection(style string, i, total int, rng *rand.Rand) Direction {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "zoom_in", "zoom in only", "zoom in":
		return ZoomIn
	case "zoom_out", "zoom out only", "zoom out":
		return ZoomOut
	case "pan", "pan only":
		return PanRight
	case "none", "no animation", "no_motion":
		return NoMotion
	case "random", "random motion":
		all := append([]Direction{}, panRotation...)
		all = append(all, ZoomIn, ZoomOut)
		if rng == nil {
			return all[0]
		}
		return all[rng.Intn(len(all))]
	}

	// Sequential: zoom into the opening slide, out of the closing one,
	// rotate pans in between.
	if total <= 1 || i == 0 {
		return ZoomIn
	}
	if i == total-1 {
		return ZoomOut
	}
	return panRotation[(i-1)%len(panRotation)]
}

// Filter builds the video filter chain for one image clip. Fades are
// appended only for the clip's position in the slideshow: in on the
// first, out on the last.
func Filter(direction Direction, duration float64, fadeIn, fadeOut bool) string {
	fb := ffmpeg.NewFilterBuilder()

	switch direction {
	case ZoomIn, ZoomOut:
		// Upscale 2x before zoompan so the sub-pixel pans stay smooth.
		totalFrames := int(duration * ffmpeg.FrameRate)
		expr := "min(zoom+0.0015,1.2)"
		if direction == ZoomOut {
			expr = "max(zoom-0.0015,1.0)"
		}
		fb.Custom("scale=1920:1080:force_original_aspect_ratio=increase").
			Custom("crop=1920:1080:(iw-ow)/2:(ih-oh)/2").
			Custom("scale=3840:2160").
			Custom(fmt.Sprintf(
				"zoompan=z='%s':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:fps=%d:s=3840x2160",
				expr, totalFrames, ffmpeg.FrameRate)).
			Custom("scale=1920:1080")
	case NoMotion:
		fb.Custom("scale=1920:1080:force_original_aspect_ratio=increase").
			Custom("crop=1920:1080")
	default:
		// Pan directions slide a 1920x1080 window across an oversized
		// frame, linear in t. Unknown directions pan right.
		d := util.FormatSeconds(duration)
		var crop string
		switch direction {
		case PanLeft:
			crop = fmt.Sprintf("crop=1920:1080:x='(iw-ow)*(1-t/%s)':y='(ih-oh)/2'", d)
		case PanDown:
			crop = fmt.Sprintf("crop=1920:1080:x='(iw-ow)/2':y='(ih-oh)*t/%s'", d)
		case PanUp:
			crop = fmt.Sprintf("crop=1920:1080:x='(iw-ow)/2':y='(ih-oh)*(1-t/%s)'", d)
		default:
			crop = fmt.Sprintf("crop=1920:1080:x='(iw-ow)*t/%s':y='(ih-oh)/2'", d)
		}
		fb.Custom("scale=2304:-1").Custom(crop)
	}

	fb.SetSAR().Custom("format=yuv420p")

	if fadeIn {
		fb.FadeIn(0.5)
	}
	if fadeOut {
		fb.FadeOut(duration-0.5, 0.5)
	}

	return fb.Build()
}
