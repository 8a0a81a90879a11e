package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/videostove/videostove/pkg/util"
)

// FilterBuilder helps construct complex ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width == 0 || height == 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// ScaleCover scales to cover the target frame, then crops the overflow.
func (fb *FilterBuilder) ScaleCover(width, height int) *FilterBuilder {
	fb.filters = append(fb.filters,
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", width, height),
		fmt.Sprintf("crop=%d:%d", width, height))
	return fb
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps int) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fps=%d", fps))
	return fb
}

// Crop adds a crop filter
func (fb *FilterBuilder) Crop(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("crop=%d:%d", width, height))
	return fb
}

// FadeIn adds a fade-in starting at t=0.
func (fb *FilterBuilder) FadeIn(duration float64) *FilterBuilder {
	fb.filters = append(fb.filters,
		fmt.Sprintf("fade=t=in:st=0:d=%s", util.FormatSeconds(duration)))
	return fb
}

// FadeOut adds a fade-out ending at clipDuration.
func (fb *FilterBuilder) FadeOut(start, duration float64) *FilterBuilder {
	fb.filters = append(fb.filters,
		fmt.Sprintf("fade=t=out:st=%s:d=%s",
			util.FormatSeconds(start), util.FormatSeconds(duration)))
	return fb
}

// SetSAR pins the sample aspect ratio to square pixels.
func (fb *FilterBuilder) SetSAR() *FilterBuilder {
	fb.filters = append(fb.filters, "setsar=1")
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// BuildAll returns all filters as a slice
func (fb *FilterBuilder) BuildAll() []string {
	return fb.filters
}
