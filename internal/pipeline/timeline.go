package pipeline

import "math"

// LoopCount returns how many plays of a cycle cover the target duration.
// Anything that fits in one play still needs one.
func LoopCount(target, cycle float64) int {
	if cycle <= 0 || target <= 0 {
		return 1
	}
	return int(math.Ceil(target / cycle))
}

// RemainingTime is the slideshow's share of the timeline after the intro
// videos have played.
func RemainingTime(audioDuration, introDuration float64) float64 {
	return audioDuration - introDuration
}

// fadeDuration is the length of every fade the pipeline applies, in
// seconds.
const fadeDuration = 0.5
