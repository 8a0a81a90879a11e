package ffmpeg

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath   string
	Duration   float64
	Width      int
	Height     int
	FPS        float64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame int
	FPS   float64
	Time  string
	Speed string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
type ProgressFunc func(*Progress)

// Output frame geometry shared by every rendered clip. The montage and
// videos-only paths stream copy source segments, everything rendered from
// stills lands on this raster.
const (
	FrameWidth  = 1920
	FrameHeight = 1080
	FrameRate   = 25
)

// Default encoding settings
const (
	DefaultCRF        = 22
	DefaultPreset     = "fast"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"

	// Crossfade steps always re-encode; keep them cheap.
	CrossfadeCRF    = 25
	CrossfadePreset = "ultrafast"
)
