package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/videostove/videostove/pkg/util"
)

const probeTimeout = 30 * time.Second

// probeResult mirrors ffprobe's JSON output
type probeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMedia extracts metadata from a media file
func (e *Executor) ProbeMedia(ctx context.Context, filePath string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	e.logger.Debug().Str("file", filePath).Msg("probing media")

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{FilePath: filePath}

	if result.Format.Duration != "" {
		info.Duration, _ = strconv.ParseFloat(result.Format.Duration, 64)
	}

	for _, stream := range result.Streams {
		switch stream.CodecType {
		case "video":
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
			if fps := util.ParseFrameRate(stream.AvgFrameRate); fps > 0 {
				info.FPS = fps
			} else {
				info.FPS = util.ParseFrameRate(stream.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
		}
	}

	return info, nil
}

// Duration returns the duration of a media file in seconds. A file
// ffprobe cannot read reports zero duration and an error.
func (e *Executor) Duration(ctx context.Context, filePath string) (float64, error) {
	info, err := e.ProbeMedia(ctx, filePath)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// HasAudio reports whether the file carries at least one audio stream.
func (e *Executor) HasAudio(ctx context.Context, filePath string) (bool, error) {
	info, err := e.ProbeMedia(ctx, filePath)
	if err != nil {
		return false, err
	}
	return info.HasAudio, nil
}
