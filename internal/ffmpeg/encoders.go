package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// HardwareEncoder identifies an h264 hardware encoder ffmpeg was built with.
type HardwareEncoder string

const (
	EncoderAMD    HardwareEncoder = "h264_amf"
	EncoderNVIDIA HardwareEncoder = "h264_nvenc"
	EncoderIntel  HardwareEncoder = "h264_qsv"
)

const encoderProbeTimeout = 15 * time.Second

// HardwareEncoders returns the h264 hardware encoders available in this
// ffmpeg build. The probe runs once per Executor; a failed probe means no
// hardware encoders, never a fatal error.
func (e *Executor) HardwareEncoders(ctx context.Context) []HardwareEncoder {
	e.probeOnce.Do(func() {
		e.hwEnc = e.detectEncoders(ctx)
	})
	return e.hwEnc
}

func (e *Executor) detectEncoders(ctx context.Context) []HardwareEncoder {
	ctx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpegPath, "-hide_banner", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		e.logger.Warn().Err(err).Msg("encoder detection failed, assuming software only")
		return nil
	}

	var found []HardwareEncoder
	text := string(output)
	for _, enc := range []HardwareEncoder{EncoderAMD, EncoderNVIDIA, EncoderIntel} {
		if strings.Contains(text, string(enc)) {
			found = append(found, enc)
		}
	}

	e.logger.Debug().Int("count", len(found)).Msg("hardware encoder probe complete")
	return found
}

func (e *Executor) hasEncoder(ctx context.Context, enc HardwareEncoder) bool {
	for _, have := range e.HardwareEncoders(ctx) {
		if have == enc {
			return true
		}
	}
	return false
}

// EncoderArgs returns the video codec arguments for the requested encoder
// mode. Auto prefers AMD, then NVIDIA, then Intel, degrading to software
// when nothing is available. An explicit vendor selection is honored as-is
// so a misconfigured system fails loudly instead of silently re-encoding
// on the CPU.
func (e *Executor) EncoderArgs(ctx context.Context, mode string, crf int, preset string) ([]string, error) {
	switch mode {
	case "", "auto":
		switch {
		case e.hasEncoder(ctx, EncoderAMD):
			return amfArgs(), nil
		case e.hasEncoder(ctx, EncoderNVIDIA):
			return nvencArgs(), nil
		case e.hasEncoder(ctx, EncoderIntel):
			return qsvArgs(), nil
		default:
			return softwareArgs(crf, preset), nil
		}
	case "software", "cpu":
		return softwareArgs(crf, preset), nil
	case "amd":
		return amfArgs(), nil
	case "nvidia":
		return nvencArgs(), nil
	case "intel":
		return qsvArgs(), nil
	}
	return nil, fmt.Errorf("unknown encoder mode %q", mode)
}

func softwareArgs(crf int, preset string) []string {
	if crf <= 0 {
		crf = DefaultCRF
	}
	if preset == "" {
		preset = DefaultPreset
	}
	return []string{"-c:v", "libx264", "-preset", preset, "-crf", strconv.Itoa(crf)}
}

func nvencArgs() []string {
	return []string{"-c:v", "h264_nvenc", "-preset", "fast", "-b:v", "8M"}
}

func amfArgs() []string {
	return []string{"-c:v", "h264_amf", "-quality", "speed", "-rc", "cbr", "-b:v", "8M"}
}

func qsvArgs() []string {
	return []string{"-c:v", "h264_qsv", "-preset", "fast", "-b:v", "8M"}
}
