package captions

import (
	"fmt"
	"os"
	"strings"
)

// FormatSRTTime renders seconds as an SRT timestamp (HH:MM:SS,mmm).
func FormatSRTTime(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT writes cues to path in SubRip format. Cue text is flattened
// to a single line.
func WriteSRT(path string, cues []Cue) error {
	var b strings.Builder
	for i, cue := range cues {
		text := strings.TrimSpace(strings.ReplaceAll(cue.Text, "\n", " "))
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, FormatSRTTime(cue.Start), FormatSRTTime(cue.End), text)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
