package captions

import (
	"fmt"
	"os"
	"strings"
)

// assHeader styles the karaoke track: a white default style plus a
// yellow highlight style the \k tags sweep through.
const assHeader = `[Script Info]
Title: VideoStove Karaoke
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&Hffffff,&Hffffff,&H0,&H80000000,1,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1
Style: Karaoke,Arial,20,&H00ffff,&Hffffff,&H0,&H80000000,1,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// FormatASSTime renders seconds as an ASS timestamp (H:MM:SS.cc).
func FormatASSTime(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	centis := int((seconds - float64(int(seconds))) * 100)
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}

// WriteKaraokeASS writes one dialogue line per word, each carrying a \k
// sweep for its spoken duration in centiseconds.
func WriteKaraokeASS(path string, words []Word) error {
	if len(words) == 0 {
		return fmt.Errorf("no words to write")
	}

	var b strings.Builder
	b.WriteString(assHeader)
	for _, w := range words {
		sweep := int((w.End - w.Start) * 100)
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Karaoke,,0,0,0,,{\\k%d}%s\\N\n",
			FormatASSTime(w.Start), FormatASSTime(w.End), sweep, w.Word)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
