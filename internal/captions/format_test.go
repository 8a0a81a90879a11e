package captions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/videostove/videostove/internal/config"
)

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.042, "00:01:01,042"},
		{3661.25, "01:01:01,250"},
	}
	for _, tt := range tests {
		if got := FormatSRTTime(tt.seconds); got != tt.want {
			t.Errorf("FormatSRTTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatASSTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{1.5, "0:00:01.50"},
		{3661.25, "1:01:01.25"},
	}
	for _, tt := range tests {
		if got := FormatASSTime(tt.seconds); got != tt.want {
			t.Errorf("FormatASSTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	cues := []Cue{
		{Start: 0, End: 1.5, Text: "first line"},
		{Start: 2, End: 3, Text: "second\nline"},
	}
	if err := WriteSRT(path, cues); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if !strings.Contains(got, "1\n00:00:00,000 --> 00:00:01,500\nfirst line\n\n") {
		t.Errorf("missing first cue block:\n%s", got)
	}
	if !strings.Contains(got, "second line") {
		t.Errorf("newline not flattened:\n%s", got)
	}
	if !strings.HasPrefix(got, "1\n") {
		t.Errorf("numbering must start at 1:\n%s", got)
	}
}

func TestWriteKaraokeASS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ass")
	words := []Word{
		{Word: "hello", Start: 1.0, End: 1.5},
		{Word: "world", Start: 1.5, End: 2.25},
	}
	if err := WriteKaraokeASS(path, words); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	if !strings.Contains(got, "[V4+ Styles]") {
		t.Error("missing styles section")
	}
	if !strings.Contains(got, `Dialogue: 0,0:00:01.00,0:00:01.50,Karaoke,,0,0,0,,{\k50}hello\N`) {
		t.Errorf("missing karaoke line for hello:\n%s", got)
	}
	if !strings.Contains(got, `{\k75}world`) {
		t.Errorf("wrong sweep duration for world:\n%s", got)
	}
}

func TestWriteKaraokeASSRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ass")
	if err := WriteKaraokeASS(path, nil); err == nil {
		t.Error("expected error for empty word list")
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		vertical, horizontal string
		want                 int
	}{
		{"bottom", "center", 2},
		{"bottom", "left", 1},
		{"bottom", "right", 3},
		{"center", "center", 5},
		{"top", "center", 8},
		{"top", "right", 9},
	}
	for _, tt := range tests {
		if got := alignment(tt.vertical, tt.horizontal); got != tt.want {
			t.Errorf("alignment(%q, %q) = %d, want %d", tt.vertical, tt.horizontal, got, tt.want)
		}
	}
}

func TestHexToASSColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#FFFFFF", "&Hffffff"},
		{"#000000", "&H000000"},
		{"#FF0000", "&H0000ff"}, // red lands in the low byte
		{"#0000FF", "&Hff0000"},
		{"garbage", "&Hffffff"},
	}
	for _, tt := range tests {
		if got := hexToASSColor(tt.hex); got != tt.want {
			t.Errorf("hexToASSColor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}

func TestForceStyleMargins(t *testing.T) {
	cfg := config.Default()
	cfg.Captions.MarginVertical = 30
	cfg.Captions.MarginHorizontal = 40

	b := NewBurner(nil, cfg, zerolog.Nop())
	style := b.forceStyle()

	if !strings.Contains(style, "MarginV=30") {
		t.Errorf("vertical margin missing: %s", style)
	}
	if !strings.Contains(style, "MarginL=40") || !strings.Contains(style, "MarginR=40") {
		t.Errorf("horizontal margins missing: %s", style)
	}
}

func TestForceStyleGlobalFontFallback(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "brand.ttf")
	if err := os.WriteFile(fontPath, []byte("font"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Assets.FontFile = fontPath

	b := NewBurner(nil, cfg, zerolog.Nop())
	if style := b.forceStyle(); !strings.Contains(style, "FontName="+fontPath) {
		t.Errorf("global font not applied: %s", style)
	}

	// A caption-level font wins over the global asset.
	captionFont := filepath.Join(t.TempDir(), "caption.ttf")
	if err := os.WriteFile(captionFont, []byte("font"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Captions.FontFile = captionFont
	if style := b.forceStyle(); !strings.Contains(style, "FontName="+captionFont) {
		t.Errorf("caption font not preferred: %s", style)
	}
}

func TestForceStyleMissingFontFallsBackToFamily(t *testing.T) {
	cfg := config.Default()
	cfg.Captions.FontFile = filepath.Join(t.TempDir(), "missing.ttf")

	b := NewBurner(nil, cfg, zerolog.Nop())
	style := b.forceStyle()
	if !strings.Contains(style, fmt.Sprintf("FontName=%s,", cfg.Captions.FontFamily)) {
		t.Errorf("missing font should fall back to the family name: %s", style)
	}
}

func TestEscapeSubtitlePath(t *testing.T) {
	got := escapeSubtitlePath(`C:\videos\it's.srt`)
	if strings.Contains(got, `\videos`) {
		t.Errorf("backslashes not normalized: %q", got)
	}
	if !strings.Contains(got, `\'`) {
		t.Errorf("quote not escaped: %q", got)
	}
	if !strings.Contains(got, `\:`) {
		t.Errorf("colon not escaped: %q", got)
	}
}
