package captions

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/videostove/videostove/internal/config"
)

func captionConfig() *config.CaptionConfig {
	cfg := config.Default().Captions
	return &cfg
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSingleWordCues(t *testing.T) {
	segments := []Segment{{Text: "hello world", Start: 1.0, End: 3.0}}

	cfg := captionConfig()
	cfg.Animation = "single_words"
	cues := BuildCues(segments, cfg, nil)

	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Text != "HELLO" || !near(cues[0].Start, 1.0) || !near(cues[0].End, 2.0) {
		t.Errorf("cue 0 = %+v, want HELLO 1.0-2.0", cues[0])
	}
	if cues[1].Text != "WORLD" || !near(cues[1].Start, 2.0) || !near(cues[1].End, 3.0) {
		t.Errorf("cue 1 = %+v, want WORLD 2.0-3.0", cues[1])
	}
}

func TestTypewriterCuesAccumulate(t *testing.T) {
	segments := []Segment{{Text: "one two three", Start: 0, End: 3.0}}

	cfg := captionConfig()
	cfg.Animation = "word_by_word"
	cues := BuildCues(segments, cfg, nil)

	want := []string{"one", "one two", "one two three"}
	if len(cues) != len(want) {
		t.Fatalf("got %d cues, want %d", len(cues), len(want))
	}
	for i, w := range want {
		if cues[i].Text != w {
			t.Errorf("cue %d = %q, want %q", i, cues[i].Text, w)
		}
	}
	if !near(cues[2].End, 3.0) {
		t.Errorf("last cue ends at %v, want 3.0", cues[2].End)
	}
}

func TestSingleLinePassThrough(t *testing.T) {
	segments := []Segment{{Text: " short line ", Start: 0, End: 2}}
	cues := BuildCues(segments, captionConfig(), nil)

	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if cues[0].Text != "short line" {
		t.Errorf("text = %q, want trimmed pass-through", cues[0].Text)
	}
}

func TestSingleLineReflowProportional(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps on running far away"
	segments := []Segment{{Text: text, Start: 10, End: 20}}

	cfg := captionConfig()
	cfg.MaxCharsPerLine = 30
	cues := BuildCues(segments, cfg, nil)

	if len(cues) < 2 {
		t.Fatalf("expected reflow into multiple cues, got %d", len(cues))
	}
	for _, cue := range cues {
		if len(cue.Text) > 30 {
			t.Errorf("cue exceeds width limit: %q", cue.Text)
		}
	}
	if !near(cues[0].Start, 10) {
		t.Errorf("first cue starts at %v, want 10", cues[0].Start)
	}
	if !near(cues[len(cues)-1].End, 20) {
		t.Errorf("last cue ends at %v, want segment end 20", cues[len(cues)-1].End)
	}
	// Chunks must tile the segment with no holes.
	for i := 0; i < len(cues)-1; i++ {
		if !near(cues[i].End, cues[i+1].Start) {
			t.Errorf("gap between cue %d and %d: %v vs %v", i, i+1, cues[i].End, cues[i+1].Start)
		}
	}
}

func TestSingleLineSkipsTinySegments(t *testing.T) {
	segments := []Segment{
		{Text: "a", Start: 0, End: 1},
		{Text: "real text", Start: 1, End: 2},
	}
	cues := BuildCues(segments, captionConfig(), nil)
	if len(cues) != 1 || cues[0].Text != "real text" {
		t.Errorf("cues = %+v, want only the real segment", cues)
	}
}

func TestEnforceGaps(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 1.95, Text: "a"},
		{Start: 2.0, End: 3.0, Text: "b"},
	}
	enforceGaps(cues)
	if !near(cues[0].End, 1.9) {
		t.Errorf("end = %v, want pulled back to 1.9", cues[0].End)
	}

	// Overlapping cues stay untouched.
	overlap := []Cue{
		{Start: 0, End: 2.5, Text: "a"},
		{Start: 2.0, End: 3.0, Text: "b"},
	}
	enforceGaps(overlap)
	if !near(overlap[0].End, 2.5) {
		t.Errorf("overlapping cue modified: %v", overlap[0].End)
	}

	// A cue shorter than the gap collapses instead of inverting.
	tiny := []Cue{
		{Start: 1.0, End: 1.05, Text: "a"},
		{Start: 1.08, End: 2.0, Text: "b"},
	}
	enforceGaps(tiny)
	if !near(tiny[0].End, 1.0) {
		t.Errorf("end = %v, want clamped to the cue start", tiny[0].End)
	}
	if tiny[0].End < tiny[0].Start {
		t.Errorf("cue inverted: start %v, end %v", tiny[0].Start, tiny[0].End)
	}
}

func TestChunkedCuesSeeded(t *testing.T) {
	segments := []Segment{{Text: "a b c d e f g h i j", Start: 0, End: 10}}

	cfg := captionConfig()
	cfg.WordByWord = true

	first := BuildCues(segments, cfg, rand.New(rand.NewSource(42)))
	second := BuildCues(segments, cfg, rand.New(rand.NewSource(42)))

	if len(first) != len(second) {
		t.Fatalf("same seed produced different cue counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("cue %d differs: %q vs %q", i, first[i].Text, second[i].Text)
		}
	}

	// Every word appears exactly once, in order.
	var joined []string
	for _, cue := range first {
		joined = append(joined, cue.Text)
		words := strings.Fields(cue.Text)
		if len(words) < 1 || len(words) > 3 {
			t.Errorf("chunk size out of range: %q", cue.Text)
		}
	}
	if strings.Join(joined, " ") != "a b c d e f g h i j" {
		t.Errorf("chunks lost or reordered words: %v", joined)
	}
}

func TestWordByWordToggleWinsOverAnimation(t *testing.T) {
	segments := []Segment{{Text: "one two", Start: 0, End: 2}}

	cfg := captionConfig()
	cfg.WordByWord = true
	cfg.Animation = "single_words"

	cues := BuildCues(segments, cfg, rand.New(rand.NewSource(1)))
	for _, cue := range cues {
		if cue.Text == strings.ToUpper(cue.Text) && cue.Text != strings.ToLower(cue.Text) {
			t.Errorf("single_words animation ran despite toggle: %q", cue.Text)
		}
	}
}

func TestLiveTimingUsesWordTimestamps(t *testing.T) {
	segments := []Segment{{
		Text:  "hello there friend",
		Start: 0, End: 3,
		Words: []Word{
			{Word: "hello", Start: 0.2, End: 0.8},
			{Word: "there", Start: 0.9, End: 1.4},
			{Word: "friend", Start: 2.0, End: 2.6},
		},
	}}

	cfg := captionConfig()
	cfg.LiveTiming = true
	cues := BuildCues(segments, cfg, nil)

	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if cues[0].Text != "hello there friend" {
		t.Errorf("text = %q", cues[0].Text)
	}
	if !near(cues[0].Start, 0.2) {
		t.Errorf("start = %v, want first word start 0.2", cues[0].Start)
	}
	if !near(cues[0].End, 3.0) {
		t.Errorf("end = %v, want segment end 3.0", cues[0].End)
	}
}

func TestLiveTimingSplitsLongLines(t *testing.T) {
	var words []Word
	var text []string
	for i := 0; i < 20; i++ {
		w := Word{Word: "abcdefgh", Start: float64(i), End: float64(i) + 0.8}
		words = append(words, w)
		text = append(text, w.Word)
	}
	segments := []Segment{{
		Text:  strings.Join(text, " "),
		Start: 0, End: 20,
		Words: words,
	}}

	cfg := captionConfig()
	cfg.LiveTiming = true
	cues := BuildCues(segments, cfg, nil)

	if len(cues) < 2 {
		t.Fatalf("expected line splits, got %d cues", len(cues))
	}
	for _, cue := range cues {
		if len(cue.Text) > liveLineLimit {
			t.Errorf("line exceeds limit: %q", cue.Text)
		}
	}
}

func TestLiveTimingFallbackWithoutWords(t *testing.T) {
	segments := []Segment{{Text: "no word data here", Start: 0, End: 4}}

	cfg := captionConfig()
	cfg.LiveTiming = true
	cues := BuildCues(segments, cfg, nil)

	if len(cues) == 0 {
		t.Fatal("expected cues from even-split fallback")
	}
	if !near(cues[len(cues)-1].End, 4.0) {
		t.Errorf("end = %v, want 4.0", cues[len(cues)-1].End)
	}
}

func TestMultiLineGrouping(t *testing.T) {
	segments := []Segment{
		{Text: "first part", Start: 0, End: 2},
		{Text: "second part", Start: 2, End: 4},
		{Text: strings.Repeat("x", 70), Start: 4, End: 6},
	}

	cfg := captionConfig()
	cfg.LayoutType = "multi"
	cues := BuildCues(segments, cfg, nil)

	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Text != "first part second part" {
		t.Errorf("cue 0 = %q", cues[0].Text)
	}
	if !near(cues[1].End, 6.0) {
		t.Errorf("final cue ends at %v, want 6.0", cues[1].End)
	}
}
