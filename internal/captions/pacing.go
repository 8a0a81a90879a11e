package captions

import (
	"math/rand"
	"strings"

	"github.com/videostove/videostove/internal/config"
)

// Cue is one subtitle: what to show and when.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// minCueGap is the smallest pause enforced between consecutive cues so
// they read as separate lines instead of one flickering block.
const minCueGap = 0.1

// liveLineLimit caps line length in live timing mode. Shorter than the
// configured maximum because lines grow word by word.
const liveLineLimit = 40

// multiLineLimit is the character budget when grouping segments into
// multi-line captions.
const multiLineLimit = 80

// BuildCues paces transcription segments into subtitle cues. The toggles
// take precedence over the animation setting, and the animation setting
// over the layout, so enabling a toggle in a saved preset always wins.
func BuildCues(segments []Segment, cfg *config.CaptionConfig, rng *rand.Rand) []Cue {
	switch {
	case cfg.WordByWord:
		return chunkedCues(segments, rng)
	case cfg.LiveTiming:
		return liveTimingCues(segments)
	case cfg.Animation == "word_by_word":
		return typewriterCues(segments)
	case cfg.Animation == "single_words":
		return singleWordCues(segments)
	}

	var cues []Cue
	if cfg.LayoutType == "multi" {
		cues = multiLineCues(segments)
	} else {
		cues = singleLineCues(segments, cfg.MaxCharsPerLine)
	}
	enforceGaps(cues)
	return cues
}

// singleLineCues keeps each segment on one line, reflowing segments that
// exceed maxChars into word chunks. Chunk durations are proportional to
// their character share of the segment.
func singleLineCues(segments []Segment, maxChars int) []Cue {
	var cues []Cue
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if len(text) < 2 {
			continue
		}

		if len(text) <= maxChars {
			cues = append(cues, Cue{Start: seg.Start, End: seg.End, Text: text})
			continue
		}

		chunks := splitByWidth(text, maxChars)
		totalChars := 0
		for _, c := range chunks {
			totalChars += len(c)
		}

		segDuration := seg.End - seg.Start
		chunkStart := seg.Start
		for i, chunk := range chunks {
			proportion := 1.0 / float64(len(chunks))
			if totalChars > 0 {
				proportion = float64(len(chunk)) / float64(totalChars)
			}
			chunkEnd := chunkStart + segDuration*proportion

			// The last chunk absorbs rounding drift so the cue track
			// ends exactly with the speech.
			if i == len(chunks)-1 {
				chunkEnd = seg.End
			} else if chunkEnd > seg.End {
				chunkEnd = seg.End
			}

			cues = append(cues, Cue{Start: chunkStart, End: chunkEnd, Text: chunk})
			chunkStart = chunkEnd
		}
	}
	return cues
}

// multiLineCues merges consecutive segments until the character budget
// runs out, trading precision for fewer caption switches.
func multiLineCues(segments []Segment) []Cue {
	var cues []Cue
	var current string
	var currentStart float64

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		switch {
		case current == "":
			current = text
			currentStart = seg.Start
		case len(current)+len(text)+1 < multiLineLimit:
			current += " " + text
		default:
			cues = append(cues, Cue{Start: currentStart, End: seg.Start, Text: current})
			current = text
			currentStart = seg.Start
		}
	}
	if current != "" && len(segments) > 0 {
		cues = append(cues, Cue{Start: currentStart, End: segments[len(segments)-1].End, Text: current})
	}
	return cues
}

// typewriterCues accumulates each segment's words so the line builds up
// as it is spoken.
func typewriterCues(segments []Segment) []Cue {
	var cues []Cue
	for _, seg := range segments {
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}

		perWord := (seg.End - seg.Start) / float64(len(words))
		var line strings.Builder
		for i, word := range words {
			if i > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(word)
			cues = append(cues, Cue{
				Start: seg.Start + float64(i)*perWord,
				End:   seg.Start + float64(i+1)*perWord,
				Text:  line.String(),
			})
		}
	}
	return cues
}

// singleWordCues flashes one uppercased word at a time.
func singleWordCues(segments []Segment) []Cue {
	var cues []Cue
	for _, seg := range segments {
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}

		perWord := (seg.End - seg.Start) / float64(len(words))
		for i, word := range words {
			cues = append(cues, Cue{
				Start: seg.Start + float64(i)*perWord,
				End:   seg.Start + float64(i+1)*perWord,
				Text:  strings.ToUpper(word),
			})
		}
	}
	return cues
}

// chunkedCues shows 1-3 words at a time, chunk sizes drawn from rng so
// the rhythm doesn't feel mechanical.
func chunkedCues(segments []Segment, rng *rand.Rand) []Cue {
	var cues []Cue
	for _, seg := range segments {
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}

		var chunks []string
		for i := 0; i < len(words); {
			size := 1
			if rng != nil {
				size = rng.Intn(3) + 1
			}
			end := i + size
			if end > len(words) {
				end = len(words)
			}
			chunks = append(chunks, strings.Join(words[i:end], " "))
			i = end
		}

		perChunk := (seg.End - seg.Start) / float64(len(chunks))
		for i, chunk := range chunks {
			cues = append(cues, Cue{
				Start: seg.Start + float64(i)*perChunk,
				End:   seg.Start + float64(i+1)*perChunk,
				Text:  chunk,
			})
		}
	}
	return cues
}

// liveTimingCues grows a line word by word using real word timestamps,
// splitting when the line would overflow. Segments transcribed without
// word timing fall back to an even split.
func liveTimingCues(segments []Segment) []Cue {
	var cues []Cue
	for _, seg := range segments {
		words := seg.Words
		if len(words) == 0 {
			words = evenSplitWords(seg)
		}
		if len(words) == 0 {
			continue
		}

		var line string
		lineStart := -1.0
		for _, w := range words {
			if lineStart < 0 {
				lineStart = w.Start
			}

			test := w.Word
			if line != "" {
				test = line + " " + w.Word
			}

			if len(test) <= liveLineLimit {
				line = test
				continue
			}

			if line != "" {
				cues = append(cues, Cue{Start: lineStart, End: w.Start, Text: line})
			}
			line = w.Word
			lineStart = w.Start
		}
		if line != "" && lineStart >= 0 {
			cues = append(cues, Cue{Start: lineStart, End: seg.End, Text: line})
		}
	}
	return cues
}

// evenSplitWords fabricates word timing by dividing the segment equally.
func evenSplitWords(seg Segment) []Word {
	fields := strings.Fields(seg.Text)
	if len(fields) == 0 {
		return nil
	}

	perWord := (seg.End - seg.Start) / float64(len(fields))
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{
			Word:  f,
			Start: seg.Start + float64(i)*perWord,
			End:   seg.Start + float64(i+1)*perWord,
		}
	}
	return words
}

// enforceGaps pulls a cue's end back when the next one starts too soon.
// Cues that already overlap are left alone. A cue too short to absorb
// the gap collapses to zero duration rather than ending before it
// starts.
func enforceGaps(cues []Cue) {
	for i := 0; i < len(cues)-1; i++ {
		gap := cues[i+1].Start - cues[i].End
		if gap < minCueGap && gap > 0 {
			end := cues[i+1].Start - minCueGap
			if end < cues[i].Start {
				end = cues[i].Start
			}
			cues[i].End = end
		}
	}
}

// splitByWidth breaks text into word chunks no longer than maxChars. A
// single word longer than the limit becomes its own chunk.
func splitByWidth(text string, maxChars int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current []string
	length := 0

	for _, word := range words {
		add := len(word)
		if len(current) > 0 {
			add++
		}
		if length+add <= maxChars {
			current = append(current, word)
			length += add
		} else {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
			}
			current = []string{word}
			length = len(word)
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
