// Package transcript turns raw narrative text into bounded, overlapping,
// sentence-respecting segments suitable for independent similarity scoring.
package transcript

import (
	"regexp"
	"strings"
)

const (
	// DefaultMinLen is the minimum character count per segment.
	DefaultMinLen = 100
	// DefaultMaxLen is the maximum character count per segment.
	DefaultMaxLen = 500
	// DefaultOverlap is the character count carried over between segments.
	DefaultOverlap = 50
	// MinMeaningfulLen is the length below which a segment is discarded.
	MinMeaningfulLen = 50
)

// Segment is a bounded piece of a larger text.
type Segment struct {
	Text     string
	SourceID string
}

// SplitOptions controls segmentation bounds.
type SplitOptions struct {
	MinLen  int
	MaxLen  int
	Overlap int

	// SentenceSplitter overrides the built-in sentence boundary detector.
	SentenceSplitter func(string) []string
}

// DefaultSplitOptions returns the standard segmentation bounds.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{MinLen: DefaultMinLen, MaxLen: DefaultMaxLen, Overlap: DefaultOverlap}
}

func (o SplitOptions) normalize() SplitOptions {
	defaults := DefaultSplitOptions()
	if o.MinLen <= 0 || o.MaxLen <= o.MinLen {
		o.MinLen, o.MaxLen = defaults.MinLen, defaults.MaxLen
	}
	if o.Overlap < 0 || o.Overlap >= o.MinLen {
		o.Overlap = defaults.Overlap
		if o.Overlap >= o.MinLen {
			o.Overlap = o.MinLen / 2
		}
	}
	return o
}

var (
	timestampPattern = regexp.MustCompile(`\[?\(?\d{1,2}:\d{2}:\d{2}\]?\)?`)
	// \s matches newlines here, so consecutive all-caps lines before a colon
	// strip as one label.
	speakerPattern  = regexp.MustCompile(`(?m)^[A-Z\s]+:`)
	fillerPattern   = regexp.MustCompile(`(?i)\b(um|uh|like|you know|so|well)\b`)
	spacePattern    = regexp.MustCompile(`\s+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// Clean strips timestamps, speaker labels and filler words from a raw
// transcript, collapsing runs of whitespace.
func Clean(text string) string {
	text = timestampPattern.ReplaceAllString(text, "")
	text = speakerPattern.ReplaceAllString(text, "")
	text = fillerPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split segments text into chunks between MinLen and MaxLen characters,
// accumulating whole sentences greedily and seeding each new chunk with the
// trailing Overlap characters of the previous one. Trailing content shorter
// than MinLen is still emitted as the final segment. Sentences longer than
// MaxLen are force-split at word boundaries.
func Split(text string, opts SplitOptions) []string {
	opts = opts.normalize()

	splitter := opts.SentenceSplitter
	if splitter == nil {
		splitter = splitSentences
	}
	sentences := splitter(text)
	if len(sentences) == 0 {
		return nil
	}

	var segments []string
	current := ""
	lastSeed := ""

	for _, sentence := range sentences {
		for sentence != "" {
			joined := joinSentence(current, sentence)
			if len(joined) <= opts.MaxLen {
				current = joined
				sentence = ""
				continue
			}

			if len(current) >= opts.MinLen {
				segments = append(segments, current)
				current = overlapTail(current, opts.Overlap)
				lastSeed = current
				continue
			}

			// The sentence cannot fit and the buffer is still below MinLen:
			// fill the buffer to the cap at a word boundary.
			room := opts.MaxLen - len(current)
			if current != "" {
				room -= 2 // separator
			}
			head, rest := cutAtWordBoundary(sentence, room)
			segments = append(segments, joinSentence(current, head))
			current = overlapTail(segments[len(segments)-1], opts.Overlap)
			lastSeed = current
			sentence = rest
		}
	}

	if current != "" && current != lastSeed {
		segments = append(segments, current)
	}
	return segments
}

// Process runs the full pipeline: clean, split with default bounds, drop
// segments too short to be meaningful.
func Process(content, sourceID string) []Segment {
	cleaned := Clean(content)
	parts := Split(cleaned, DefaultSplitOptions())

	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) <= MinMeaningfulLen {
			continue
		}
		segments = append(segments, Segment{Text: part, SourceID: sourceID})
	}
	return segments
}

func splitSentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

func joinSentence(current, sentence string) string {
	if current == "" {
		return sentence
	}
	return current + ". " + sentence
}

// overlapTail returns the trailing n characters of the segment. The tail is
// character-aligned, not sentence-aligned.
func overlapTail(segment string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(segment) <= n {
		return segment
	}
	return segment[len(segment)-n:]
}

// cutAtWordBoundary splits s so the head is at most room characters,
// preferring the last space before the cap.
func cutAtWordBoundary(s string, room int) (head, rest string) {
	if room <= 0 {
		room = 1
	}
	if len(s) <= room {
		return s, ""
	}
	cut := strings.LastIndex(s[:room], " ")
	if cut <= 0 {
		cut = room
	}
	return strings.TrimSpace(s[:cut]), strings.TrimSpace(s[cut:])
}
