// Package detector scores transcript segments against a corpus of
// gold-standard reference posts and surfaces the most promising candidates.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/creatorlab/viralrag/plugin/ai"
	"github.com/creatorlab/viralrag/server/transcript"
)

// ErrEmptyCorpus indicates ranking was attempted before any reference items
// were loaded. Callers must be able to tell this apart from an empty result.
var ErrEmptyCorpus = errors.New("no reference items loaded")

// ReferenceItem is a curated gold-standard example used as a similarity target.
type ReferenceItem struct {
	ID        string
	Text      string
	Embedding []float32
	Tags      []string
}

// Candidate pairs a segment with its best-matching reference item.
type Candidate struct {
	Text          string
	Score         float64
	BestMatchID   string
	BestMatchText string
	Rank          int
}

// Match is an ad hoc similarity lookup result.
type Match struct {
	Item  ReferenceItem
	Score float64
}

// corpus is an immutable snapshot of the reference set. Loads and appends
// build a new snapshot and swap it in; a ranking call in flight keeps the
// snapshot it started with.
type corpus struct {
	items []ReferenceItem
}

// Detector ranks segments against the current reference corpus.
type Detector struct {
	mu       sync.RWMutex
	embedder ai.EmbeddingService
	corpus   *corpus
}

// New creates a Detector with an empty corpus.
func New(embedder ai.EmbeddingService) *Detector {
	return &Detector{
		embedder: embedder,
		corpus:   &corpus{},
	}
}

// LoadCorpus replaces the active corpus wholesale. Items without embeddings
// are embedded in one batch call.
func (d *Detector) LoadCorpus(ctx context.Context, items []ReferenceItem) error {
	prepared, err := d.prepare(ctx, items)
	if err != nil {
		return err
	}
	if err := checkDimensions(prepared); err != nil {
		return err
	}

	d.mu.Lock()
	d.corpus = &corpus{items: prepared}
	d.mu.Unlock()

	slog.Debug("reference corpus loaded", "items", len(prepared))
	return nil
}

// AddItems appends to the active corpus, embedding only the new items.
func (d *Detector) AddItems(ctx context.Context, items []ReferenceItem) error {
	prepared, err := d.prepare(ctx, items)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	combined := make([]ReferenceItem, 0, len(d.corpus.items)+len(prepared))
	combined = append(combined, d.corpus.items...)
	combined = append(combined, prepared...)
	if err := checkDimensions(combined); err != nil {
		return err
	}
	d.corpus = &corpus{items: combined}

	slog.Debug("reference corpus extended", "added", len(prepared), "total", len(combined))
	return nil
}

// Size returns the number of loaded reference items.
func (d *Detector) Size() int {
	return len(d.snapshot().items)
}

// Rank embeds all segments in one batch, scores each against the corpus,
// keeps the single best corpus match per segment, drops scores below
// minScore, and returns the topK survivors ordered by score descending.
// Ties keep the original segment order.
func (d *Detector) Rank(ctx context.Context, segments []transcript.Segment, topK int, minScore float64) ([]Candidate, error) {
	snap := d.snapshot()
	if len(snap.items) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(segments) == 0 {
		return []Candidate{}, nil
	}

	texts := make([]string, len(segments))
	for i, segment := range segments {
		texts[i] = segment.Text
	}
	vectors, err := d.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed segments: %w", err)
	}

	candidates := make([]Candidate, 0, len(segments))
	for i, segment := range segments {
		best, score := snap.bestMatch(vectors[i])
		if score < minScore {
			continue
		}
		candidates = append(candidates, Candidate{
			Text:          segment.Text,
			Score:         score,
			BestMatchID:   best.ID,
			BestMatchText: best.Text,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	if topK > 0 && topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// Nearest finds the reference items most similar to text, sorted by score
// descending. An empty corpus yields an empty result.
func (d *Detector) Nearest(ctx context.Context, text string, topK int) ([]Match, error) {
	snap := d.snapshot()
	if len(snap.items) == 0 {
		return []Match{}, nil
	}

	vector, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches := make([]Match, 0, len(snap.items))
	for _, item := range snap.items {
		matches = append(matches, Match{
			Item:  item,
			Score: clampScore(CosineSimilarity(vector, item.Embedding)),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (d *Detector) snapshot() *corpus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.corpus
}

// prepare assigns IDs and fills missing embeddings with one batch call.
func (d *Detector) prepare(ctx context.Context, items []ReferenceItem) ([]ReferenceItem, error) {
	prepared := make([]ReferenceItem, len(items))
	copy(prepared, items)

	var missingTexts []string
	var missingIdx []int
	for i := range prepared {
		if prepared[i].ID == "" {
			prepared[i].ID = uuid.NewString()
		}
		if len(prepared[i].Embedding) == 0 {
			missingTexts = append(missingTexts, prepared[i].Text)
			missingIdx = append(missingIdx, i)
		}
	}

	if len(missingTexts) > 0 {
		vectors, err := d.embedder.EmbedBatch(ctx, missingTexts)
		if err != nil {
			return nil, fmt.Errorf("embed reference items: %w", err)
		}
		for j, idx := range missingIdx {
			prepared[idx].Embedding = vectors[j]
		}
	}
	return prepared, nil
}

func (c *corpus) bestMatch(vector []float32) (ReferenceItem, float64) {
	var best ReferenceItem
	bestScore := -1.0
	for _, item := range c.items {
		if score := CosineSimilarity(vector, item.Embedding); score > bestScore {
			bestScore = score
			best = item
		}
	}
	return best, clampScore(bestScore)
}

func checkDimensions(items []ReferenceItem) error {
	if len(items) == 0 {
		return nil
	}
	dim := len(items[0].Embedding)
	for _, item := range items {
		if len(item.Embedding) != dim {
			return fmt.Errorf("reference item %s has dimension %d, corpus has %d", item.ID, len(item.Embedding), dim)
		}
	}
	return nil
}
