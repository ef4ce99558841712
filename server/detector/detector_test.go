package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/creatorlab/viralrag/plugin/ai"
	"github.com/creatorlab/viralrag/server/transcript"
)

func newTestDetector(t *testing.T) (*Detector, *ai.MockEmbeddingService) {
	t.Helper()
	mock := ai.NewMockEmbeddingService(32)
	return New(mock), mock
}

func loadCorpus(t *testing.T, d *Detector, texts ...string) {
	t.Helper()
	items := make([]ReferenceItem, len(texts))
	for i, text := range texts {
		items[i] = ReferenceItem{Text: text}
	}
	if err := d.LoadCorpus(context.Background(), items); err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}
}

func TestRankEmptyCorpus(t *testing.T) {
	d, _ := newTestDetector(t)

	_, err := d.Rank(context.Background(), []transcript.Segment{{Text: "anything"}}, 5, 0)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("Rank() error = %v, want ErrEmptyCorpus", err)
	}
}

func TestRankOrdering(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "I love startups.", "Cooking pasta is fun.")

	segments := []transcript.Segment{
		{Text: "Startups are hard but rewarding."},
		{Text: "The weather today is sunny."},
	}
	candidates, err := d.Rank(context.Background(), segments, 2, 0.0)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}

	if candidates[0].Text != "Startups are hard but rewarding." {
		t.Errorf("rank 1 text = %q, want startup segment", candidates[0].Text)
	}
	if candidates[0].BestMatchText != "I love startups." {
		t.Errorf("rank 1 best match = %q, want %q", candidates[0].BestMatchText, "I love startups.")
	}
	if candidates[0].BestMatchID == "" {
		t.Error("rank 1 best match ID is empty")
	}

	for i, c := range candidates {
		if c.Rank != i+1 {
			t.Errorf("candidates[%d].Rank = %d, want %d", i, c.Rank, i+1)
		}
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("candidates[%d].Score = %v, want in [0,1]", i, c.Score)
		}
		if i > 0 && candidates[i-1].Score < c.Score {
			t.Errorf("candidates not sorted: score[%d]=%v < score[%d]=%v", i-1, candidates[i-1].Score, i, c.Score)
		}
	}
}

func TestRankMinScore(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "I love startups.")

	segments := []transcript.Segment{{Text: "Completely unrelated gardening topic."}}
	candidates, err := d.Rank(context.Background(), segments, 5, 0.99)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, c := range candidates {
		if c.Score < 0.99 {
			t.Errorf("candidate score %v below threshold 0.99", c.Score)
		}
	}
}

func TestRankTopKLargerThanQualifying(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "I love startups.")

	segments := []transcript.Segment{
		{Text: "Startups grow fast."},
		{Text: "Startups fail fast."},
	}
	candidates, err := d.Rank(context.Background(), segments, 50, 0.0)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("len(candidates) = %d, want 2", len(candidates))
	}
}

func TestRankNoSegments(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "I love startups.")

	candidates, err := d.Rank(context.Background(), nil, 5, 0)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(candidates))
	}
}

func TestRankEmbeddingFailure(t *testing.T) {
	d, mock := newTestDetector(t)
	loadCorpus(t, d, "I love startups.")

	mock.FailNext = true
	_, err := d.Rank(context.Background(), []transcript.Segment{{Text: "x"}}, 5, 0)
	if !errors.Is(err, ai.ErrEmbeddingUnavailable) {
		t.Errorf("Rank() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestLoadCorpusReplaces(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "first post", "second post")
	if d.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", d.Size())
	}

	loadCorpus(t, d, "only post")
	if d.Size() != 1 {
		t.Errorf("Size() after reload = %d, want 1", d.Size())
	}
}

func TestAddItemsAppends(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "first post")

	err := d.AddItems(context.Background(), []ReferenceItem{{Text: "second post"}})
	if err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	if d.Size() != 2 {
		t.Errorf("Size() = %d, want 2", d.Size())
	}
}

func TestNearest(t *testing.T) {
	d, _ := newTestDetector(t)
	loadCorpus(t, d, "I love startups.", "Cooking pasta is fun.")

	matches, err := d.Nearest(context.Background(), "startups everywhere", 1)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Item.Text != "I love startups." {
		t.Errorf("nearest = %q, want %q", matches[0].Item.Text, "I love startups.")
	}
	if matches[0].Item.ID == "" {
		t.Error("nearest item has no ID assigned")
	}
}

func TestNearestEmptyCorpus(t *testing.T) {
	d, _ := newTestDetector(t)

	matches, err := d.Nearest(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("len(matches) = %d, want 0", len(matches))
	}
}

// Every Rank call must see one corpus generation in full, never a mix of the
// corpus being swapped out and the one being swapped in.
func TestRankConcurrentWithReload(t *testing.T) {
	d, _ := newTestDetector(t)
	ctx := context.Background()

	corpusA := []ReferenceItem{
		{ID: "a-startups", Text: "I love startups."},
		{ID: "a-pasta", Text: "Cooking pasta is fun."},
	}
	corpusB := []ReferenceItem{
		{ID: "b-startups", Text: "Startups change everything."},
		{ID: "b-weather", Text: "The weather is sunny."},
		{ID: "b-hiring", Text: "Hiring slow beats hiring fast."},
	}
	if err := d.LoadCorpus(ctx, corpusA); err != nil {
		t.Fatalf("LoadCorpus() error = %v", err)
	}

	segments := []transcript.Segment{
		{Text: "Startups are hard but rewarding."},
		{Text: "We are hiring engineers this year."},
	}

	const iterations = 200
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			corpus, prefix := corpusA, "a-"
			if i%2 == 1 {
				corpus, prefix = corpusB, "b-"
			}
			if err := d.LoadCorpus(ctx, corpus); err != nil {
				t.Errorf("LoadCorpus() error = %v", err)
				return
			}
			extra := ReferenceItem{ID: fmt.Sprintf("%sextra-%d", prefix, i), Text: "Fundraising is a grind."}
			if err := d.AddItems(ctx, []ReferenceItem{extra}); err != nil {
				t.Errorf("AddItems() error = %v", err)
				return
			}
		}
	}()

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				candidates, err := d.Rank(ctx, segments, 0, 0)
				if err != nil {
					t.Errorf("Rank() error = %v", err)
					return
				}
				var generation string
				for j, c := range candidates {
					if c.Text == "" || c.BestMatchID == "" || c.BestMatchText == "" {
						t.Errorf("candidate %d incomplete: %+v", j, c)
						return
					}
					if c.Score < 0 || c.Score > 1 {
						t.Errorf("candidate %d score = %v, want in [0,1]", j, c.Score)
						return
					}
					gen := c.BestMatchID[:2]
					if generation == "" {
						generation = gen
					} else if gen != generation {
						t.Errorf("candidates span corpus generations %q and %q", generation, gen)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultCorpus(t *testing.T) {
	items := DefaultCorpus()
	if len(items) != 4 {
		t.Fatalf("len(DefaultCorpus()) = %d, want 4", len(items))
	}
	for i, item := range items {
		if item.Text == "" {
			t.Errorf("default item %d has empty text", i)
		}
		if len(item.Tags) == 0 {
			t.Errorf("default item %d has no tags", i)
		}
	}
}
