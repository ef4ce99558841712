package ai

import (
	"context"
	"strings"
	"sync"
	"unicode"
)

// MockEmbeddingService is a deterministic in-process embedding service for
// tests. Each distinct word is assigned its own axis (first-seen order), so
// texts sharing words produce vectors with higher cosine similarity.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	vocab      map[string]int

	// FailNext makes the next call return ErrEmbeddingUnavailable.
	FailNext bool
}

// NewMockEmbeddingService creates a mock with the given vector dimension.
func NewMockEmbeddingService(dimensions int) *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: dimensions,
		vocab:      make(map[string]int),
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return nil, ErrEmbeddingUnavailable
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embedLocked(text)
	}
	return vectors, nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) embedLocked(text string) []float32 {
	vector := make([]float32, m.dimensions)
	for _, word := range tokenize(text) {
		idx, ok := m.vocab[word]
		if !ok {
			idx = len(m.vocab) % m.dimensions
			m.vocab[word] = idx
		}
		vector[idx]++
	}
	return vector
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
