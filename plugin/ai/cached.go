package ai

import (
	"context"
	"time"

	"github.com/creatorlab/viralrag/plugin/ai/cache"
)

// cachedEmbeddingService wraps an EmbeddingService with a per-instance vector
// cache keyed by input text. Reference corpora and recurring transcript
// segments embed once per TTL instead of once per call.
type cachedEmbeddingService struct {
	inner EmbeddingService
	cache *cache.VectorCache
}

// NewCachedEmbeddingService wraps the service with an LRU vector cache.
// capacity and ttl <= 0 use the cache defaults.
func NewCachedEmbeddingService(inner EmbeddingService, capacity int, ttl time.Duration) EmbeddingService {
	return &cachedEmbeddingService{
		inner: inner,
		cache: cache.NewVectorCache(capacity, ttl),
	}
}

func (s *cachedEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := s.cache.Get(text); ok {
		return vector, nil
	}
	vector, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(text, vector)
	return vector, nil
}

func (s *cachedEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vector, ok := s.cache.Get(text); ok {
			vectors[i] = vector
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	fetched, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for i, vector := range fetched {
		vectors[missingIdx[i]] = vector
		s.cache.Set(missing[i], vector)
	}
	return vectors, nil
}

func (s *cachedEmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}
