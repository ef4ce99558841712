package ai

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding service failed or timed out.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmptyInput indicates no text was provided for embedding.
	ErrEmptyInput = errors.New("no texts provided for embedding")
)
