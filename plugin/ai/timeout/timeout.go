// Package timeout defines centralized timeout constants for embedding and
// vector index operations.
package timeout

import "time"

const (
	// EmbeddingTimeout is the timeout for a single embedding service call.
	EmbeddingTimeout = 30 * time.Second

	// IndexTimeout is the timeout for a single vector index call.
	IndexTimeout = 15 * time.Second

	// MaxEmbedConcurrency bounds parallel embedding dispatch in batch writes.
	MaxEmbedConcurrency = 3
)
