package store

import "errors"

var (
	// ErrStoreUnavailable indicates the underlying vector index failed.
	ErrStoreUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates an embedding whose dimensionality does
	// not match the collection it is written to or queried against.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrDeadlineExceeded indicates an index or embedding call ran past its
	// deadline.
	ErrDeadlineExceeded = errors.New("deadline exceeded")
)
