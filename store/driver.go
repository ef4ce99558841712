package store

import "context"

// QueryResult is a vector index hit with its similarity score.
type QueryResult struct {
	Item  *StoredItem
	Score float64
}

// Driver is the vector index interface underlying the store. Implementations
// must make single-item writes atomic (an item is either fully indexed with
// its vector and payload, or absent) and tolerate concurrent callers.
type Driver interface {
	// Upsert inserts the item or fully replaces an existing one with the
	// same kind and ID.
	Upsert(ctx context.Context, item *StoredItem) error

	// Get returns the item, or nil without error when it does not exist.
	Get(ctx context.Context, kind Kind, id string) (*StoredItem, error)

	// Query returns up to limit nearest neighbors by cosine similarity,
	// most similar first.
	Query(ctx context.Context, kind Kind, vector []float32, limit int) ([]*QueryResult, error)

	// Delete removes the item, reporting whether it existed.
	Delete(ctx context.Context, kind Kind, id string) (bool, error)

	// Scan lists items in insertion order; limit <= 0 means no limit.
	Scan(ctx context.Context, kind Kind, limit int) ([]*StoredItem, error)

	Close() error
}
