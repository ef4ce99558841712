// Package memory provides an in-process vector index driver using
// brute-force cosine similarity. Intended for development and tests; the
// postgres driver is the production path.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/creatorlab/viralrag/store"
)

type collection struct {
	dimension int
	items     map[string]*store.StoredItem
	order     []string
}

// Driver is an in-memory store.Driver. All operations are safe for
// concurrent use; single-item writes are atomic under the driver lock.
type Driver struct {
	mu          sync.RWMutex
	collections map[store.Kind]*collection
}

// New creates an empty in-memory driver.
func New() *Driver {
	return &Driver{
		collections: make(map[store.Kind]*collection),
	}
}

func (d *Driver) Upsert(ctx context.Context, item *store.StoredItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(item.Embedding) == 0 {
		return errors.New("item has no embedding")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	coll := d.collections[item.Kind]
	if coll == nil {
		coll = &collection{items: make(map[string]*store.StoredItem)}
		d.collections[item.Kind] = coll
	}

	// The first write fixes the collection dimension.
	if coll.dimension == 0 {
		coll.dimension = len(item.Embedding)
	} else if coll.dimension != len(item.Embedding) {
		return errors.Wrapf(store.ErrDimensionMismatch,
			"collection %s expects dimension %d, got %d", item.Kind, coll.dimension, len(item.Embedding))
	}

	if _, exists := coll.items[item.ID]; !exists {
		coll.order = append(coll.order, item.ID)
	}
	coll.items[item.ID] = item.Clone()
	return nil
}

func (d *Driver) Get(ctx context.Context, kind store.Kind, id string) (*store.StoredItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	coll := d.collections[kind]
	if coll == nil {
		return nil, nil
	}
	item, ok := coll.items[id]
	if !ok {
		return nil, nil
	}
	return item.Clone(), nil
}

func (d *Driver) Query(ctx context.Context, kind store.Kind, vector []float32, limit int) ([]*store.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	coll := d.collections[kind]
	if coll == nil || len(coll.items) == 0 {
		return nil, nil
	}
	if coll.dimension != len(vector) {
		return nil, errors.Wrapf(store.ErrDimensionMismatch,
			"collection %s expects dimension %d, got query dimension %d", kind, coll.dimension, len(vector))
	}

	results := make([]*store.QueryResult, 0, len(coll.order))
	for _, id := range coll.order {
		item := coll.items[id]
		results = append(results, &store.QueryResult{
			Item:  item.Clone(),
			Score: cosineSimilarity(vector, item.Embedding),
		})
	}

	// Ties keep insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (d *Driver) Delete(ctx context.Context, kind store.Kind, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	coll := d.collections[kind]
	if coll == nil {
		return false, nil
	}
	if _, ok := coll.items[id]; !ok {
		return false, nil
	}
	delete(coll.items, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (d *Driver) Scan(ctx context.Context, kind store.Kind, limit int) ([]*store.StoredItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	coll := d.collections[kind]
	if coll == nil {
		return nil, nil
	}

	items := make([]*store.StoredItem, 0, len(coll.order))
	for _, id := range coll.order {
		items = append(items, coll.items[id].Clone())
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collections = make(map[store.Kind]*collection)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
