// Package store provides durable, queryable storage of embedded text items,
// partitioned by kind into independent collections, with similarity search
// filtered by scope tags and metadata predicates.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/errgroup"

	"github.com/creatorlab/viralrag/plugin/ai"
	"github.com/creatorlab/viralrag/plugin/ai/timeout"
)

const (
	// DefaultTopK is the result count when a query does not specify one.
	DefaultTopK = 3

	// DefaultOverfetchFactor compensates for in-process post-filtering: the
	// index cannot express scope or engagement predicates natively, so the
	// store fetches more neighbors than requested. Tunable, not load-bearing;
	// highly selective filters can still under-return, which callers must
	// treat as a normal outcome.
	DefaultOverfetchFactor = 2

	embedChunkSize = 32
)

// QueryOptions controls a similarity query.
type QueryOptions struct {
	TopK                  int
	ScopeFilter           string
	RequireReferenceGrade bool
	MinEngagement         *int64
}

// BatchFailure records one failed item of a best-effort batch operation.
type BatchFailure struct {
	ID     string
	Reason string
}

// BatchDeleteResult summarizes a best-effort batch delete.
type BatchDeleteResult struct {
	Succeeded []string
	Failed    []BatchFailure
}

func (r *BatchDeleteResult) DeletedCount() int { return len(r.Succeeded) }
func (r *BatchDeleteResult) FailedCount() int  { return len(r.Failed) }

// Stats summarizes one collection.
type Stats struct {
	Total               int
	ReferenceGradeCount int
	GeneratedCount      int
	TotalLikes          int64
	TotalComments       int64
	AvgLikes            float64
	AvgComments         float64
}

// Store provides access to embedded items over a vector index driver.
type Store struct {
	driver   Driver
	embedder ai.EmbeddingService

	// OverfetchFactor multiplies TopK when fetching neighbors ahead of
	// post-filtering.
	OverfetchFactor int
}

// New creates a new Store.
func New(driver Driver, embedder ai.EmbeddingService) *Store {
	return &Store{
		driver:          driver,
		embedder:        embedder,
		OverfetchFactor: DefaultOverfetchFactor,
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Put persists the item, computing its embedding from PrimaryText when
// missing, and returns the item ID. Writing an existing ID fully replaces
// the stored item.
func (s *Store) Put(ctx context.Context, item *StoredItem) (string, error) {
	mustKind(item.Kind)

	if item.ID == "" {
		item.ID = shortuuid.New()
	}
	if item.CreatedTs == 0 {
		item.CreatedTs = time.Now().Unix()
	}
	if len(item.Embedding) == 0 {
		vector, err := s.embedder.Embed(ctx, item.PrimaryText)
		if err != nil {
			return "", err
		}
		item.Embedding = vector
	}

	if err := s.upsert(ctx, item); err != nil {
		return "", err
	}

	slog.Debug("item stored", "kind", item.Kind, "id", item.ID, "dim", len(item.Embedding))
	return item.ID, nil
}

// PutBatch persists items in input order, embedding missing vectors in
// chunked parallel batch calls. Embedding failures abort the whole batch
// before anything is written.
func (s *Store) PutBatch(ctx context.Context, items []*StoredItem) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}
	for _, item := range items {
		mustKind(item.Kind)
	}

	if err := s.embedMissing(ctx, items); err != nil {
		return nil, err
	}

	ids := make([]string, len(items))
	now := time.Now().Unix()
	for i, item := range items {
		if item.ID == "" {
			item.ID = shortuuid.New()
		}
		if item.CreatedTs == 0 {
			item.CreatedTs = now
		}
		if err := s.upsert(ctx, item); err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, item.ID, err)
		}
		ids[i] = item.ID
	}

	slog.Debug("batch stored", "count", len(items), "kind", items[0].Kind)
	return ids, nil
}

// QueryBySimilarity embeds the query text, over-fetches nearest neighbors and
// applies, in order, the reference-grade, minimum-engagement and scope
// filters, preserving the index's similarity order. Fewer than TopK results
// is a normal outcome, not an error.
func (s *Store) QueryBySimilarity(ctx context.Context, kind Kind, text string, opts QueryOptions) ([]*StoredItem, error) {
	mustKind(kind)

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	factor := s.OverfetchFactor
	if factor < 1 {
		factor = DefaultOverfetchFactor
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, timeout.IndexTimeout)
	defer cancel()
	results, err := s.driver.Query(qctx, kind, vector, topK*factor)
	if err != nil {
		return nil, wrapIndexErr("query", err)
	}

	items := make([]*StoredItem, 0, topK)
	for _, result := range results {
		item := result.Item
		if opts.RequireReferenceGrade && !item.IsReferenceGrade {
			continue
		}
		if opts.MinEngagement != nil && item.Engagement() < *opts.MinEngagement {
			continue
		}
		if !item.Scope.Visible(opts.ScopeFilter) {
			continue
		}
		items = append(items, item)
		if len(items) >= topK {
			break
		}
	}
	return items, nil
}

// Get returns the item, or nil without error when the ID is unknown.
func (s *Store) Get(ctx context.Context, kind Kind, id string) (*StoredItem, error) {
	mustKind(kind)

	gctx, cancel := context.WithTimeout(ctx, timeout.IndexTimeout)
	defer cancel()
	item, err := s.driver.Get(gctx, kind, id)
	if err != nil {
		return nil, wrapIndexErr("get", err)
	}
	return item, nil
}

// ListAll lists the collection in insertion order; limit <= 0 means no limit.
func (s *Store) ListAll(ctx context.Context, kind Kind, limit int) ([]*StoredItem, error) {
	mustKind(kind)

	sctx, cancel := context.WithTimeout(ctx, timeout.IndexTimeout)
	defer cancel()
	items, err := s.driver.Scan(sctx, kind, limit)
	if err != nil {
		return nil, wrapIndexErr("scan", err)
	}
	return items, nil
}

// UpdateMetadataFields merges fields into the item's metadata and writes the
// item back, reusing the stored embedding. Returns false when the ID is
// unknown. The write is a single full-replace upsert, so there is no window
// in which the item is absent from the index.
func (s *Store) UpdateMetadataFields(ctx context.Context, kind Kind, id string, fields map[string]any) (bool, error) {
	mustKind(kind)

	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	if item.Metadata == nil {
		item.Metadata = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		item.Metadata[k] = v
	}

	if err := s.upsert(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateEngagement sets the engagement counters on a post. Metadata-only;
// the embedding is never recomputed.
func (s *Store) UpdateEngagement(ctx context.Context, id string, likes, comments int64) (bool, error) {
	return s.UpdateMetadataFields(ctx, KindPost, id, map[string]any{
		MetaLikes:                  likes,
		MetaComments:               comments,
		MetaLastEngagementUpdateTs: time.Now().Unix(),
	})
}

// UpdateScopeTags replaces the item's scope, reusing the stored embedding.
// Returns false when the ID is unknown.
func (s *Store) UpdateScopeTags(ctx context.Context, kind Kind, id string, scope Scope) (bool, error) {
	mustKind(kind)

	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	item.Scope = scope
	if err := s.upsert(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the item, reporting whether it existed. Deleting an unknown
// ID is not an error.
func (s *Store) Delete(ctx context.Context, kind Kind, id string) (bool, error) {
	mustKind(kind)

	dctx, cancel := context.WithTimeout(ctx, timeout.IndexTimeout)
	defer cancel()
	deleted, err := s.driver.Delete(dctx, kind, id)
	if err != nil {
		return false, wrapIndexErr("delete", err)
	}
	if deleted {
		slog.Debug("item deleted", "kind", kind, "id", id)
	}
	return deleted, nil
}

// DeleteBatch removes items best-effort: individual failures are recorded in
// the result and never abort the remaining deletions.
func (s *Store) DeleteBatch(ctx context.Context, kind Kind, ids []string) *BatchDeleteResult {
	mustKind(kind)

	result := &BatchDeleteResult{}
	for _, id := range ids {
		deleted, err := s.Delete(ctx, kind, id)
		switch {
		case err != nil:
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: err.Error()})
		case !deleted:
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: "not found"})
		default:
			result.Succeeded = append(result.Succeeded, id)
		}
	}
	return result
}

// Stats aggregates collection counters by scanning all items.
func (s *Store) Stats(ctx context.Context, kind Kind) (*Stats, error) {
	items, err := s.ListAll(ctx, kind, 0)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(items)}
	for _, item := range items {
		if item.IsReferenceGrade {
			stats.ReferenceGradeCount++
		}
		stats.TotalLikes += MetaInt(item.Metadata, MetaLikes)
		stats.TotalComments += MetaInt(item.Metadata, MetaComments)
	}
	stats.GeneratedCount = stats.Total - stats.ReferenceGradeCount
	if stats.Total > 0 {
		stats.AvgLikes = float64(stats.TotalLikes) / float64(stats.Total)
		stats.AvgComments = float64(stats.TotalComments) / float64(stats.Total)
	}
	return stats, nil
}

func (s *Store) upsert(ctx context.Context, item *StoredItem) error {
	uctx, cancel := context.WithTimeout(ctx, timeout.IndexTimeout)
	defer cancel()
	if err := s.driver.Upsert(uctx, item); err != nil {
		return wrapIndexErr("upsert", err)
	}
	return nil
}

// embedMissing fills missing embeddings with chunked, concurrency-bounded
// batch calls, preserving item order.
func (s *Store) embedMissing(ctx context.Context, items []*StoredItem) error {
	var missing []*StoredItem
	for _, item := range items {
		if len(item.Embedding) == 0 {
			missing = append(missing, item)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(timeout.MaxEmbedConcurrency)

	for start := 0; start < len(missing); start += embedChunkSize {
		chunk := missing[start:min(start+embedChunkSize, len(missing))]
		g.Go(func() error {
			texts := make([]string, len(chunk))
			for i, item := range chunk {
				texts[i] = item.PrimaryText
			}
			vectors, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			for i, item := range chunk {
				item.Embedding = vectors[i]
			}
			return nil
		})
	}
	return g.Wait()
}

func wrapIndexErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDimensionMismatch):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ErrDeadlineExceeded)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
}
