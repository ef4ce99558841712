package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/creatorlab/viralrag/store"
)

// Upsert inserts or fully replaces an item. The write is a single statement,
// so concurrent readers never observe a partially written row.
func (d *DB) Upsert(ctx context.Context, item *store.StoredItem) error {
	if err := d.checkDimension(ctx, item.Kind, len(item.Embedding)); err != nil {
		return err
	}

	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `
		INSERT INTO item (id, kind, primary_text, embedding, metadata, scope_tags, created_ts, reference_grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (kind, id)
		DO UPDATE SET
			primary_text = EXCLUDED.primary_text,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			scope_tags = EXCLUDED.scope_tags,
			created_ts = EXCLUDED.created_ts,
			reference_grade = EXCLUDED.reference_grade
	`
	_, err = d.db.ExecContext(ctx, stmt,
		item.ID,
		string(item.Kind),
		item.PrimaryText,
		pgvector.NewVector(item.Embedding),
		metadata,
		pq.Array(item.Scope.Tags()),
		item.CreatedTs,
		item.IsReferenceGrade,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert item")
	}
	return nil
}

func (d *DB) Get(ctx context.Context, kind store.Kind, id string) (*store.StoredItem, error) {
	query := `
		SELECT id, kind, primary_text, embedding, metadata, scope_tags, created_ts, reference_grade
		FROM item
		WHERE kind = $1 AND id = $2
	`
	item, err := scanItem(d.db.QueryRowContext(ctx, query, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item")
	}
	return item, nil
}

// Query performs cosine similarity search using pgvector. The <=> operator
// computes cosine distance (1 - cosine similarity), so ordering by distance
// ascending yields the most similar items first.
func (d *DB) Query(ctx context.Context, kind store.Kind, vector []float32, limit int) ([]*store.QueryResult, error) {
	if err := d.checkDimension(ctx, kind, len(vector)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = store.DefaultTopK * store.DefaultOverfetchFactor
	}

	query := `
		SELECT id, kind, primary_text, embedding, metadata, scope_tags, created_ts, reference_grade,
			1 - (embedding <=> $2) AS score
		FROM item
		WHERE kind = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := d.db.QueryContext(ctx, query, string(kind), pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query items")
	}
	defer rows.Close()

	results := []*store.QueryResult{}
	for rows.Next() {
		var (
			item     store.StoredItem
			vec      pgvector.Vector
			metadata []byte
			tags     pq.StringArray
			kindRaw  string
			score    float64
		)
		if err := rows.Scan(
			&item.ID, &kindRaw, &item.PrimaryText, &vec,
			&metadata, &tags, &item.CreatedTs, &item.IsReferenceGrade, &score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		if err := fillItem(&item, kindRaw, vec, metadata, tags); err != nil {
			return nil, err
		}
		results = append(results, &store.QueryResult{Item: &item, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate items")
	}
	return results, nil
}

func (d *DB) Delete(ctx context.Context, kind store.Kind, id string) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`DELETE FROM item WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete item")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return affected > 0, nil
}

func (d *DB) Scan(ctx context.Context, kind store.Kind, limit int) ([]*store.StoredItem, error) {
	query := `
		SELECT id, kind, primary_text, embedding, metadata, scope_tags, created_ts, reference_grade
		FROM item
		WHERE kind = $1
		ORDER BY created_ts ASC, id ASC
	`
	args := []any{string(kind)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan items")
	}
	defer rows.Close()

	items := []*store.StoredItem{}
	for rows.Next() {
		var (
			item     store.StoredItem
			vec      pgvector.Vector
			metadata []byte
			tags     pq.StringArray
			kindRaw  string
		)
		if err := rows.Scan(
			&item.ID, &kindRaw, &item.PrimaryText, &vec,
			&metadata, &tags, &item.CreatedTs, &item.IsReferenceGrade,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan item")
		}
		if err := fillItem(&item, kindRaw, vec, metadata, tags); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate items")
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*store.StoredItem, error) {
	var (
		item     store.StoredItem
		vec      pgvector.Vector
		metadata []byte
		tags     pq.StringArray
		kindRaw  string
	)
	if err := row.Scan(
		&item.ID, &kindRaw, &item.PrimaryText, &vec,
		&metadata, &tags, &item.CreatedTs, &item.IsReferenceGrade,
	); err != nil {
		return nil, err
	}
	if err := fillItem(&item, kindRaw, vec, metadata, tags); err != nil {
		return nil, err
	}
	return &item, nil
}

func fillItem(item *store.StoredItem, kindRaw string, vec pgvector.Vector, metadata []byte, tags pq.StringArray) error {
	item.Kind = store.Kind(kindRaw)
	item.Embedding = vec.Slice()
	item.Scope = store.ScopeRestrictedTo(tags...)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
			return errors.Wrap(err, "failed to unmarshal metadata")
		}
	}
	return nil
}
