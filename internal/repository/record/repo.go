// Package record persists metadata records as JSON documents and serves
// filtered lookups through the FT index.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
)

// store is the consumer interface for record persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	Count(ctx context.Context, index string, conditions []db.Condition) (int, error)
}

// Repo implements usecase record and search repositories.
type Repo struct {
	store     store
	keyPrefix string
	indexName string
}

// New creates a record repository. keyPrefix is the storage namespace
// (must match the FT index prefix), indexName the FT index to query.
func New(s store, keyPrefix, indexName string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, indexName: indexName}
}

// Upsert creates or updates a record document. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, rec domain.Record) (bool, error) {
	rec = rec.WithID()
	key := r.docKey(rec.ID)

	d, err := buildDoc(rec)
	if err != nil {
		return false, err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("marshal record %s: %w", rec.File.Path, err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Record, error) {
	key := r.docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Record{}, domain.ErrRecordNotFound
		}
		return domain.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	rec, err := parseJSONGetResult(raw)
	if err != nil {
		return domain.Record{}, err
	}
	rec.ID = id
	return rec, nil
}

// Delete removes a record by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.docKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrRecordNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List returns records with cursor-based pagination via FT.SEARCH.
// The cursor is an opaque offset; an empty next cursor means the end.
func (r *Repo) List(ctx context.Context, cursor string, limit int) ([]domain.Record, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("%w: invalid cursor %q", domain.ErrInvalidQuery, cursor)
		}
		offset = parsed
	}

	// Fetch one extra row to know whether a next page exists.
	result, err := r.store.Search(ctx, &db.Query{
		IndexName:    r.indexName,
		SortBy:       FieldStartEpoch,
		Offset:       offset,
		Limit:        limit + 1,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("list records: %w", err)
	}

	recs := r.parseEntries(result.Entries, limit)

	var nextCursor string
	if len(result.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return recs, nextCursor, nil
}

// Find returns records matching the conditions, paginated by offset.
func (r *Repo) Find(ctx context.Context, conditions []db.Condition, offset, limit int) (
	[]domain.Record, int, error,
) {
	result, err := r.store.Search(ctx, &db.Query{
		IndexName:    r.indexName,
		Conditions:   conditions,
		SortBy:       FieldStartEpoch,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("find records: %w", err)
	}

	return r.parseEntries(result.Entries, limit), result.Total, nil
}

// Count returns the number of records matching the conditions.
func (r *Repo) Count(ctx context.Context, conditions []db.Condition) (int, error) {
	n, err := r.store.Count(ctx, r.indexName, conditions)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (r *Repo) parseEntries(entries []db.SearchEntry, limit int) []domain.Record {
	recs := make([]domain.Record, 0, min(len(entries), limit))
	for i, entry := range entries {
		if i >= limit {
			break
		}
		id := r.extractID(entry.Key)
		jsonStr := entry.Fields["$"]
		if jsonStr == "" {
			continue
		}
		rec, err := parseJSONGetResult([]byte(jsonStr))
		if err != nil {
			continue
		}
		rec.ID = id
		recs = append(recs, rec)
	}
	return recs
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + "records:" + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"records:")
}
