// Package record implements CRUD over metadata records with schema
// validation on the write path.
package record

import (
	"context"
	"fmt"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/schema"
)

// Service handles record CRUD.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert validates and stores a record. The id is derived from file.path;
// a caller-supplied id must agree with it. Returns true if created.
func (s *Service) Upsert(ctx context.Context, rec domain.Record) (domain.Record, bool, error) {
	if err := schema.ValidateRecord(&rec); err != nil {
		return domain.Record{}, false, err
	}

	derived := domain.RecordID(rec.File.Path)
	if rec.ID != "" && rec.ID != derived {
		return domain.Record{}, false, fmt.Errorf(
			"%w: _id %q does not match file.path digest %q", domain.ErrInvalidRecord, rec.ID, derived,
		)
	}
	rec.ID = derived

	created, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("upsert record: %w", err)
	}
	return rec, created, nil
}

// Get retrieves a record by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Record, error) {
	if id == "" {
		return domain.Record{}, fmt.Errorf("%w: id is required", domain.ErrInvalidQuery)
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Delete removes a record by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidQuery)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// List returns a paginated page of records with a next cursor.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]domain.Record, string, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	recs, next, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list records: %w", err)
	}
	return recs, next, nil
}

// Count returns the total number of indexed records.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
