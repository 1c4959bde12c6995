package record

import (
	"context"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
)

// Repository defines the storage contract for metadata records.
type Repository interface {
	Upsert(ctx context.Context, rec domain.Record) (created bool, err error)
	Get(ctx context.Context, id string) (domain.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, cursor string, limit int) (recs []domain.Record, nextCursor string, err error)
	Count(ctx context.Context, conditions []db.Condition) (int, error)
}
