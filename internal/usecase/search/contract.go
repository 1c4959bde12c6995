package search

import (
	"context"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
)

// Repository defines the filtered-lookup contract over the record index.
type Repository interface {
	Find(ctx context.Context, conditions []db.Condition, offset, limit int) (
		recs []domain.Record, total int, err error,
	)
}
