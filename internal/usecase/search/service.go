// Package search translates archive queries into record-index lookups:
// exact facets, temporal overlap, and bounding-box intersection.
package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
	recrepo "github.com/arcdex/arcdex/internal/repository/record"
)

// Query is a filtered archive search. All set axes are ANDed.
type Query struct {
	Path     string // exact archive path
	DataType string
	Format   string
	Level    string
	Location string
	Status   string
	Corrupt  *bool

	// Temporal overlap window, RFC3339. A record matches when its time
	// bounds overlap [Start, End]; either side may be open.
	Start string
	End   string

	// BBox is a query envelope ordered [min_lon, min_lat, max_lon, max_lat],
	// the same axis order records carry. A record matches when its own
	// bbox intersects it.
	BBox []float64

	Offset int
	Limit  int
}

// Result is one page of matching records.
type Result struct {
	Records []domain.Record
	Total   int
	Offset  int
	Limit   int
}

// Service executes archive searches.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a search service.
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

// Search runs the query and returns one page of records.
func (s *Service) Search(ctx context.Context, q Query) (Result, error) {
	if q.Offset < 0 {
		return Result{}, fmt.Errorf("%w: offset must be non-negative", domain.ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		q.Limit = s.defaultPageSize
	}
	if q.Limit > s.maxPageSize {
		q.Limit = s.maxPageSize
	}

	conditions, err := buildConditions(q)
	if err != nil {
		return Result{}, err
	}

	recs, total, err := s.repo.Find(ctx, conditions, q.Offset, q.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("search records: %w", err)
	}

	return Result{Records: recs, Total: total, Offset: q.Offset, Limit: q.Limit}, nil
}

// buildConditions maps the query axes onto index fields.
func buildConditions(q Query) ([]db.Condition, error) {
	var conds []db.Condition

	tagAxes := []struct {
		field, value string
	}{
		{recrepo.FieldPath, q.Path},
		{recrepo.FieldDataType, q.DataType},
		{recrepo.FieldFormat, q.Format},
		{recrepo.FieldLevel, q.Level},
		{recrepo.FieldLocation, q.Location},
		{recrepo.FieldStatus, q.Status},
	}
	for _, a := range tagAxes {
		if a.value != "" {
			conds = append(conds, db.MatchCondition(a.field, a.value))
		}
	}

	if q.Corrupt != nil {
		conds = append(conds, db.MatchCondition(recrepo.FieldCorrupt, strconv.FormatBool(*q.Corrupt)))
	}

	temporal, err := temporalConditions(q.Start, q.End)
	if err != nil {
		return nil, err
	}
	conds = append(conds, temporal...)

	spatial, err := spatialConditions(q.BBox)
	if err != nil {
		return nil, err
	}
	conds = append(conds, spatial...)

	return conds, nil
}

// temporalConditions expresses window overlap: a record overlaps
// [start, end] when it starts before the window closes and ends after
// the window opens.
func temporalConditions(startStr, endStr string) ([]db.Condition, error) {
	var conds []db.Condition

	if endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return nil, fmt.Errorf("%w: parse end %q: %v", domain.ErrInvalidQuery, endStr, err)
		}
		v := float64(end.Unix())
		conds = append(conds, db.RangeCondition(recrepo.FieldStartEpoch, nil, &v))
	}
	if startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return nil, fmt.Errorf("%w: parse start %q: %v", domain.ErrInvalidQuery, startStr, err)
		}
		v := float64(start.Unix())
		conds = append(conds, db.RangeCondition(recrepo.FieldEndEpoch, &v, nil))
	}

	return conds, nil
}

// spatialConditions expresses envelope intersection: each record extreme
// is bounded by the opposite query extreme.
func spatialConditions(bbox []float64) ([]db.Condition, error) {
	if len(bbox) == 0 {
		return nil, nil
	}

	env, ok := geometry.EnvelopeFromBBox(bbox)
	if !ok ||
		!geometry.ValidLat(env.MinLat) || !geometry.ValidLat(env.MaxLat) ||
		!geometry.ValidLon(env.MinLon) || !geometry.ValidLon(env.MaxLon) {
		return nil, fmt.Errorf(
			"%w: bbox must be [min_lon, min_lat, max_lon, max_lat] within coordinate range",
			domain.ErrInvalidQuery,
		)
	}

	return []db.Condition{
		db.RangeCondition(recrepo.FieldMinLat, nil, &env.MaxLat),
		db.RangeCondition(recrepo.FieldMaxLat, &env.MinLat, nil),
		db.RangeCondition(recrepo.FieldMinLon, nil, &env.MaxLon),
		db.RangeCondition(recrepo.FieldMaxLon, &env.MinLon, nil),
	}, nil
}
