package record

import (
	"context"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	upsertFn func(ctx context.Context, rec domain.Record) (bool, error)
	getFn    func(ctx context.Context, id string) (domain.Record, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, cursor string, limit int) ([]domain.Record, string, error)
	countFn  func(ctx context.Context, conditions []db.Condition) (int, error)
}

func (m *mockRepo) Upsert(ctx context.Context, rec domain.Record) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, rec)
	}
	return true, nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.Record, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.Record{}, domain.ErrRecordNotFound
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, cursor string, limit int) ([]domain.Record, string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, cursor, limit)
	}
	return nil, "", nil
}

func (m *mockRepo) Count(ctx context.Context, conditions []db.Condition) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, conditions)
	}
	return 0, nil
}

// validRecord builds a record that passes schema validation.
func validRecord(path string) domain.Record {
	return domain.Record{
		File: domain.FileInfo{
			Filename: "flight.bil",
			Path:     path,
			Size:     2048,
			Status:   domain.StatusArchived,
		},
		Spatial: &domain.Spatial{
			Geometries: geometry.Geometries{
				Type:        geometry.TypeLineString,
				Coordinates: [][]float64{{-1.2, 51.0}, {-1.0, 51.3}},
				BBox:        []float64{-1.2, 51.0, -1.0, 51.3},
				Hull:        []float64{51.0, -1.2, 51.3, -1.0},
			},
		},
		Temporal: &domain.Temporal{
			StartTime: "2019-06-01T09:00:00Z",
			EndTime:   "2019-06-01T11:30:00Z",
		},
		DataType:   &domain.DataType{Type: "swath"},
		DataFormat: &domain.DataFormat{Format: "ENVI BIL"},
	}
}
