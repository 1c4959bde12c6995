package record

import (
	"context"

	"github.com/arcdex/arcdex/internal/db"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn     func(ctx context.Context, key string) error
	existsFn  func(ctx context.Context, key string) (bool, error)
	searchFn  func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	countFn   func(ctx context.Context, index string, conditions []db.Condition) (int, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, conditions []db.Condition) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, conditions)
	}
	return 0, nil
}

// sampleRecord builds a fully-populated record for the given archive path.
func sampleRecord(path string) domain.Record {
	return domain.Record{
		File: domain.FileInfo{
			Filename: "flight.bil",
			Path:     path,
			Size:     1024,
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
		Parameters: []domain.Parameter{{Name: "band", Value: "latitude"}},
		Level:      &domain.ProcessingLevel{Level: "L1"},
		DataType:   &domain.DataType{Type: "swath"},
		DataFormat: &domain.DataFormat{Format: "ENVI BIL"},
	}
}
