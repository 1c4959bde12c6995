package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

func validRecord() domain.Record {
	return domain.Record{
		File: domain.FileInfo{
			Filename: "scene001.dat",
			Path:     "/archive/2014/scene001.dat",
			Size:     204800,
		},
		Spatial: &domain.Spatial{
			Geometries: geometry.Geometries{
				Type:        geometry.TypeLineString,
				Coordinates: [][]float64{{-1.0, 51.0}, {-1.2, 51.3}},
				BBox:        []float64{-1.2, 51.0, -1.0, 51.3},
				Hull:        []float64{51.0, -1.2, 51.3, -1.0},
			},
		},
		Temporal: &domain.Temporal{
			StartTime: "2014-01-01T00:00:00Z",
			EndTime:   "2014-01-02T00:00:00Z",
		},
	}
}

func TestValidateRecord_EndToEndScenario(t *testing.T) {
	// The canonical producing scenario: every nested field path must match
	// the mapping and pass validation as-is.
	rec := validRecord().WithID()
	if err := ValidateRecord(&rec); err != nil {
		t.Fatalf("ValidateRecord: %v", err)
	}
	if rec.ID != domain.RecordID("/archive/2014/scene001.dat") {
		t.Errorf("id = %q", rec.ID)
	}
}

func TestValidateRecord_RequiredFileFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Record)
	}{
		{"missing_path", func(r *domain.Record) { r.File.Path = "" }},
		{"missing_filename", func(r *domain.Record) { r.File.Filename = "" }},
		{"negative_size", func(r *domain.Record) { r.File.Size = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(&rec)
			err := ValidateRecord(&rec)
			if !errors.Is(err, domain.ErrInvalidRecord) {
				t.Errorf("err = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestValidateRecord_AxisOrderMismatch(t *testing.T) {
	rec := validRecord()
	// Producer bug: hull written in bbox (lon-first) order. The two fields
	// then describe different rectangles and must be rejected.
	rec.Spatial.Geometries.Hull = []float64{-1.2, 51.0, -1.0, 51.3}

	err := ValidateRecord(&rec)
	if !errors.Is(err, domain.ErrInvalidRecord) {
		t.Fatalf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestValidateRecord_EnvelopeRanges(t *testing.T) {
	rec := validRecord()
	// 51.3 read as longitude would be fine; 181 as latitude is not.
	rec.Spatial.Geometries.BBox = []float64{-1.2, 181, -1.0, 51.3}
	rec.Spatial.Geometries.Hull = nil

	if err := ValidateRecord(&rec); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}

	rec = validRecord()
	rec.Spatial.Geometries.BBox = []float64{-1.0, 51.0, -1.2, 51.3} // min > max
	rec.Spatial.Geometries.Hull = nil
	if err := ValidateRecord(&rec); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}
}

func TestValidateRecord_Temporal(t *testing.T) {
	rec := validRecord()
	rec.Temporal = &domain.Temporal{
		StartTime: "2014-01-02T00:00:00Z",
		EndTime:   "2014-01-01T00:00:00Z",
	}
	if err := ValidateRecord(&rec); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("start after end: err = %v, want ErrInvalidRecord", err)
	}

	rec.Temporal = &domain.Temporal{StartTime: "2014-01-01T00:00:00Z"}
	if err := ValidateRecord(&rec); err != nil {
		t.Errorf("open-ended temporal should be valid, got %v", err)
	}
}

func TestValidateRecord_Parameters(t *testing.T) {
	rec := validRecord()
	rec.Parameters = []domain.Parameter{{Name: "", Value: "x"}}
	if err := ValidateRecord(&rec); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("err = %v, want ErrInvalidRecord", err)
	}

	rec.Parameters = nil // empty parameter list is allowed
	if err := ValidateRecord(&rec); err != nil {
		t.Errorf("empty parameters should be valid, got %v", err)
	}
}

func TestValidateJSON(t *testing.T) {
	rec := validRecord()
	data, err := rec.AsJSON()
	if err != nil {
		t.Fatalf("AsJSON: %v", err)
	}

	back, err := ValidateJSON(data)
	if err != nil {
		t.Fatalf("ValidateJSON: %v", err)
	}
	if back.File.Path != rec.File.Path {
		t.Errorf("path = %q", back.File.Path)
	}

	if _, err := ValidateJSON([]byte("{not json")); !errors.Is(err, domain.ErrInvalidRecord) {
		t.Errorf("malformed json: err = %v, want ErrInvalidRecord", err)
	}
}

func TestDocument_IsValidJSON(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal(Document, &doc); err != nil {
		t.Fatalf("schema document is not valid JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema document has no properties object")
	}
	for _, section := range []string{
		"file", "spatial", "temporal", "parameters",
		"data_processing_level", "data_type", "data_format",
	} {
		if _, ok := props[section]; !ok {
			t.Errorf("schema document missing section %q", section)
		}
	}
}
