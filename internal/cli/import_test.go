package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/arcdex/arcdex/internal/domain"
)

// inventoryRow mirrors the columns `arcdexctl import` understands.
type inventoryRow struct {
	Path       string   `parquet:"path"`
	Size       int64    `parquet:"size"`
	Format     string   `parquet:"format,optional"`
	DataType   string   `parquet:"data_type,optional"`
	Level      string   `parquet:"level,optional"`
	Location   string   `parquet:"location,optional"`
	StartTime  string   `parquet:"start_time,optional"`
	EndTime    string   `parquet:"end_time,optional"`
	MinLat     *float64 `parquet:"min_lat,optional"`
	MinLon     *float64 `parquet:"min_lon,optional"`
	MaxLat     *float64 `parquet:"max_lat,optional"`
	MaxLon     *float64 `parquet:"max_lon,optional"`
	Parameters []string `parquet:"parameters,list"`
}

func writeInventory(t *testing.T, rows []inventoryRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[inventoryRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func fptr(v float64) *float64 { return &v }

func TestReadInventory_FullRow(t *testing.T) {
	path := writeInventory(t, []inventoryRow{{
		Path:       "/badc/eufar/data/flight1/swath.bil",
		Size:       2048,
		Format:     "ENVI BIL",
		DataType:   "swath",
		Level:      "L1",
		Location:   "Weybourne, UK",
		StartTime:  "2019-06-01T09:00:00Z",
		EndTime:    "2019-06-01T11:30:00Z",
		MinLat:     fptr(51.0),
		MinLon:     fptr(-1.2),
		MaxLat:     fptr(51.3),
		MaxLon:     fptr(-1.0),
		Parameters: []string{"radiance=W m-2", "wavelength=nm"},
	}})

	var recs []domain.Record
	err := readInventory(path, func(rec domain.Record) { recs = append(recs, rec) })
	if err != nil {
		t.Fatalf("readInventory: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}

	rec := recs[0]
	if rec.ID != domain.RecordID("/badc/eufar/data/flight1/swath.bil") {
		t.Errorf("_id = %q, not derived from path", rec.ID)
	}
	if rec.File.Filename != "swath.bil" || rec.File.Size != 2048 {
		t.Errorf("file section = %+v", rec.File)
	}
	if rec.File.Status != domain.StatusArchived {
		t.Errorf("status = %q", rec.File.Status)
	}
	if rec.DataFormat == nil || rec.DataFormat.Format != "ENVI BIL" {
		t.Errorf("data_format = %+v", rec.DataFormat)
	}
	if rec.DataType == nil || rec.DataType.Type != "swath" {
		t.Errorf("data_type = %+v", rec.DataType)
	}
	if rec.Level == nil || rec.Level.Level != "L1" {
		t.Errorf("level = %+v", rec.Level)
	}
	if rec.Temporal == nil || rec.Temporal.StartTime != "2019-06-01T09:00:00Z" {
		t.Errorf("temporal = %+v", rec.Temporal)
	}
	if len(rec.Parameters) != 2 || rec.Parameters[0].Name != "radiance" || rec.Parameters[0].Value != "W m-2" {
		t.Errorf("parameters = %+v", rec.Parameters)
	}

	if rec.Spatial == nil {
		t.Fatal("spatial missing")
	}
	// bbox lon first, hull lat first — corners must land per-field.
	bbox := rec.Spatial.Geometries.BBox
	hull := rec.Spatial.Geometries.Hull
	if len(bbox) != 4 || bbox[0] != -1.2 || bbox[1] != 51.0 {
		t.Errorf("bbox = %v", bbox)
	}
	if len(hull) != 4 || hull[0] != 51.0 || hull[1] != -1.2 {
		t.Errorf("hull = %v", hull)
	}
	if rec.Spatial.Identifier == nil || rec.Spatial.Identifier.LocationName != "Weybourne, UK" {
		t.Errorf("identifier = %+v", rec.Spatial.Identifier)
	}
}

func TestReadInventory_SparseRows(t *testing.T) {
	path := writeInventory(t, []inventoryRow{
		{Path: "/data/plain.dat", Size: 7},
		{Path: "", Size: 1}, // no path — dropped
		{Path: "/data/partial.dat", Size: 3, MinLat: fptr(51.0)}, // partial corners — no spatial
	})

	var recs []domain.Record
	if err := readInventory(path, func(rec domain.Record) { recs = append(recs, rec) }); err != nil {
		t.Fatalf("readInventory: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (pathless row dropped)", len(recs))
	}
	if recs[0].Spatial != nil || recs[0].Temporal != nil || recs[0].DataFormat != nil {
		t.Errorf("sparse row grew sections: %+v", recs[0])
	}
	if recs[1].Spatial != nil {
		t.Errorf("partial envelope must not produce spatial, got %+v", recs[1].Spatial)
	}
}

func TestReadInventory_MissingPathColumn(t *testing.T) {
	type badRow struct {
		Name string `parquet:"name"`
	}
	path := filepath.Join(t.TempDir(), "bad.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := parquet.NewGenericWriter[badRow](f)
	if _, err := w.Write([]badRow{{Name: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if err := readInventory(path, func(domain.Record) {}); err == nil {
		t.Fatal("expected error for missing path column")
	}
}
