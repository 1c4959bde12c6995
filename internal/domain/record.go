// Package domain holds the metadata record contract for the archive index.
package domain

import (
	"crypto/sha1" //nolint:gosec // content-addressed id, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// File archive statuses.
const (
	StatusArchived  = "archived"
	StatusStaged    = "staged"
	StatusWithdrawn = "withdrawn"
)

// Record is the per-file metadata document stored in the archive index.
// Field names and nesting are the wire contract; see internal/schema/record.schema.json.
type Record struct {
	ID         string           `json:"_id,omitempty"`
	File       FileInfo         `json:"file"`
	Spatial    *Spatial         `json:"spatial,omitempty"`
	Temporal   *Temporal        `json:"temporal,omitempty"`
	Parameters []Parameter      `json:"parameters,omitempty"`
	Level      *ProcessingLevel `json:"data_processing_level,omitempty"`
	DataType   *DataType        `json:"data_type,omitempty"`
	DataFormat *DataFormat      `json:"data_format,omitempty"`
	Misc       map[string]any   `json:"misc,omitempty"`
}

// FileInfo is the filesystem-level section of a record.
type FileInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Corrupt  bool   `json:"corrupt"`
	Status   string `json:"status,omitempty"`
}

// Spatial groups the geometry block and the spatial reference identifiers.
type Spatial struct {
	Geometries geometry.Geometries `json:"geometries"`
	Identifier *Identifier         `json:"identifier,omitempty"`
}

// Identifier holds spatial reference identifiers for gridded products.
type Identifier struct {
	AbsID        string `json:"abs_id,omitempty"`
	RelID        string `json:"rel_id,omitempty"`
	XID          string `json:"x_id,omitempty"`
	YID          string `json:"y_id,omitempty"`
	Format       string `json:"format,omitempty"`
	LocationName string `json:"location_name,omitempty"`
}

// Temporal holds the acquisition time bounds as RFC3339 strings.
type Temporal struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Bounds parses the time bounds. A zero time is returned for an unset bound.
func (t *Temporal) Bounds() (start, end time.Time, err error) {
	if t == nil {
		return start, end, nil
	}
	if t.StartTime != "" {
		start, err = time.Parse(time.RFC3339, t.StartTime)
		if err != nil {
			return start, end, fmt.Errorf("parse start_time %q: %w", t.StartTime, err)
		}
	}
	if t.EndTime != "" {
		end, err = time.Parse(time.RFC3339, t.EndTime)
		if err != nil {
			return start, end, fmt.Errorf("parse end_time %q: %w", t.EndTime, err)
		}
	}
	return start, end, nil
}

// Parameter is a single recorded physical/scientific parameter.
// Order within a record is significant and preserved.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProcessingLevel is the provenance tag for applied transformation (L0..L4).
type ProcessingLevel struct {
	Level string `json:"level"`
}

// DataType tags the kind of measurement in the file.
type DataType struct {
	Type string `json:"type"`
}

// DataFormat tags the on-disk format of the archived file.
type DataFormat struct {
	Format  string `json:"format"`
	Version string `json:"version,omitempty"`
}

// RecordID derives the document id from the archive path (hex sha1).
func RecordID(path string) string {
	sum := sha1.Sum([]byte(path)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])
}

// WithID returns a copy of the record with ID derived from file.path.
func (r Record) WithID() Record {
	r.ID = RecordID(r.File.Path)
	return r
}

// AsJSON encodes the record in its wire document form.
func (r Record) AsJSON() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.File.Path, err)
	}
	return data, nil
}

// FromJSON decodes a record from its JSON document form.
func FromJSON(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return r, nil
}
