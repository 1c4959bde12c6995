package schema

import (
	"fmt"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// ValidateRecord checks a record against the contract properties the schema
// document leaves unenforced: required file fields, per-field coordinate
// axis order, envelope agreement between bbox and hull, and temporal
// ordering. All violations wrap domain.ErrInvalidRecord.
func ValidateRecord(r *domain.Record) error {
	if r.File.Path == "" {
		return fmt.Errorf("file.path is required: %w", domain.ErrInvalidRecord)
	}
	if r.File.Filename == "" {
		return fmt.Errorf("file.filename is required: %w", domain.ErrInvalidRecord)
	}
	if r.File.Size < 0 {
		return fmt.Errorf("file.size must be non-negative, got %d: %w", r.File.Size, domain.ErrInvalidRecord)
	}

	if r.Spatial != nil {
		if err := validateGeometries(&r.Spatial.Geometries); err != nil {
			return err
		}
	}

	if err := validateTemporal(r.Temporal); err != nil {
		return err
	}

	for i, p := range r.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameters[%d].name is required: %w", i, domain.ErrInvalidRecord)
		}
	}

	return nil
}

func validateGeometries(g *geometry.Geometries) error {
	if g.Type == "" {
		return fmt.Errorf("spatial.geometries.type is required: %w", domain.ErrInvalidRecord)
	}

	for i, pos := range g.Coordinates {
		if len(pos) != 2 {
			return fmt.Errorf("spatial.geometries.coordinates[%d] must be [lon, lat]: %w",
				i, domain.ErrInvalidRecord)
		}
		if !geometry.ValidLon(pos[0]) || !geometry.ValidLat(pos[1]) {
			return fmt.Errorf("spatial.geometries.coordinates[%d] out of range (%v): %w",
				i, pos, domain.ErrInvalidRecord)
		}
	}

	var bboxEnv, hullEnv geometry.Envelope
	hasBBox := len(g.BBox) > 0
	hasHull := len(g.Hull) > 0

	if hasBBox {
		env, ok := geometry.EnvelopeFromBBox(g.BBox)
		if !ok {
			return fmt.Errorf("spatial.geometries.bbox must have 4 elements: %w", domain.ErrInvalidRecord)
		}
		if err := checkEnvelope(env, "bbox"); err != nil {
			return err
		}
		bboxEnv = env
	}
	if hasHull {
		env, ok := geometry.EnvelopeFromHull(g.Hull)
		if !ok {
			return fmt.Errorf("spatial.geometries.hull must have 4 elements: %w", domain.ErrInvalidRecord)
		}
		if err := checkEnvelope(env, "hull"); err != nil {
			return err
		}
		hullEnv = env
	}

	// A record carrying both must describe the same rectangle; a mismatch
	// is the tell-tale of a producer applying one axis order to both fields.
	if hasBBox && hasHull && bboxEnv != hullEnv {
		return fmt.Errorf("bbox %v and hull %v describe different envelopes "+
			"(check per-field axis order): %w", g.BBox, g.Hull, domain.ErrInvalidRecord)
	}

	return nil
}

func checkEnvelope(env geometry.Envelope, field string) error {
	if !geometry.ValidLat(env.MinLat) || !geometry.ValidLat(env.MaxLat) ||
		!geometry.ValidLon(env.MinLon) || !geometry.ValidLon(env.MaxLon) {
		return fmt.Errorf("spatial.geometries.%s out of range: %w", field, domain.ErrInvalidRecord)
	}
	if env.MinLat > env.MaxLat || env.MinLon > env.MaxLon {
		return fmt.Errorf("spatial.geometries.%s min exceeds max: %w", field, domain.ErrInvalidRecord)
	}
	return nil
}

func validateTemporal(t *domain.Temporal) error {
	if t == nil {
		return nil
	}
	start, end, err := t.Bounds()
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidRecord)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("temporal.start_time %q after end_time %q: %w",
			t.StartTime, t.EndTime, domain.ErrInvalidRecord)
	}
	return nil
}

// ValidateJSON decodes a JSON document and validates it as a record.
func ValidateJSON(data []byte) (domain.Record, error) {
	rec, err := domain.FromJSON(data)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidRecord)
	}
	if err := ValidateRecord(&rec); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}
