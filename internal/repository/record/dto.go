package record

import (
	"encoding/json"
	"fmt"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// doc is the stored document: the wire-contract record plus derived numeric
// fields the FT index needs for time and bounding-box range queries. The
// derived fields use a __ prefix so they can never collide with contract
// sections, and FromJSON drops them on the way back out.
type doc struct {
	domain.Record

	StartEpoch *float64 `json:"__start_epoch,omitempty"`
	EndEpoch   *float64 `json:"__end_epoch,omitempty"`
	MinLat     *float64 `json:"__min_lat,omitempty"`
	MinLon     *float64 `json:"__min_lon,omitempty"`
	MaxLat     *float64 `json:"__max_lat,omitempty"`
	MaxLon     *float64 `json:"__max_lon,omitempty"`
}

// buildDoc derives the index fields from the record. Temporal bounds must
// parse if set; spatial bounds are taken from the bbox envelope.
func buildDoc(rec domain.Record) (doc, error) {
	d := doc{Record: rec}

	if rec.Temporal != nil {
		start, end, err := rec.Temporal.Bounds()
		if err != nil {
			return doc{}, fmt.Errorf("derive temporal index fields: %w", err)
		}
		if !start.IsZero() {
			v := float64(start.Unix())
			d.StartEpoch = &v
		}
		if !end.IsZero() {
			v := float64(end.Unix())
			d.EndEpoch = &v
		}
	}

	if rec.Spatial != nil {
		if env, ok := geometry.EnvelopeFromBBox(rec.Spatial.Geometries.BBox); ok {
			d.MinLat = &env.MinLat
			d.MinLon = &env.MinLon
			d.MaxLat = &env.MaxLat
			d.MaxLon = &env.MaxLon
		}
	}

	return d, nil
}

// parseDoc decodes a stored document back into a wire-contract record.
// The derived __ fields are not part of domain.Record and fall away.
func parseDoc(data []byte) (domain.Record, error) {
	return domain.FromJSON(data)
}

// parseJSONGetResult unwraps the single-element array that JSON.GET with a
// $ path returns before decoding the record.
func parseJSONGetResult(data []byte) (domain.Record, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		// Root-path responses come back bare, not wrapped.
		return parseDoc(data)
	}
	if len(docs) == 0 {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return parseDoc(docs[0])
}
