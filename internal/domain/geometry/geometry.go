// Package geometry derives the spatial.geometries block of a metadata
// record from a track of latitude/longitude samples.
package geometry

// Geometry types used in the geometries block.
const (
	TypePoint      = "Point"
	TypeLineString = "LineString"
)

// Geometries is the spatial.geometries section of a metadata record.
//
// The bbox and hull envelopes deliberately use opposite axis orders:
// bbox is [lon, lat, lon2, lat2] while hull is [lat, lon, lat2, lon2].
// The ordering mismatch is part of the wire contract consumed by the
// document index and must not be "fixed" on either side.
type Geometries struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"` // GeoJSON positions, lon first
	BBox        []float64   `json:"bbox,omitempty"`
	Hull        []float64   `json:"hull,omitempty"`
}

// Envelope is an axis-aligned bounding rectangle in degrees.
type Envelope struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// BBox returns the envelope in bbox order: [lon, lat, lon2, lat2].
func (e Envelope) BBox() []float64 {
	return []float64{e.MinLon, e.MinLat, e.MaxLon, e.MaxLat}
}

// HullBounds returns the envelope in hull order: [lat, lon, lat2, lon2].
func (e Envelope) HullBounds() []float64 {
	return []float64{e.MinLat, e.MinLon, e.MaxLat, e.MaxLon}
}

// EnvelopeFromBBox parses a bbox-ordered [lon, lat, lon2, lat2] slice.
func EnvelopeFromBBox(bbox []float64) (Envelope, bool) {
	if len(bbox) != 4 {
		return Envelope{}, false
	}
	return Envelope{
		MinLon: bbox[0], MinLat: bbox[1],
		MaxLon: bbox[2], MaxLat: bbox[3],
	}, true
}

// EnvelopeFromHull parses a hull-ordered [lat, lon, lat2, lon2] slice.
func EnvelopeFromHull(hull []float64) (Envelope, bool) {
	if len(hull) != 4 {
		return Envelope{}, false
	}
	return Envelope{
		MinLat: hull[0], MinLon: hull[1],
		MaxLat: hull[2], MaxLon: hull[3],
	}, true
}

// Build derives the geometries block from a track. summaryPoints caps the
// size of the coordinate summary (30 in the producing system). Returns
// false when the track has no valid coordinates.
func Build(t Track, summaryPoints int) (Geometries, bool) {
	clean := t.Clean()
	if clean.Len() == 0 {
		return Geometries{}, false
	}

	coords := clean.Summary(summaryPoints)

	geomType := TypeLineString
	if len(coords) == 1 {
		geomType = TypePoint
	}

	hull := ConvexHull(clean.Positions())
	env := envelopeOfPositions(hull)

	return Geometries{
		Type:        geomType,
		Coordinates: coords,
		BBox:        env.BBox(),
		Hull:        env.HullBounds(),
	}, true
}

// envelopeOfPositions computes the envelope of lon-first positions.
func envelopeOfPositions(pts [][]float64) Envelope {
	env := Envelope{
		MinLon: pts[0][0], MaxLon: pts[0][0],
		MinLat: pts[0][1], MaxLat: pts[0][1],
	}
	for _, p := range pts[1:] {
		if p[0] < env.MinLon {
			env.MinLon = p[0]
		}
		if p[0] > env.MaxLon {
			env.MaxLon = p[0]
		}
		if p[1] < env.MinLat {
			env.MinLat = p[1]
		}
		if p[1] > env.MaxLat {
			env.MaxLat = p[1]
		}
	}
	return env
}
