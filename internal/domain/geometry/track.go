package geometry

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Track is a sequence of latitude/longitude samples along a flight line
// or swath, in acquisition order.
type Track struct {
	lats []float64
	lons []float64
}

// NewTrack creates a track from parallel lat/lon slices.
func NewTrack(lats, lons []float64) (Track, error) {
	if len(lats) != len(lons) {
		return Track{}, fmt.Errorf("lat/lon length mismatch: %d vs %d", len(lats), len(lons))
	}
	return Track{lats: lats, lons: lons}, nil
}

// Len returns the number of samples.
func (t Track) Len() int { return len(t.lats) }

// ValidLat reports whether lat is a plausible latitude in degrees.
func ValidLat(lat float64) bool {
	return lat >= -90 && lat <= 90 && !math.IsNaN(lat)
}

// ValidLon reports whether lon is a plausible longitude in degrees.
func ValidLon(lon float64) bool {
	return lon >= -180 && lon <= 180 && !math.IsNaN(lon)
}

// Clean returns a track with out-of-range pairs dropped. Navigation streams
// carry fill values well outside [-90,90]/[-180,180]; a sample is kept only
// when both axes are valid.
func (t Track) Clean() Track {
	lats := make([]float64, 0, len(t.lats))
	lons := make([]float64, 0, len(t.lons))
	for i := range t.lats {
		if ValidLat(t.lats[i]) && ValidLon(t.lons[i]) {
			lats = append(lats, t.lats[i])
			lons = append(lons, t.lons[i])
		}
	}
	return Track{lats: lats, lons: lons}
}

// Positions returns the samples as lon-first GeoJSON positions.
func (t Track) Positions() [][]float64 {
	out := make([][]float64, len(t.lats))
	for i := range t.lats {
		out[i] = []float64{t.lons[i], t.lats[i]}
	}
	return out
}

// Summary returns up to n evenly-spaced positions from the track, lon first.
// n <= 0 returns all positions.
func (t Track) Summary(n int) [][]float64 {
	if t.Len() == 0 {
		return nil
	}
	if n <= 0 || t.Len() <= n {
		return t.Positions()
	}

	step := int(math.Ceil(float64(t.Len()) / float64(n)))
	out := make([][]float64, 0, n)
	for i := 0; i < t.Len(); i += step {
		out = append(out, []float64{t.lons[i], t.lats[i]})
	}
	return out
}

// Summarized returns the track reduced to its coordinate summary.
func (t Track) Summarized(n int) Track {
	pts := t.Summary(n)
	lats := make([]float64, len(pts))
	lons := make([]float64, len(pts))
	for i, p := range pts {
		lons[i], lats[i] = p[0], p[1]
	}
	return Track{lats: lats, lons: lons}
}

// Envelope returns the bounding rectangle of the track.
// ok is false for an empty track.
func (t Track) Envelope() (Envelope, bool) {
	if t.Len() == 0 {
		return Envelope{}, false
	}
	return envelopeOfPositions(t.Positions()), true
}

// LineString returns the track as a go-geom XY linestring.
func (t Track) LineString() (*geom.LineString, error) {
	if t.Len() < 2 {
		return nil, fmt.Errorf("linestring requires at least 2 points, have %d", t.Len())
	}
	coords := make([]geom.Coord, t.Len())
	for i := range t.lats {
		coords[i] = geom.Coord{t.lons[i], t.lats[i]}
	}
	ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, fmt.Errorf("build linestring: %w", err)
	}
	return ls, nil
}

// WKT returns the track as a WKT LINESTRING.
func (t Track) WKT() (string, error) {
	ls, err := t.LineString()
	if err != nil {
		return "", err
	}
	s, err := wkt.Marshal(ls)
	if err != nil {
		return "", fmt.Errorf("marshal wkt: %w", err)
	}
	return s, nil
}
