package envi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
)

// Navigation band layout in post-processed swath files. Files carry at
// least time/lat/lon; the attitude bands are optional.
const (
	bandTime = iota
	bandLat
	bandLon
	bandAlt
	bandRoll
	bandPitch
	bandHeading
)

const minNavBands = 3

// acquisitionDateField is the header entry carrying the flight date.
// The time band holds UTC seconds since midnight of that date.
const acquisitionDateField = "acquisition date"

// Extractor reads ENVI BIL/BSQ navigation files into metadata records.
type Extractor struct {
	SummaryPoints  int // coordinate summary size, 0 = default 30
	MaxTrackPoints int // line cap per file, 0 = unlimited
}

// Name identifies the extractor in logs and metrics.
func (e *Extractor) Name() string { return "envi" }

// Supports reports whether path looks like an ENVI data file with a
// header sibling.
func (e *Extractor) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bil", ".bsq":
	default:
		return false
	}
	return headerPath(path) != ""
}

// headerPath locates the .hdr sibling: either appended (file.bil.hdr) or
// substituted (file.hdr). Empty when neither exists.
func headerPath(dataPath string) string {
	appended := dataPath + ".hdr"
	if _, err := os.Stat(appended); err == nil {
		return appended
	}
	substituted := strings.TrimSuffix(dataPath, filepath.Ext(dataPath)) + ".hdr"
	if _, err := os.Stat(substituted); err == nil {
		return substituted
	}
	return ""
}

// Extract builds a metadata record for an ENVI navigation file. A file
// whose bands cannot be read still yields a file-level record flagged
// corrupt; only filesystem-level failures return an error.
func (e *Extractor) Extract(ctx context.Context, path string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return domain.Record{}, fmt.Errorf("stat %s: %w", path, err)
	}

	rec := domain.Record{
		File: domain.FileInfo{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     stat.Size(),
			Status:   domain.StatusArchived,
		},
		Level:    &domain.ProcessingLevel{Level: "L1"},
		DataType: &domain.DataType{Type: "swath"},
	}

	hdrPath := headerPath(path)
	if hdrPath == "" {
		return domain.Record{}, fmt.Errorf("%s: no header sibling: %w", path, domain.ErrUnsupportedFile)
	}

	hdr, swath, err := e.readSwath(path, hdrPath)
	if err != nil {
		// Unreadable payload: keep the bookkeeping record, flag it.
		rec.File.Corrupt = true
		rec.Misc = map[string]any{"corrupt_reason": err.Error()}
		return rec.WithID(), nil
	}

	rec.DataFormat = &domain.DataFormat{
		Format: "ENVI " + strings.ToUpper(hdr.Interleave),
	}
	e.applyBands(&rec, hdr, swath)

	return rec.WithID(), nil
}

func (e *Extractor) readSwath(dataPath, hdrPath string) (Header, [][]float64, error) {
	hf, err := os.Open(hdrPath)
	if err != nil {
		return Header{}, nil, fmt.Errorf("open header: %w", err)
	}
	defer hf.Close()

	hdr, err := ParseHeader(hf)
	if err != nil {
		return Header{}, nil, fmt.Errorf("parse header: %w", err)
	}
	if hdr.Bands < minNavBands {
		return Header{}, nil, fmt.Errorf("%d bands, need at least %d (time, lat, lon)",
			hdr.Bands, minNavBands)
	}

	df, err := os.Open(dataPath)
	if err != nil {
		return Header{}, nil, fmt.Errorf("open data: %w", err)
	}
	defer df.Close()

	bands, err := ReadBands(df, hdr, e.MaxTrackPoints)
	if err != nil {
		return Header{}, nil, fmt.Errorf("read bands: %w", err)
	}
	return hdr, bands, nil
}

// applyBands fills the spatial, temporal and parameter sections from the
// decoded navigation bands.
func (e *Extractor) applyBands(rec *domain.Record, hdr Header, bands [][]float64) {
	misc := map[string]any{}

	track, err := geometry.NewTrack(bands[bandLat], bands[bandLon])
	if err == nil {
		summary := e.SummaryPoints
		if summary <= 0 {
			summary = 30
		}
		if g, ok := geometry.Build(track, summary); ok {
			rec.Spatial = &domain.Spatial{Geometries: g}
			// WKT of the summary line, for consumers that want the
			// flight line without parsing the geometries block.
			if line, wktErr := track.Clean().Summarized(summary).WKT(); wktErr == nil {
				misc["coord_wkt"] = line
			}
		}
	}

	if temporal := temporalFromBand(hdr, bands[bandTime]); temporal != nil {
		rec.Temporal = temporal
	}

	for _, name := range hdr.BandNames {
		rec.Parameters = append(rec.Parameters, domain.Parameter{
			Name: "band", Value: name,
		})
	}

	if sensor, ok := hdr.Fields["sensor type"]; ok {
		misc["sensor"] = sensor
	}
	if len(misc) > 0 {
		rec.Misc = misc
	}
}

// temporalFromBand converts the seconds-of-day time band into RFC3339
// bounds anchored at the header's acquisition date. Nil when the date is
// absent or the band is empty.
func temporalFromBand(hdr Header, secs []float64) *domain.Temporal {
	raw, ok := hdr.Fields[acquisitionDateField]
	if !ok || len(secs) == 0 {
		return nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}

	lo, hi := secs[0], secs[0]
	for _, s := range secs[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	return &domain.Temporal{
		StartTime: day.Add(time.Duration(lo * float64(time.Second))).UTC().Format(time.RFC3339),
		EndTime:   day.Add(time.Duration(hi * float64(time.Second))).UTC().Format(time.RFC3339),
	}
}
