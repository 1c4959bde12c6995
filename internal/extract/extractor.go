// Package extract turns archived files into metadata records.
package extract

import (
	"context"
	"fmt"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/extract/envi"
)

// Extractor produces a metadata record for a single archived file.
type Extractor interface {
	Name() string
	Supports(path string) bool
	Extract(ctx context.Context, path string) (domain.Record, error)
}

// Registry picks the extractor for a path. Extractors are consulted in
// registration order; the filesystem fallback should go last.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a registry with the given extractors.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry returns the production extractor set: format-aware
// extractors first, then the filesystem fallback.
func DefaultRegistry(summaryPoints, maxTrackPoints int) *Registry {
	return NewRegistry(
		&envi.Extractor{SummaryPoints: summaryPoints, MaxTrackPoints: maxTrackPoints},
		&Filesystem{},
	)
}

// ForPath returns the first extractor supporting path.
func (r *Registry) ForPath(path string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.Supports(path) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedFile)
}

// Extract picks an extractor for path and runs it.
func (r *Registry) Extract(ctx context.Context, path string) (domain.Record, error) {
	e, err := r.ForPath(path)
	if err != nil {
		return domain.Record{}, err
	}
	rec, err := e.Extract(ctx, path)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s extractor: %w", e.Name(), err)
	}
	return rec, nil
}
