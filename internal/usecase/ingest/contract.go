package ingest

import (
	"context"

	"github.com/arcdex/arcdex/internal/archive"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/extract"
)

// Registry resolves the extractor responsible for a file.
type Registry interface {
	ForPath(path string) (extract.Extractor, error)
}

// Recorder stores extracted records.
type Recorder interface {
	Upsert(ctx context.Context, rec domain.Record) (created bool, err error)
}

// Stager lists and downloads objects from archive storage.
type Stager interface {
	List(ctx context.Context, prefix string) ([]archive.Object, error)
	Stage(ctx context.Context, key, destDir string) (string, error)
}
