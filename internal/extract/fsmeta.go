package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcdex/arcdex/internal/domain"
)

// extension -> data_format tag for files we only know at filesystem level.
var formatByExt = map[string]string{
	".nc":   "NetCDF",
	".hdf":  "HDF4",
	".h5":   "HDF5",
	".tif":  "GeoTIFF",
	".tiff": "GeoTIFF",
	".csv":  "CSV",
	".json": "JSON",
}

// Filesystem is the fallback extractor: it records what the filesystem
// knows (name, path, size) and nothing else. It supports every regular
// file, so it must be registered last.
type Filesystem struct{}

// Name identifies the extractor in logs and metrics.
func (f *Filesystem) Name() string { return "filesystem" }

// Supports accepts any path; actual existence is checked in Extract.
func (f *Filesystem) Supports(string) bool { return true }

// Extract builds a file-level record from a stat call.
func (f *Filesystem) Extract(ctx context.Context, path string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return domain.Record{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return domain.Record{}, fmt.Errorf("%s is a directory: %w", path, domain.ErrUnsupportedFile)
	}

	rec := domain.Record{
		File: domain.FileInfo{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     stat.Size(),
			Status:   domain.StatusArchived,
		},
		Misc: map[string]any{
			"mtime": stat.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		},
	}

	if format, ok := formatByExt[strings.ToLower(filepath.Ext(path))]; ok {
		rec.DataFormat = &domain.DataFormat{Format: format}
	}

	return rec.WithID(), nil
}
