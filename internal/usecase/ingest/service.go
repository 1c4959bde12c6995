// Package ingest walks archive trees, extracts metadata records from each
// file, and writes them to the index. Per-file failures are reported, not
// fatal: one unreadable flight file must not sink a directory scan.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/logger"
	"github.com/arcdex/arcdex/internal/metrics"
	"github.com/arcdex/arcdex/internal/schema"
)

// FileError records a single file that could not be ingested.
type FileError struct {
	Path string
	Err  error
}

// Report summarizes one ingest run.
type Report struct {
	Indexed int // records written, including corrupt-flagged ones
	Corrupt int // subset of Indexed whose payload could not be read
	Skipped int // unsupported files
	Failed  int // extraction or store errors
	Errors  []FileError
}

// Service ingests files into the record index.
type Service struct {
	registry Registry
	records  Recorder
	stager   Stager // optional, nil when archive storage is not configured
}

// New creates an ingest service.
func New(registry Registry, records Recorder) *Service {
	return &Service{registry: registry, records: records}
}

// WithStager enables archive-storage ingest.
func (s *Service) WithStager(st Stager) *Service {
	s.stager = st
	return s
}

// File extracts and indexes a single file.
func (s *Service) File(ctx context.Context, path string) (domain.Record, error) {
	ext, err := s.registry.ForPath(path)
	if err != nil {
		return domain.Record{}, err
	}

	start := time.Now()
	rec, err := ext.Extract(ctx, path)
	metrics.IngestExtractionDuration.WithLabelValues(ext.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IngestFilesTotal.WithLabelValues(ext.Name(), "failed").Inc()
		return domain.Record{}, fmt.Errorf("%s extractor: %w", ext.Name(), err)
	}

	if rec.File.Status == "" {
		rec.File.Status = domain.StatusArchived
	}
	rec = rec.WithID()

	if err := schema.ValidateRecord(&rec); err != nil {
		metrics.IngestFilesTotal.WithLabelValues(ext.Name(), "failed").Inc()
		return domain.Record{}, fmt.Errorf("validate %s: %w", path, err)
	}

	if _, err := s.records.Upsert(ctx, rec); err != nil {
		metrics.IngestFilesTotal.WithLabelValues(ext.Name(), "failed").Inc()
		return domain.Record{}, fmt.Errorf("index %s: %w", path, err)
	}

	status := "indexed"
	if rec.File.Corrupt {
		status = "corrupt"
	}
	metrics.IngestFilesTotal.WithLabelValues(ext.Name(), status).Inc()
	metrics.IngestRecordsIndexed.Inc()
	return rec, nil
}

// Dir walks a directory tree and ingests every regular file.
func (s *Service) Dir(ctx context.Context, dir string) (Report, error) {
	log := logger.FromContext(ctx)
	var report Report

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		s.ingestOne(ctx, path, &report, log)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", dir, err)
	}

	return report, nil
}

// Archive stages every object under an archive-storage prefix into a
// scratch directory and ingests it. Staged payloads are removed as soon
// as their record is written.
func (s *Service) Archive(ctx context.Context, prefix, scratchDir string) (Report, error) {
	var report Report
	if s.stager == nil {
		return report, errors.New("archive storage is not configured")
	}
	log := logger.FromContext(ctx)

	objects, err := s.stager.List(ctx, prefix)
	if err != nil {
		return report, err
	}

	for _, obj := range objects {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		local, err := s.stager.Stage(ctx, obj.Key, scratchDir)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, FileError{Path: obj.Key, Err: err})
			log.Warn("stage failed", zap.String("key", obj.Key), zap.Error(err))
			continue
		}

		s.ingestOne(ctx, local, &report, log)
		_ = os.Remove(local)
	}

	return report, nil
}

func (s *Service) ingestOne(ctx context.Context, path string, report *Report, log *zap.Logger) {
	rec, err := s.File(ctx, path)
	switch {
	case errors.Is(err, domain.ErrUnsupportedFile):
		report.Skipped++
	case err != nil:
		report.Failed++
		report.Errors = append(report.Errors, FileError{Path: path, Err: err})
		log.Warn("ingest failed", zap.String("path", path), zap.Error(err))
	default:
		report.Indexed++
		if rec.File.Corrupt {
			report.Corrupt++
		}
	}
}
