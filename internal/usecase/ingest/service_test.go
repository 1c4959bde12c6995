package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arcdex/arcdex/internal/archive"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/extract"
)

// stubExtractor produces a minimal valid record for any path.
type stubExtractor struct {
	name    string
	fail    bool
	corrupt bool
}

func (e *stubExtractor) Name() string              { return e.name }
func (e *stubExtractor) Supports(path string) bool { return true }

func (e *stubExtractor) Extract(_ context.Context, path string) (domain.Record, error) {
	if e.fail {
		return domain.Record{}, errors.New("payload unreadable")
	}
	return domain.Record{
		File: domain.FileInfo{
			Filename: filepath.Base(path),
			Path:     path,
			Size:     10,
			Corrupt:  e.corrupt,
		},
	}, nil
}

// stubRegistry resolves every path to one extractor, or rejects everything.
type stubRegistry struct {
	ext       extract.Extractor
	unsupport bool
}

func (r *stubRegistry) ForPath(path string) (extract.Extractor, error) {
	if r.unsupport {
		return nil, domain.ErrUnsupportedFile
	}
	return r.ext, nil
}

// mockRecorder captures upserted records.
type mockRecorder struct {
	records []domain.Record
	fail    bool
}

func (m *mockRecorder) Upsert(_ context.Context, rec domain.Record) (bool, error) {
	if m.fail {
		return false, errors.New("store down")
	}
	m.records = append(m.records, rec)
	return true, nil
}

// mockStager serves objects from an in-memory map.
type mockStager struct {
	objects map[string][]byte
	listErr error
}

func (m *mockStager) List(_ context.Context, prefix string) ([]archive.Object, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var objs []archive.Object
	for k, v := range m.objects {
		objs = append(objs, archive.Object{Key: k, Size: int64(len(v))})
	}
	return objs, nil
}

func (m *mockStager) Stage(_ context.Context, key, destDir string) (string, error) {
	data, ok := m.objects[key]
	if !ok {
		return "", errors.New("no such object")
	}
	local := filepath.Join(destDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", err
	}
	return local, os.WriteFile(local, data, 0o644)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFile_IndexesAndDefaultsStatus(t *testing.T) {
	rec := &mockRecorder{}
	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi"}}, rec)

	got, err := svc.File(context.Background(), "/badc/eufar/f.bil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.File.Status != domain.StatusArchived {
		t.Errorf("status = %q, want archived", got.File.Status)
	}
	if got.ID != domain.RecordID("/badc/eufar/f.bil") {
		t.Errorf("id = %q", got.ID)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(rec.records))
	}
}

func TestFile_StoreFailure(t *testing.T) {
	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi"}}, &mockRecorder{fail: true})

	_, err := svc.File(context.Background(), "/f.bil")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDir_ReportsPerFileOutcomes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.bil", "sub/b.bil", "sub/deep/c.bil")

	rec := &mockRecorder{}
	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi"}}, rec)

	report, err := svc.Dir(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 3 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(rec.records) != 3 {
		t.Errorf("expected 3 records, got %d", len(rec.records))
	}
}

func TestDir_ExtractionFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.bil", "b.bil")

	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi", fail: true}}, &mockRecorder{})

	report, err := svc.Dir(context.Background(), dir)
	if err != nil {
		t.Fatalf("walk should survive per-file failures: %v", err)
	}
	if report.Failed != 2 || len(report.Errors) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestDir_UnsupportedFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.xyz")

	svc := New(&stubRegistry{unsupport: true}, &mockRecorder{})

	report, err := svc.Dir(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Skipped != 1 || report.Indexed != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestDir_CorruptCounted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.bil")

	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi", corrupt: true}}, &mockRecorder{})

	report, err := svc.Dir(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 1 || report.Corrupt != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.bil")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi"}}, &mockRecorder{})
	if _, err := svc.Dir(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestArchive_StagesAndCleansUp(t *testing.T) {
	scratch := t.TempDir()
	stager := &mockStager{objects: map[string][]byte{
		"eufar/run1/a.bil": []byte("payload"),
		"eufar/run1/b.bil": []byte("payload"),
	}}

	rec := &mockRecorder{}
	svc := New(&stubRegistry{ext: &stubExtractor{name: "envi"}}, rec).WithStager(stager)

	report, err := svc.Archive(context.Background(), "eufar/", scratch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Indexed != 2 {
		t.Errorf("report = %+v", report)
	}

	// Staged payloads are removed after indexing.
	entries, err := os.ReadDir(filepath.Join(scratch, "eufar", "run1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected scratch files removed, found %d", len(entries))
	}
}

func TestArchive_WithoutStager(t *testing.T) {
	svc := New(&stubRegistry{ext: &stubExtractor{}}, &mockRecorder{})
	if _, err := svc.Archive(context.Background(), "eufar/", t.TempDir()); err == nil {
		t.Error("expected error when archive storage is not configured")
	}
}
