package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/extract"
	"github.com/arcdex/arcdex/internal/repository/scanstate"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []domain.Record {
	t.Helper()
	var recs []domain.Record
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec domain.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("bad JSONL line: %v", err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestScanTree_EmitsValidatedRecords(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.csv":        "1,2,3",
		"nested/b.nc":  "netcdf-ish",
		"nested/c.txt": "plain",
	})

	var buf bytes.Buffer
	registry := extract.DefaultRegistry(30, 0)
	tally, err := scanTree(context.Background(), registry, dir, &buf, nil, nil)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if tally.Written != 3 || tally.Failed != 0 {
		t.Fatalf("tally = %+v, want 3 written", tally)
	}

	recs := decodeLines(t, &buf)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	for _, rec := range recs {
		if rec.ID != domain.RecordID(rec.File.Path) {
			t.Errorf("%s: _id not derived from path", rec.File.Path)
		}
		if rec.File.Status != domain.StatusArchived {
			t.Errorf("%s: status = %q", rec.File.Path, rec.File.Status)
		}
	}
}

func TestScanTree_ResumeSkipsVisitedPaths(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.csv": "1",
		"b.csv": "2",
		"c.csv": "3",
	})

	// Pretend an earlier run stopped after b.csv.
	st := &scanstate.State{Dir: dir, LastPath: filepath.Join(dir, "b.csv"), FilesSeen: 2}

	var buf bytes.Buffer
	registry := extract.DefaultRegistry(30, 0)
	tally, err := scanTree(context.Background(), registry, dir, &buf, st, nil)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if tally.Written != 1 {
		t.Fatalf("written = %d, want 1", tally.Written)
	}

	recs := decodeLines(t, &buf)
	if len(recs) != 1 || recs[0].File.Filename != "c.csv" {
		t.Fatalf("resume emitted %+v, want only c.csv", recs)
	}
	if st.LastPath != filepath.Join(dir, "c.csv") || st.FilesSeen != 3 {
		t.Fatalf("state not advanced: %+v", st)
	}
}

func TestScanTree_ResumeAfterSubdirSibling(t *testing.T) {
	// "b/c.csv" is visited before "b.txt", but "b.txt" < "b/c.csv" as raw
	// strings ('.' sorts below '/'). A resume rule comparing full path
	// strings would skip b.txt forever after an interrupt inside b/.
	dir := writeTree(t, map[string]string{
		"a.csv":   "1",
		"b/c.csv": "2",
		"b.txt":   "3",
	})

	st := &scanstate.State{Dir: dir, LastPath: filepath.Join(dir, "b", "c.csv"), FilesSeen: 2}

	var buf bytes.Buffer
	registry := extract.DefaultRegistry(30, 0)
	tally, err := scanTree(context.Background(), registry, dir, &buf, st, nil)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if tally.Written != 1 {
		t.Fatalf("written = %d, want 1", tally.Written)
	}

	recs := decodeLines(t, &buf)
	if len(recs) != 1 || recs[0].File.Filename != "b.txt" {
		t.Fatalf("resume emitted %+v, want only b.txt", recs)
	}
}

func TestVisitedAfter(t *testing.T) {
	sep := string(filepath.Separator)
	cases := []struct {
		path, last string
		want       bool
	}{
		{"a" + sep + "b.txt", "a" + sep + "b" + sep + "c", true}, // dir sibling visited first
		{"a" + sep + "b" + sep + "c", "a" + sep + "b.txt", false},
		{"a" + sep + "b", "a" + sep + "a", true},
		{"a" + sep + "a", "a" + sep + "b", false},
		{"a" + sep + "b", "a" + sep + "b", false}, // equal: already emitted
		{"a" + sep + "b" + sep + "c", "a" + sep + "b", true},
	}
	for _, tc := range cases {
		if got := visitedAfter(tc.path, tc.last); got != tc.want {
			t.Errorf("visitedAfter(%q, %q) = %v, want %v", tc.path, tc.last, got, tc.want)
		}
	}
}

func TestScanTree_CancelledContext(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.csv": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	_, err := scanTree(ctx, extract.DefaultRegistry(30, 0), dir, &buf, nil, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestScanState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.state")

	if _, ok, err := readScanState(path); err != nil || ok {
		t.Fatalf("missing sidecar: ok=%v err=%v, want not found", ok, err)
	}

	want := scanstate.State{Dir: "/data/eufar", LastPath: "/data/eufar/b.nc", FilesSeen: 42}
	if err := writeScanState(path, want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok, err := readScanState(path)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if got.Dir != want.Dir || got.LastPath != want.LastPath || got.FilesSeen != want.FilesSeen {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt not stamped")
	}
}

func TestAcquireScanLock_Exclusive(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "out.jsonl.lock")

	release, err := acquireScanLock(lockPath, 0)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	// A second handle on the same lock file must not get the lock while
	// the first is held.
	if _, err := acquireScanLock(lockPath, 0); err == nil {
		t.Fatal("second lock acquired while first held")
	}

	release()
	release2, err := acquireScanLock(lockPath, 0)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	release2()
}
