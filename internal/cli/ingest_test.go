package cli

import (
	"io"
	"os"
	"strings"
	"testing"

	ingestuc "github.com/arcdex/arcdex/internal/usecase/ingest"
)

// captureStdout runs fn with os.Stdout redirected to a pipe.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPrintIngestReport(t *testing.T) {
	out := captureStdout(t, func() {
		printIngestReport(ingestuc.Report{Indexed: 5, Corrupt: 1, Skipped: 2})
	})
	if !strings.Contains(out, "5 indexed (1 corrupt)") {
		t.Errorf("missing indexed line:\n%s", out)
	}
	if !strings.Contains(out, "2 unsupported file(s) skipped") {
		t.Errorf("missing skipped line:\n%s", out)
	}
}

func TestPrintIngestReport_NoSkipLineWhenNoneSkipped(t *testing.T) {
	out := captureStdout(t, func() {
		printIngestReport(ingestuc.Report{Indexed: 3})
	})
	if strings.Contains(out, "skipped") {
		t.Errorf("unexpected skipped line:\n%s", out)
	}
}
