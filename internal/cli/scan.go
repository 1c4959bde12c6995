package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/extract"
	"github.com/arcdex/arcdex/internal/repository/scanstate"
	"github.com/arcdex/arcdex/internal/schema"
)

var (
	scanOut            string
	scanResume         bool
	scanSummaryPoints  int
	scanMaxTrackPoints int
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Extract metadata records from an archive tree to JSONL",
	Long: `Scan walks a directory tree, runs the metadata extractors on every
regular file, and writes one record per line in JSON.

Without -o records go to stdout. With -o the output file is guarded by
a lock so two scans of the same target cannot interleave, and a state
sidecar (<out>.state) tracks progress; --resume continues an interrupted
scan after the last recorded path.

Example:
  arcdexctl scan /badc/eufar/data/aircraft -o eufar.jsonl
  arcdexctl scan /badc/eufar/data/aircraft -o eufar.jsonl --resume`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "output JSONL file (default: stdout)")
	scanCmd.Flags().BoolVar(&scanResume, "resume", false, "continue from the state sidecar (requires -o)")
	scanCmd.Flags().IntVar(&scanSummaryPoints, "summary-points", 30, "coordinate summary size for navigation tracks")
	scanCmd.Flags().IntVar(&scanMaxTrackPoints, "max-track-points", 0, "cap on navigation samples per file (0 = unlimited)")
	rootCmd.AddCommand(scanCmd)
}

// scanTally counts per-file outcomes of one scan run.
type scanTally struct {
	Written int
	Skipped int
	Failed  int
}

func runScan(cmd *cobra.Command, args []string) error {
	dir := filepath.Clean(args[0])
	if scanResume && scanOut == "" {
		return fmt.Errorf("--resume requires -o")
	}

	registry := extract.DefaultRegistry(scanSummaryPoints, scanMaxTrackPoints)

	if scanOut == "" {
		tally, err := scanTree(cmd.Context(), registry, dir, os.Stdout, nil, nil)
		if err != nil {
			return err
		}
		printScanSummary(tally)
		return nil
	}

	release, err := acquireScanLock(scanOut+".lock", 5*time.Second)
	if err != nil {
		return err
	}
	defer release()

	statePath := scanOut + ".state"
	var st *scanstate.State
	if scanResume {
		prev, ok, err := readScanState(statePath)
		if err != nil {
			return fmt.Errorf("cannot read scan state: %w", err)
		}
		if ok {
			if prev.Dir != dir {
				return fmt.Errorf("state sidecar %s belongs to %s, not %s", statePath, prev.Dir, dir)
			}
			st = &prev
			printOK("", fmt.Sprintf("resuming after %s (%d files seen)", prev.LastPath, prev.FilesSeen))
		}
	}
	if st == nil {
		st = &scanstate.State{Dir: dir}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if scanResume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(filepath.Clean(scanOut), flags, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open output: %w", err)
	}
	defer func() { _ = out.Close() }()

	persist := func(s scanstate.State) error { return writeScanState(statePath, s) }
	tally, scanErr := scanTree(cmd.Context(), registry, dir, out, st, persist)

	// Persist where we got to even when the walk was interrupted.
	if err := writeScanState(statePath, *st); err != nil {
		printWarn("", fmt.Sprintf("cannot write scan state: %v", err))
	}
	if scanErr != nil {
		return scanErr
	}

	printScanSummary(tally)
	printOK("", fmt.Sprintf("records written to %s", scanOut))
	return nil
}

// scanTree walks dir and writes one validated record per line to w.
// st (optional) carries resume position and is updated in place; persist
// (optional) is called periodically to checkpoint it.
func scanTree(
	ctx context.Context,
	registry *extract.Registry,
	dir string,
	w io.Writer,
	st *scanstate.State,
	persist func(scanstate.State) error,
) (scanTally, error) {
	var tally scanTally
	enc := json.NewEncoder(w)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		// Everything up to and including LastPath in WalkDir visit
		// order was already emitted by the interrupted run.
		if st != nil && st.LastPath != "" && !visitedAfter(path, st.LastPath) {
			return nil
		}

		scanOne(ctx, registry, path, enc, &tally)

		// Every visited file advances the resume position, emitted or not.
		if st != nil {
			st.LastPath = path
			st.FilesSeen++
			if persist != nil && st.FilesSeen%50 == 0 {
				if err := persist(*st); err != nil {
					return fmt.Errorf("checkpoint scan state: %w", err)
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return tally, fmt.Errorf("scan %s: %w", dir, walkErr)
	}
	return tally, nil
}

// scanOne extracts, validates, and emits a single file.
func scanOne(ctx context.Context, registry *extract.Registry, path string, enc *json.Encoder, tally *scanTally) {
	rec, err := registry.Extract(ctx, path)
	switch {
	case errors.Is(err, domain.ErrUnsupportedFile):
		tally.Skipped++
		return
	case err != nil:
		tally.Failed++
		printWarn("", fmt.Sprintf("%s: %v", path, err))
		return
	}

	if rec.File.Status == "" {
		rec.File.Status = domain.StatusArchived
	}
	rec = rec.WithID()
	if err := schema.ValidateRecord(&rec); err != nil {
		tally.Failed++
		printWarn("", fmt.Sprintf("%s: %v", path, err))
		return
	}

	if err := enc.Encode(rec); err != nil {
		tally.Failed++
		printWarn("", fmt.Sprintf("%s: write: %v", path, err))
		return
	}
	tally.Written++
}

// visitedAfter reports whether WalkDir visits path after last. WalkDir
// sorts siblings by name and descends into a directory where it meets
// it, so full paths must be compared segment by segment: "b/c" is
// visited before "b.txt" even though "b.txt" < "b/c" as raw strings
// ('.' sorts below '/').
func visitedAfter(path, last string) bool {
	a := strings.Split(path, string(filepath.Separator))
	b := strings.Split(last, string(filepath.Separator))
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}

func printScanSummary(t scanTally) {
	printOK("", fmt.Sprintf("%d records, %d skipped, %d failed", t.Written, t.Skipped, t.Failed))
}

// readScanState loads the sidecar; a missing file is not an error.
func readScanState(path string) (scanstate.State, bool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return scanstate.State{}, false, nil
	}
	if err != nil {
		return scanstate.State{}, false, err
	}
	var st scanstate.State
	if err := json.Unmarshal(data, &st); err != nil {
		return scanstate.State{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return st, true, nil
}

func writeScanState(path string, st scanstate.State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// acquireScanLock obtains the per-output scan lock.
func acquireScanLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire scan lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another scan is writing to this output (lock: %s)", lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
