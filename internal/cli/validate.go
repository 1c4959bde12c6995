package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json|file.jsonl> ...",
	Short: "Validate record documents against the contract",
	Long: `Validate checks record JSON documents for contract violations:
required file fields, bbox/hull axis order and envelope agreement,
temporal ordering, and parameter shape.

A .jsonl argument is checked line by line; anything else is read as a
single document. Exits non-zero if any document fails.

Example:
  arcdexctl validate record.json
  arcdexctl validate eufar.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		if strings.EqualFold(filepath.Ext(path), ".jsonl") {
			failed += validateLines(path)
			continue
		}
		failed += validateFile(path)
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}

func validateFile(path string) int {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		printErr(path, err.Error())
		return 1
	}
	if _, err := schema.ValidateJSON(data); err != nil {
		printErr(path, err.Error())
		return 1
	}
	printOK(path, "valid")
	return 0
}

func validateLines(path string) int {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		printErr(path, err.Error())
		return 1
	}
	defer func() { _ = f.Close() }()

	failed := 0
	checked := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		checked++
		if _, err := schema.ValidateJSON([]byte(text)); err != nil {
			printErr(path, fmt.Sprintf("line %d: %v", line, err))
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		printErr(path, err.Error())
		return failed + 1
	}
	if failed == 0 {
		printOK(path, fmt.Sprintf("%d record(s) valid", checked))
	}
	return failed
}
