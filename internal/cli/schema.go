package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the record schema document",
	Long: `Schema prints the JSON schema for metadata records — the same
document the API serves at /v1/schema.`,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(_ *cobra.Command, _ []string) error {
	_, err := os.Stdout.Write(schema.Document)
	return err
}
