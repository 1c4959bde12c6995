package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show arcdexctl version and build information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Commit:     %s\n", version.Commit)
	fmt.Printf("Build Date: %s\n", version.Date)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
