// Package cli implements the arcdexctl command set.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "arcdexctl",
	Short:        "arcdexctl — archive metadata index toolbox",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `arcdexctl extracts metadata records from archived flight data,
validates them against the record contract, and loads them into the
arcdex index.

Configuration is read from config/<ENV>.yaml (ENV defaults to "local");
a .env file in the working directory is loaded first.`,
}

// Execute is called by main.go.
func Execute() {
	// .env first so ${VAR} substitution in the YAML config sees it.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment-selected YAML config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		return config.Config{}, fmt.Errorf("cannot load config: %w\nSet ENV or provide config/local.yaml.", err)
	}
	return cfg, nil
}
