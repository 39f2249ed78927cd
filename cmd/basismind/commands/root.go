package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "basismind",
	Short: "BasisMind - grain market decision engine",
	Long: `BasisMind Unified CLI

Decision support for physical grain trading and futures hedging.
Ingests origin market data, scores market strength and produces daily
position recommendations.

Usage:
  go run ./cmd/basismind [command]

Examples:
  go run ./cmd/basismind api
  go run ./cmd/basismind decide --date 2026-04-15
  go run ./cmd/basismind ingest --date 2026-04-15
  go run ./cmd/basismind seed --scenario crisis --days 90`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
