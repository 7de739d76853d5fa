// Package main provides the districtscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "districtscope",
		Short: "Legislative district opportunity scoring",
		Long: `Districtscope turns election history and candidate filings into a
per-district opportunity score, tier and recommendation for every
House and Senate district.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: .districtscope/config.yaml in a parent directory)")

	rootCmd.AddCommand(
		newScoreCmd(),
		newImportCmd(),
		newExplainCmd(),
	)
	return rootCmd
}
