package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtscope/districtscope/pkg/config"
	"github.com/districtscope/districtscope/pkg/election"
)

// loadConfig resolves the config file from --config or by searching upward
// from the working directory. Without a file it returns the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(cwd)
		}
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// loadFilings reads the filings document, treating a missing file as empty.
// Every district is then scored as an open seat with no candidates.
func loadFilings(path string) (*election.FilingsDocument, error) {
	if path == "" {
		return &election.FilingsDocument{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: %s not found, scoring without candidate filings\n", path)
		return &election.FilingsDocument{}, nil
	}
	return election.LoadFilings(path)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
