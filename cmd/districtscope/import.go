package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/importer"
)

func newImportCmd() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build an election-history document from results CSV exports",
		Long: `Reads county-level general election results exported as CSV (one file
per chamber), totals votes per district and year, and writes the
election-history document consumed by "districtscope score".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts)
		},
	}

	cmd.Flags().StringVar(&opts.housePath, "house", "", "House results CSV")
	cmd.Flags().StringVar(&opts.senatePath, "senate", "", "Senate results CSV")
	cmd.Flags().StringVar(&opts.output, "output", defaultHistoryPath, "Output path for the election-history document")
	cmd.Flags().StringVar(&opts.source, "source", importer.DefaultSource, "Source recorded in the document")
	cmd.Flags().IntSliceVar(&opts.years, "years", importer.DefaultYears, "Election cycles to import; rows from other years are ignored")

	return cmd
}

type importOpts struct {
	housePath  string
	senatePath string
	output     string
	source     string
	years      []int
}

func runImport(opts importOpts) error {
	if opts.housePath == "" && opts.senatePath == "" {
		return fmt.Errorf("at least one of --house or --senate is required")
	}

	house, closeHouse, err := openOptional(opts.housePath)
	if err != nil {
		return err
	}
	defer closeHouse()
	senate, closeSenate, err := openOptional(opts.senatePath)
	if err != nil {
		return err
	}
	defer closeSenate()

	doc, err := importer.Import(house, senate, importer.Options{
		Source: opts.source,
		Years:  opts.years,
	})
	if err != nil {
		return err
	}

	if err := election.SaveHistory(opts.output, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved %s\n", opts.output)

	for _, s := range importer.Stats(doc) {
		fmt.Fprintf(os.Stderr, "%s: %d districts, %d competitive, %d swing, %d Democratic, %d Republican\n",
			s.Chamber, s.Districts, s.Competitive, s.Swing, s.DemDominant, s.RepDominant)
	}
	return nil
}

// openOptional opens path for reading. An empty path yields a nil reader.
func openOptional(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening results: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
