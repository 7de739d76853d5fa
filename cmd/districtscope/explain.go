package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtscope/districtscope/pkg/config"
	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
	"github.com/districtscope/districtscope/pkg/surface"
)

func newExplainCmd() *cobra.Command {
	var opts explainOpts

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how one district's score was derived",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runExplain(cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.historyPath, "history", defaultHistoryPath, "Election-history document")
	cmd.Flags().StringVar(&opts.filingsPath, "filings", defaultFilingsPath, "Candidate-filings document")
	cmd.Flags().StringVar(&opts.chamber, "chamber", "", "Chamber: house or senate (required)")
	cmd.Flags().IntVar(&opts.district, "district", 0, "District number (required)")
	_ = cmd.MarkFlagRequired("chamber")
	_ = cmd.MarkFlagRequired("district")

	return cmd
}

type explainOpts struct {
	historyPath string
	filingsPath string
	chamber     string
	district    int
}

func runExplain(cfg *config.Config, opts explainOpts) error {
	chamber, ok := election.ParseChamber(opts.chamber)
	if !ok {
		return fmt.Errorf("unknown chamber %q (want house or senate)", opts.chamber)
	}
	if opts.district < 1 || opts.district > chamber.Districts() {
		return fmt.Errorf("%s district must be between 1 and %d", chamber, chamber.Districts())
	}

	engine, err := cfg.Engine(cliLogger())
	if err != nil {
		return err
	}
	history, err := election.LoadHistory(opts.historyPath)
	if err != nil {
		return err
	}
	filings, err := loadFilings(opts.filingsPath)
	if err != nil {
		return err
	}

	hist, _ := history.District(chamber, opts.district)
	fil, _ := filings.District(chamber, opts.district)
	score := engine.Score(scoring.DistrictInput{
		Chamber: chamber,
		Number:  opts.district,
		History: hist,
		Filings: fil,
		Cycles:  history.CycleYears(chamber),
	})

	r := &surface.TerminalRenderer{}
	return r.RenderDistrict(os.Stdout, chamber, score)
}
