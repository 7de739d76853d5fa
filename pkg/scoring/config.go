package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Weights holds the factor weights of the opportunity score. They must be
// non-negative and sum to 1.0.
type Weights struct {
	Competitiveness float64
	MarginTrend     float64
	Incumbency      float64
	Candidate       float64
	OpenSeat        float64
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Competitiveness + w.MarginTrend + w.Incumbency + w.Candidate + w.OpenSeat
}

// Thresholds are the minimum final scores for the score-based tiers.
type Thresholds struct {
	High     int
	Emerging int
	Build    int
}

// Config is the complete, immutable parameter set of the scoring core.
// It is passed and stored by value.
type Config struct {
	Weights    Weights
	Thresholds Thresholds

	// Open-seat override: seats whose raw competitiveness score exceeds
	// OpenSeatMinCompetitiveness gain OpenSeatBonus points, capped at 100.
	OpenSeatBonus              float64
	OpenSeatMinCompetitiveness int

	// Scores for districts held by a Democratic incumbent never drop below this.
	DefensiveFloor float64

	// Reported trend changes above this many points set flags.trendingDem.
	TrendingThreshold float64
}

// Defaults returns the default scoring configuration.
func Defaults() Config {
	return Config{
		Weights: Weights{
			Competitiveness: 0.40,
			MarginTrend:     0.25,
			Incumbency:      0.15,
			Candidate:       0.10,
			OpenSeat:        0.10,
		},
		Thresholds: Thresholds{
			High:     70,
			Emerging: 50,
			Build:    30,
		},
		OpenSeatBonus:              10,
		OpenSeatMinCompetitiveness: 30,
		DefensiveFloor:             60,
		TrendingThreshold:          2,
	}
}

const weightTolerance = 1e-6

// Validate checks that weights are usable and thresholds are descending.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"competitiveness": w.Competitiveness,
		"margin_trend":    w.MarginTrend,
		"incumbency":      w.Incumbency,
		"candidate":       w.Candidate,
		"open_seat":       w.OpenSeat,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s: must not be negative, got %g", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %g", sum)
	}

	t := c.Thresholds
	if !(t.High >= t.Emerging && t.Emerging >= t.Build && t.Build >= 0 && t.High <= 100) {
		return fmt.Errorf("thresholds must satisfy 100 >= high >= emerging >= build >= 0, got %d/%d/%d",
			t.High, t.Emerging, t.Build)
	}
	if c.DefensiveFloor < 0 || c.DefensiveFloor > 100 {
		return errors.New("defensive floor must be within [0, 100]")
	}
	if c.OpenSeatBonus < 0 {
		return errors.New("open seat bonus must not be negative")
	}
	return nil
}
