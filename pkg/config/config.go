// Package config handles loading and managing districtscope configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/districtscope/districtscope/pkg/rules"
	"github.com/districtscope/districtscope/pkg/scoring"
)

// Config is the top-level configuration for districtscope.
type Config struct {
	Scoring  ScoringConfig  `yaml:"scoring"`
	Rules    []rules.Rule   `yaml:"rules"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ScoringConfig controls scoring behavior.
type ScoringConfig struct {
	Weights                    WeightsConfig    `yaml:"weights"`
	Thresholds                 ThresholdsConfig `yaml:"thresholds"`
	OpenSeatBonus              float64          `yaml:"open_seat_bonus"`
	OpenSeatMinCompetitiveness int              `yaml:"open_seat_min_competitiveness"`
	DefensiveFloor             float64          `yaml:"defensive_floor"`
	TrendingThreshold          float64          `yaml:"trending_threshold"`
	NameMatching               string           `yaml:"name_matching"` // substring or token
	RecomputeCompetitiveness   bool             `yaml:"recompute_competitiveness"`
}

// WeightsConfig holds the factor weights. They must sum to 1.0.
type WeightsConfig struct {
	Competitiveness float64 `yaml:"competitiveness"`
	MarginTrend     float64 `yaml:"margin_trend"`
	Incumbency      float64 `yaml:"incumbency"`
	Candidate       float64 `yaml:"candidate"`
	OpenSeat        float64 `yaml:"open_seat"`
}

// ThresholdsConfig holds the minimum scores of the score-based tiers.
type ThresholdsConfig struct {
	High     int `yaml:"high"`
	Emerging int `yaml:"emerging"`
	Build    int `yaml:"build"`
}

// StorageConfig selects where published runs are stored.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, gcs, s3
	Path      string `yaml:"path"`    // local backend root
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoint override
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// PipelineConfig controls the pipeline driver.
type PipelineConfig struct {
	Workers int `yaml:"workers"` // 0 uses the number of CPUs
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	d := scoring.Defaults()
	return &Config{
		Scoring: ScoringConfig{
			Weights: WeightsConfig{
				Competitiveness: d.Weights.Competitiveness,
				MarginTrend:     d.Weights.MarginTrend,
				Incumbency:      d.Weights.Incumbency,
				Candidate:       d.Weights.Candidate,
				OpenSeat:        d.Weights.OpenSeat,
			},
			Thresholds: ThresholdsConfig{
				High:     d.Thresholds.High,
				Emerging: d.Thresholds.Emerging,
				Build:    d.Thresholds.Build,
			},
			OpenSeatBonus:              d.OpenSeatBonus,
			OpenSeatMinCompetitiveness: d.OpenSeatMinCompetitiveness,
			DefensiveFloor:             d.DefensiveFloor,
			TrendingThreshold:          d.TrendingThreshold,
			NameMatching:               "substring",
		},
		Storage: StorageConfig{
			Backend: "local",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ScoringParams converts the scoring section into a validated scoring.Config.
func (c *Config) ScoringParams() (scoring.Config, error) {
	s := c.Scoring
	params := scoring.Config{
		Weights: scoring.Weights{
			Competitiveness: s.Weights.Competitiveness,
			MarginTrend:     s.Weights.MarginTrend,
			Incumbency:      s.Weights.Incumbency,
			Candidate:       s.Weights.Candidate,
			OpenSeat:        s.Weights.OpenSeat,
		},
		Thresholds: scoring.Thresholds{
			High:     s.Thresholds.High,
			Emerging: s.Thresholds.Emerging,
			Build:    s.Thresholds.Build,
		},
		OpenSeatBonus:              s.OpenSeatBonus,
		OpenSeatMinCompetitiveness: s.OpenSeatMinCompetitiveness,
		DefensiveFloor:             s.DefensiveFloor,
		TrendingThreshold:          s.TrendingThreshold,
	}
	if err := params.Validate(); err != nil {
		return scoring.Config{}, fmt.Errorf("scoring config: %w", err)
	}
	return params, nil
}

// Engine builds a scoring engine from the scoring and rules sections.
func (c *Config) Engine(logger *slog.Logger) (*scoring.Engine, error) {
	params, err := c.ScoringParams()
	if err != nil {
		return nil, err
	}
	matcher, err := scoring.MatcherByKey(c.Scoring.NameMatching)
	if err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}

	opts := []scoring.Option{
		scoring.WithMatcher(matcher),
		scoring.WithRecompute(c.Scoring.RecomputeCompetitiveness),
	}
	if len(c.Rules) > 0 {
		set, err := rules.Compile(c.Rules, logger)
		if err != nil {
			return nil, fmt.Errorf("compiling rules: %w", err)
		}
		opts = append(opts, scoring.WithTagger(set))
	}
	return scoring.NewEngine(params, opts...)
}

// StoragePath returns the local storage root, defaulting to RunsDir.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return RunsDir()
}

// FindConfigFile looks for .districtscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".districtscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the per-user districtscope cache directory,
// ~/.cache/districtscope.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "districtscope")
}

// RunsDir returns the default local directory for published runs.
func RunsDir() string {
	return filepath.Join(CacheDir(), "runs")
}
