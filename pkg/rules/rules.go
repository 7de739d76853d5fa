// Package rules evaluates user-defined CEL expressions against scored
// districts and turns the matching rule names into tags.
package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/districtscope/districtscope/pkg/scoring"
)

// Rule tags a district with Name when the When expression evaluates to true.
type Rule struct {
	// Name is the tag attached to matching districts.
	Name string `yaml:"name"`
	// When is a CEL expression over district facts. Must return a bool.
	When string `yaml:"when"`

	program cel.Program
}

// NewEnv returns the CEL environment rule expressions are checked against.
func NewEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("chamber", cel.StringType),
		cel.Variable("district", cel.IntType),
		cel.Variable("opportunityScore", cel.IntType),
		cel.Variable("competitivenessScore", cel.IntType),
		cel.Variable("avgMargin", cel.DoubleType),
		cel.Variable("trendChange", cel.DoubleType),
		cel.Variable("trendFactor", cel.DoubleType),
		cel.Variable("contestedRaces", cel.IntType),
		cel.Variable("hasSwung", cel.BoolType),
		cel.Variable("openSeat", cel.BoolType),
		cel.Variable("hasDemocrat", cel.BoolType),
		cel.Variable("defensive", cel.BoolType),
		cel.Variable("needsCandidate", cel.BoolType),
		cel.Variable("tier", cel.StringType),
	)
}

// Init compiles When into a program using env. Parse, type-check and
// non-boolean results are reported as errors.
func (r *Rule) Init(env *cel.Env) error {
	if r.Name == "" {
		return errors.New("rule has no name")
	}

	ast, iss := env.Parse(r.When)
	if iss.Err() != nil {
		return fmt.Errorf("rule %q: %w", r.Name, iss.Err())
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return fmt.Errorf("rule %q: %w", r.Name, iss.Err())
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("rule %q: expression must return bool, got %s", r.Name, checked.OutputType())
	}

	var err error
	r.program, err = env.Program(checked)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return nil
}

// Eval reports whether the rule matches the given activation.
func (r *Rule) Eval(vars map[string]any) (bool, error) {
	if r.program == nil {
		return false, fmt.Errorf("rule %q: not initialized", r.Name)
	}
	out, _, err := r.program.Eval(vars)
	if err != nil {
		return false, err
	}
	matched, ok := out.Value().(bool)
	return ok && matched, nil
}

// RuleSet is a compiled list of rules. It implements scoring.Tagger and is
// safe for concurrent use once built.
type RuleSet struct {
	rules  []Rule
	logger *slog.Logger
}

// Compile initializes every rule against a fresh environment.
func Compile(rules []Rule, logger *slog.Logger) (*RuleSet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	env, err := NewEnv()
	if err != nil {
		return nil, fmt.Errorf("creating rule environment: %w", err)
	}

	seen := make(map[string]bool, len(rules))
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
		if err := r.Init(env); err != nil {
			return nil, err
		}
		compiled[i] = r
	}
	return &RuleSet{rules: compiled, logger: logger}, nil
}

// LoadFromFile reads a YAML list of rules and compiles it.
func LoadFromFile(path string, logger *slog.Logger) (*RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return Compile(rules, logger)
}

// Len returns the number of compiled rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Tags returns the names of the rules matching f, in rule order. Evaluation
// errors are logged and treated as no match.
func (s *RuleSet) Tags(f scoring.Facts) []string {
	if len(s.rules) == 0 {
		return nil
	}
	vars := activation(f)

	var tags []string
	for i := range s.rules {
		r := &s.rules[i]
		ok, err := r.Eval(vars)
		if err != nil {
			s.logger.Warn("rule evaluation failed",
				"rule", r.Name,
				"chamber", f.Chamber,
				"district", f.District,
				"error", err)
			continue
		}
		if ok {
			tags = append(tags, r.Name)
		}
	}
	return tags
}

func activation(f scoring.Facts) map[string]any {
	return map[string]any{
		"chamber":              string(f.Chamber),
		"district":             int64(f.District),
		"opportunityScore":     int64(f.OpportunityScore),
		"competitivenessScore": int64(f.CompetitivenessScore),
		"avgMargin":            f.AvgMargin,
		"trendChange":          f.TrendChange,
		"trendFactor":          f.TrendFactor,
		"contestedRaces":       int64(f.ContestedRaces),
		"hasSwung":             f.HasSwung,
		"openSeat":             f.OpenSeat,
		"hasDemocrat":          f.HasDemocrat,
		"defensive":            f.Defensive,
		"needsCandidate":       f.NeedsCandidate,
		"tier":                 string(f.Tier),
	}
}
