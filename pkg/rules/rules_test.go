package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/scoring"
)

func facts() scoring.Facts {
	return scoring.Facts{
		Chamber:              election.House,
		District:             42,
		OpportunityScore:     64,
		CompetitivenessScore: 35,
		AvgMargin:            17,
		TrendChange:          6,
		TrendFactor:          0.6,
		ContestedRaces:       2,
		OpenSeat:             true,
		NeedsCandidate:       true,
		Tier:                 scoring.TierEmerging,
	}
}

func TestRule_Init_Success(t *testing.T) {
	env, err := NewEnv()
	require.NoError(t, err)

	r := &Rule{Name: "close", When: "avgMargin < 20.0 && contestedRaces >= 2"}
	require.NoError(t, r.Init(env))
	assert.NotNil(t, r.program)
}

func TestRule_Init_Errors(t *testing.T) {
	env, err := NewEnv()
	require.NoError(t, err)

	tests := []struct {
		name string
		rule Rule
	}{
		{"missing name", Rule{When: "openSeat"}},
		{"parse error", Rule{Name: "bad", When: "opportunityScore > "}},
		{"type mismatch", Rule{Name: "bad", When: "opportunityScore > 'high'"}},
		{"unknown variable", Rule{Name: "bad", When: "turnout > 10"}},
		{"non-bool result", Rule{Name: "bad", When: "opportunityScore + 1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.rule
			assert.Error(t, r.Init(env))
		})
	}
}

func TestRule_Eval_NotInitialized(t *testing.T) {
	r := &Rule{Name: "x", When: "openSeat"}
	_, err := r.Eval(activation(facts()))
	assert.Error(t, err)
}

func TestRuleSet_Tags(t *testing.T) {
	set, err := Compile([]Rule{
		{Name: "recruit-open", When: "openSeat && needsCandidate"},
		{Name: "house-only", When: "chamber == 'house'"},
		{Name: "high", When: "tier == 'HIGH_OPPORTUNITY'"},
		{Name: "shrinking", When: "trendChange > 5.0 && trendFactor >= 0.6"},
		{Name: "district-42", When: "district == 42"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, set.Len())

	tags := set.Tags(facts())
	assert.Equal(t, []string{"recruit-open", "house-only", "shrinking", "district-42"}, tags)
}

func TestRuleSet_TagsNoMatchIsNil(t *testing.T) {
	set, err := Compile([]Rule{{Name: "defensive", When: "defensive"}}, nil)
	require.NoError(t, err)
	assert.Nil(t, set.Tags(facts()))

	empty, err := Compile(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Tags(facts()))
}

func TestRuleSet_EvalErrorIsNoMatch(t *testing.T) {
	set, err := Compile([]Rule{
		{Name: "div-zero", When: "district / (opportunityScore - opportunityScore) > 0"},
		{Name: "open", When: "openSeat"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"open"}, set.Tags(facts()))
}

func TestCompile_DuplicateName(t *testing.T) {
	_, err := Compile([]Rule{
		{Name: "a", When: "openSeat"},
		{Name: "a", When: "hasDemocrat"},
	}, nil)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
- name: recruit-open
  when: openSeat && !hasDemocrat
- name: swing
  when: hasSwung
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadFromFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"recruit-open"}, set.Tags(facts()))
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestRuleSet_ImplementsTagger(t *testing.T) {
	set, err := Compile([]Rule{{Name: "open", When: "openSeat"}}, nil)
	require.NoError(t, err)

	engine, err := scoring.NewEngine(scoring.Defaults(), scoring.WithTagger(set))
	require.NoError(t, err)

	got := engine.Score(scoring.DistrictInput{Chamber: election.Senate, Number: 1})
	assert.Equal(t, []string{"open"}, got.Tags)
}
