package surface_test

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/districtscope/districtscope/pkg/election"
	"github.com/districtscope/districtscope/pkg/pipeline"
	"github.com/districtscope/districtscope/pkg/scoring"
	"github.com/districtscope/districtscope/pkg/surface"
)

func sampleDocument() *pipeline.Document {
	return &pipeline.Document{
		LastUpdated: "2026-03-01T17:30:45.123456Z",
		House: pipeline.DistrictScores{
			"17": {
				DistrictNumber:   17,
				OpportunityScore: 64,
				Tier:             scoring.TierEmerging,
				TierLabel:        "Emerging",
				Factors: scoring.Factors{
					Competitiveness: 0.35,
					MarginTrend:     0.6,
					Incumbency:      1,
					OpenSeatBonus:   true,
				},
				Metrics: scoring.Metrics{
					AvgMargin:            17,
					TrendChange:          6,
					CompetitivenessScore: 35,
					TrendWindow:          &scoring.TrendWindow{FromYear: 2020, ToYear: 2024, Elections: 2, Sparse: true},
				},
				Flags:          scoring.Flags{NeedsCandidate: true, OpenSeat: true, TrendingDem: true},
				Recommendation: scoring.RecRecruitTarget,
				Tags:           []string{"recruit-open"},
			},
			"4": {
				DistrictNumber:   4,
				OpportunityScore: 12,
				Tier:             scoring.TierNonCompetitive,
				TierLabel:        "Non-Competitive",
				Recommendation:   scoring.RecLowPriority,
			},
		},
		Senate: pipeline.DistrictScores{
			"3": {
				DistrictNumber:   3,
				OpportunityScore: 60,
				Tier:             scoring.TierDefensive,
				TierLabel:        "Defensive",
				Flags:            scoring.Flags{Defensive: true, HasDemocrat: true},
				Recommendation:   scoring.RecProtectSeat,
			},
		},
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleDocument()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Opportunity Report",
		"2026-03-01T17:30:45.123456Z",
		"House (2 districts)",
		"Senate (1 districts)",
		"Needs candidate",
		scoring.RecRecruitTarget,
		scoring.RecProtectSeat,
		"tags: recruit-open",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}

	// ranked by score, so district 17 is listed before district 4
	if strings.Index(output, scoring.RecRecruitTarget) > strings.Index(output, scoring.RecLowPriority) {
		t.Error("expected districts ranked by score")
	}
}

func TestTerminalRenderer_TopLimit(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{Top: 1}
	var buf bytes.Buffer
	if err := r.Render(&buf, sampleDocument()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(buf.String(), scoring.RecLowPriority) {
		t.Error("expected only the top district per chamber")
	}
}

func TestTerminalRenderer_RenderDistrict(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer
	s := sampleDocument().House["17"]
	if err := r.RenderDistrict(&buf, election.House, s); err != nil {
		t.Fatalf("RenderDistrict() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"House District 17: Emerging, score 64",
		"Competitiveness     0.35",
		"Trend change           +6.0",
		"2020-2024 (2 elections) sparse",
		"needs candidate, open seat, trending Democratic",
		"Tags:  recruit-open",
		"Priority candidate recruitment target",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleDocument()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestMarkdownRenderer(t *testing.T) {
	r := &surface.MarkdownRenderer{}
	md := r.BuildMarkdown(sampleDocument())

	for _, want := range []string{
		"## Districtscope Opportunity Report",
		"### House",
		"### Senate",
		"| :yellow_circle: Emerging | 1 |",
		"| :blue_circle: Defensive | 1 |",
		"| 17 | 64 | Emerging | Priority candidate recruitment target (recruit-open) |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleDocument()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["lastUpdated"] != "2026-03-01T17:30:45.123456Z" {
		t.Errorf("lastUpdated = %v", decoded["lastUpdated"])
	}
	house := decoded["house"].(map[string]any)
	d17 := house["17"].(map[string]any)
	if d17["tier"] != "EMERGING" || d17["opportunityScore"] != float64(64) {
		t.Errorf("unexpected district 17: %v", d17)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "text", "markdown", "MD", ""} {
		if _, err := surface.ForFormat(name, 5); err != nil {
			t.Errorf("ForFormat(%q): %v", name, err)
		}
	}
	if _, err := surface.ForFormat("xml", 5); err == nil {
		t.Error("expected error for unknown format")
	}
}
