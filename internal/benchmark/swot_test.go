// AngelaMos | 2026
// swot_test.go

package benchmark

import (
	"testing"
)

func TestDeriveSWOTBuckets(t *testing.T) {
	rows := []Comparison{
		{KPIID: "ebitda_margin", Verdict: VerdictAbove},
		{KPIID: "debt_ratio", Verdict: VerdictBelow},
		{KPIID: "market_growth", Verdict: VerdictAbove, External: true},
		{KPIID: "competitive_pressure", Verdict: VerdictBelow, External: true},
		{KPIID: "net_margin", Verdict: VerdictAt},
	}

	swot := DeriveSWOT(rows, TrendFlat)

	if len(swot.Strengths) != 1 || swot.Strengths[0].KPIID != "ebitda_margin" {
		t.Fatalf("strengths = %+v, want ebitda_margin only", swot.Strengths)
	}
	if len(swot.Weaknesses) != 1 || swot.Weaknesses[0].KPIID != "debt_ratio" {
		t.Fatalf("weaknesses = %+v, want debt_ratio only", swot.Weaknesses)
	}
	if len(swot.Opportunities) != 1 ||
		swot.Opportunities[0].KPIID != "market_growth" {
		t.Fatalf(
			"opportunities = %+v, want market_growth only",
			swot.Opportunities,
		)
	}
	if len(swot.Threats) != 1 ||
		swot.Threats[0].KPIID != "competitive_pressure" {
		t.Fatalf("threats = %+v, want competitive_pressure only", swot.Threats)
	}
}

func TestDeriveSWOTTrendBreaksAtVerdict(t *testing.T) {
	rows := []Comparison{{KPIID: "net_margin", Verdict: VerdictAt}}

	improving := DeriveSWOT(rows, TrendImproving)
	if len(improving.Strengths) != 1 {
		t.Fatalf(
			"at-benchmark with improving trend should be a strength, got %+v",
			improving,
		)
	}

	declining := DeriveSWOT(rows, TrendDeclining)
	if len(declining.Weaknesses) != 1 {
		t.Fatalf(
			"at-benchmark with declining trend should be a weakness, got %+v",
			declining,
		)
	}

	flat := DeriveSWOT(rows, TrendFlat)
	if len(flat.Facts()) != 0 {
		t.Fatalf(
			"at-benchmark with flat trend should produce no facts, got %+v",
			flat.Facts(),
		)
	}

	unknown := DeriveSWOT(rows, TrendUnknown)
	if len(unknown.Facts()) != 0 {
		t.Fatalf(
			"at-benchmark with unknown trend should produce no facts, got %+v",
			unknown.Facts(),
		)
	}
}

func TestDeriveSWOTExternalAtBenchmark(t *testing.T) {
	rows := []Comparison{
		{KPIID: "market_growth", Verdict: VerdictAt, External: true},
	}

	improving := DeriveSWOT(rows, TrendImproving)
	if len(improving.Opportunities) != 1 {
		t.Fatalf(
			"external at-benchmark with improving trend should be an opportunity, got %+v",
			improving,
		)
	}

	declining := DeriveSWOT(rows, TrendDeclining)
	if len(declining.Threats) != 1 {
		t.Fatalf(
			"external at-benchmark with declining trend should be a threat, got %+v",
			declining,
		)
	}
}

func TestSWOTFactsFlattens(t *testing.T) {
	swot := SWOT{
		Strengths:     []Fact{{KPIID: "a", Bucket: BucketStrength}},
		Weaknesses:    []Fact{{KPIID: "b", Bucket: BucketWeakness}},
		Opportunities: []Fact{{KPIID: "c", Bucket: BucketOpportunity}},
		Threats:       []Fact{{KPIID: "d", Bucket: BucketThreat}},
	}

	facts := swot.Facts()
	if len(facts) != 4 {
		t.Fatalf("got %d facts, want 4", len(facts))
	}
	want := []string{"a", "b", "c", "d"}
	for i, fact := range facts {
		if fact.KPIID != want[i] {
			t.Fatalf("facts[%d] = %s, want %s", i, fact.KPIID, want[i])
		}
	}
}
