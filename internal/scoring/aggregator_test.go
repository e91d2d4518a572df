// AngelaMos | 2026
// aggregator_test.go

package scoring

import (
	"testing"
)

func TestAggregateEmptyHasNoBHI(t *testing.T) {
	reg := testRegistry(t)

	agg := AggregateScores(reg, nil)

	if agg.BHI != nil {
		t.Fatalf("BHI = %v, want nil for empty review", *agg.BHI)
	}
	if len(agg.PillarScores) != 0 {
		t.Fatalf("pillar scores = %v, want empty", agg.PillarScores)
	}
}

func TestAggregateSinglePillarRenormalizes(t *testing.T) {
	reg := testRegistry(t)

	// Only the financial pillar answered: BHI must equal the pillar
	// score rather than being dragged down by unanswered pillars.
	agg := AggregateScores(reg, []ScoredKPI{
		{KPIID: "revenue_growth", Pillar: "financial", Score: 70, Weight: 1},
	})

	if agg.PillarScores["financial"] != 70 {
		t.Fatalf(
			"financial pillar = %d, want 70",
			agg.PillarScores["financial"],
		)
	}
	if agg.BHI == nil || *agg.BHI != 70 {
		t.Fatalf("BHI = %v, want 70", agg.BHI)
	}
}

func TestAggregateWeightedPillarMean(t *testing.T) {
	reg := testRegistry(t)

	// Within a pillar the mean is KPI-weight weighted:
	// (80*2 + 20*1) / 3 = 60.
	agg := AggregateScores(reg, []ScoredKPI{
		{KPIID: "a", Pillar: "financial", Score: 80, Weight: 2},
		{KPIID: "b", Pillar: "financial", Score: 20, Weight: 1},
	})

	if agg.PillarScores["financial"] != 60 {
		t.Fatalf(
			"financial pillar = %d, want 60",
			agg.PillarScores["financial"],
		)
	}
}

func TestAggregateCrossPillarWeighting(t *testing.T) {
	reg := testRegistry(t)

	// financial weight 0.6, operational weight 0.4:
	// (100*0.6 + 50*0.4) / 1.0 = 80.
	agg := AggregateScores(reg, []ScoredKPI{
		{KPIID: "revenue_growth", Pillar: "financial", Score: 100, Weight: 1},
		{KPIID: "customer_retention", Pillar: "operational", Score: 50, Weight: 1},
	})

	if agg.BHI == nil || *agg.BHI != 80 {
		t.Fatalf("BHI = %v, want 80", agg.BHI)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	reg := testRegistry(t)

	scores := []ScoredKPI{
		{KPIID: "a", Pillar: "financial", Score: 90, Weight: 1},
		{KPIID: "b", Pillar: "operational", Score: 40, Weight: 2},
		{KPIID: "c", Pillar: "financial", Score: 30, Weight: 1},
	}
	reversed := []ScoredKPI{scores[2], scores[1], scores[0]}

	first := AggregateScores(reg, scores)
	second := AggregateScores(reg, reversed)

	if *first.BHI != *second.BHI {
		t.Fatalf(
			"BHI differs with input order: %d vs %d",
			*first.BHI,
			*second.BHI,
		)
	}
	for pillar, score := range first.PillarScores {
		if second.PillarScores[pillar] != score {
			t.Fatalf(
				"pillar %s differs with input order: %d vs %d",
				pillar,
				score,
				second.PillarScores[pillar],
			)
		}
	}
}
