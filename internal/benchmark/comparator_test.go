// AngelaMos | 2026
// comparator_test.go

package benchmark

import (
	"testing"

	"github.com/angelamos/stratiq/internal/registry"
	"github.com/angelamos/stratiq/internal/scoring"
)

func testRegistry(t *testing.T, tolerance int) *registry.Registry {
	t.Helper()

	reg, err := registry.New(
		[]registry.Definition{
			{
				ID:        "revenue_growth",
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0,
				Excellent: 20,
				Weight:    1,
				Benchmarks: map[string]float64{
					"default": 10, // scores 50
					"saas":    16, // scores 80
				},
			},
			{
				ID:        "market_growth",
				Pillar:    "market",
				Direction: registry.HigherBetter,
				Poor:      0,
				Excellent: 10,
				Weight:    1,
				External:  true,
				Benchmarks: map[string]float64{
					"default": 5, // scores 50
				},
			},
			{
				ID:        "no_benchmark_kpi",
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0,
				Excellent: 10,
				Weight:    1,
			},
		},
		map[string]float64{"financial": 0.7, "market": 0.3},
		tolerance,
	)
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	return reg
}

func TestCompareDeltaAndVerdicts(t *testing.T) {
	reg := testRegistry(t, 2)

	scores := []scoring.ScoredKPI{
		{KPIID: "revenue_growth", Pillar: "financial", Score: 80},
		{KPIID: "market_growth", Pillar: "market", Score: 20},
	}

	res := Compare(reg, scores, "saas")

	if res.UsedFallback {
		t.Fatal("saas has benchmarks, fallback should not trigger")
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}

	// Rows come back kpi_id sorted.
	mg, rg := res.Rows[0], res.Rows[1]
	if mg.KPIID != "market_growth" || rg.KPIID != "revenue_growth" {
		t.Fatalf("rows not sorted: %s, %s", mg.KPIID, rg.KPIID)
	}

	// revenue_growth: company 80 vs saas benchmark 16 -> 80. Delta 0.
	if rg.BenchmarkScore != 80 || rg.Delta != 0 || rg.Verdict != VerdictAt {
		t.Fatalf(
			"revenue_growth = {bench %d, delta %d, %s}, want {80, 0, at}",
			rg.BenchmarkScore, rg.Delta, rg.Verdict,
		)
	}

	// market_growth: saas has no table, falls to default 5 -> 50.
	// Company 20, delta -30.
	if mg.BenchmarkScore != 50 || mg.Delta != -30 {
		t.Fatalf(
			"market_growth = {bench %d, delta %d}, want {50, -30}",
			mg.BenchmarkScore, mg.Delta,
		)
	}
	if mg.Verdict != VerdictBelow {
		t.Fatalf("market_growth verdict = %s, want below", mg.Verdict)
	}
	if !mg.External {
		t.Fatal("market_growth should carry the external flag")
	}
}

func TestCompareToleranceBand(t *testing.T) {
	reg := testRegistry(t, 2)

	// Benchmark for revenue_growth/default scores 50.
	tests := []struct {
		company int
		want    Verdict
	}{
		{53, VerdictAbove},
		{52, VerdictAt},
		{50, VerdictAt},
		{48, VerdictAt},
		{47, VerdictBelow},
	}

	for _, tt := range tests {
		res := Compare(reg, []scoring.ScoredKPI{
			{KPIID: "revenue_growth", Pillar: "financial", Score: tt.company},
		}, "retail")

		if len(res.Rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(res.Rows))
		}
		if res.Rows[0].Verdict != tt.want {
			t.Fatalf(
				"company %d verdict = %s, want %s",
				tt.company, res.Rows[0].Verdict, tt.want,
			)
		}
	}
}

func TestCompareUnknownIndustryFallsBack(t *testing.T) {
	reg := testRegistry(t, 2)

	res := Compare(reg, []scoring.ScoredKPI{
		{KPIID: "revenue_growth", Pillar: "financial", Score: 90},
	}, "mining")

	if !res.UsedFallback {
		t.Fatal("unknown industry should flag the fallback")
	}
	if len(res.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(res.Rows))
	}
	if res.Rows[0].BenchmarkScore != 50 {
		t.Fatalf(
			"benchmark score = %d, want 50 from the default set",
			res.Rows[0].BenchmarkScore,
		)
	}
}

func TestCompareSkipsKPIsWithoutBenchmarks(t *testing.T) {
	reg := testRegistry(t, 2)

	res := Compare(reg, []scoring.ScoredKPI{
		{KPIID: "no_benchmark_kpi", Pillar: "financial", Score: 60},
		{KPIID: "stale_kpi_not_in_registry", Pillar: "financial", Score: 60},
	}, "saas")

	if len(res.Rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(res.Rows))
	}
}
