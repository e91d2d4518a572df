// AngelaMos | 2026
// comparator.go

package benchmark

import (
	"sort"

	"github.com/angelamos/stratiq/internal/registry"
	"github.com/angelamos/stratiq/internal/scoring"
)

type Verdict string

const (
	VerdictAbove Verdict = "above"
	VerdictAt    Verdict = "at"
	VerdictBelow Verdict = "below"
)

// Comparison is one KPI measured against its industry reference.
// Benchmark raw values are pushed through the same scorer as company
// values so delta and the tolerance band live on one 0-100 scale.
type Comparison struct {
	KPIID          string  `json:"kpi_id"`
	Pillar         string  `json:"pillar"`
	CompanyScore   int     `json:"company_score"`
	BenchmarkScore int     `json:"benchmark_score"`
	Delta          int     `json:"delta"`
	Verdict        Verdict `json:"verdict"`
	External       bool    `json:"-"`
}

type Result struct {
	Industry     string       `json:"industry"`
	UsedFallback bool         `json:"used_fallback"`
	Rows         []Comparison `json:"rows"`
}

// Compare measures company scores against the industry benchmark set.
// An industry with no benchmark table degrades to the default set and
// flags the fallback instead of failing the request. KPIs with no
// benchmark value anywhere are omitted from the result.
func Compare(
	reg *registry.Registry,
	scores []scoring.ScoredKPI,
	industry string,
) Result {
	res := Result{
		Industry:     industry,
		UsedFallback: !reg.IndustryKnown(industry),
		Rows:         make([]Comparison, 0, len(scores)),
	}

	tolerance := reg.Tolerance()

	for _, s := range scores {
		def, err := reg.Lookup(s.KPIID)
		if err != nil {
			continue
		}

		raw, ok := reg.Benchmark(s.KPIID, industry)
		if !ok {
			continue
		}

		benchScore, err := scoring.Score(def, raw)
		if err != nil {
			continue
		}

		delta := s.Score - benchScore

		res.Rows = append(res.Rows, Comparison{
			KPIID:          s.KPIID,
			Pillar:         s.Pillar,
			CompanyScore:   s.Score,
			BenchmarkScore: benchScore,
			Delta:          delta,
			Verdict:        verdictFor(delta, tolerance),
			External:       def.External,
		})
	}

	sort.Slice(res.Rows, func(i, j int) bool {
		return res.Rows[i].KPIID < res.Rows[j].KPIID
	})

	return res
}

func verdictFor(delta, tolerance int) Verdict {
	if delta > tolerance {
		return VerdictAbove
	}
	if delta < -tolerance {
		return VerdictBelow
	}
	return VerdictAt
}
