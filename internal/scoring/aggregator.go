// AngelaMos | 2026
// aggregator.go

package scoring

import (
	"math"
	"sort"

	"github.com/angelamos/stratiq/internal/registry"
)

// Aggregate is the rollup of one review's scores. BHI is nil when the
// review has no scored KPIs at all; an empty assessment has no index,
// it is not a zero.
type Aggregate struct {
	PillarScores map[string]int `json:"pillar_scores"`
	BHI          *int           `json:"bhi"`
}

type pillarAccum struct {
	weighted float64
	weight   float64
}

// AggregateScores computes weighted pillar means and the overall
// Business Health Index. Pillars with no inputs are excluded from the
// BHI weighting (not treated as zero), and weights are renormalized
// across the pillars and KPIs actually answered, so an incomplete but
// valid assessment is not penalized for unanswered KPIs.
func AggregateScores(
	reg *registry.Registry,
	scores []ScoredKPI,
) Aggregate {
	accum := make(map[string]*pillarAccum)

	for _, s := range scores {
		acc, ok := accum[s.Pillar]
		if !ok {
			acc = &pillarAccum{}
			accum[s.Pillar] = acc
		}
		acc.weighted += float64(s.Score) * s.Weight
		acc.weight += s.Weight
	}

	if len(accum) == 0 {
		return Aggregate{PillarScores: map[string]int{}}
	}

	pillars := make([]string, 0, len(accum))
	for pillar := range accum {
		pillars = append(pillars, pillar)
	}
	sort.Strings(pillars)

	pillarScores := make(map[string]int, len(accum))
	var bhiWeighted, bhiWeight float64

	for _, pillar := range pillars {
		acc := accum[pillar]
		mean := clampScore(math.Round(acc.weighted / acc.weight))
		pillarScores[pillar] = mean

		w := reg.PillarWeight(pillar)
		bhiWeighted += float64(mean) * w
		bhiWeight += w
	}

	var bhi int
	if bhiWeight > 0 {
		bhi = clampScore(math.Round(bhiWeighted / bhiWeight))
	} else {
		// Pillars exist but carry zero configured weight; fall back
		// to an unweighted mean rather than dividing by zero.
		var sum float64
		for _, pillar := range pillars {
			sum += float64(pillarScores[pillar])
		}
		bhi = clampScore(math.Round(sum / float64(len(pillars))))
	}

	return Aggregate{
		PillarScores: pillarScores,
		BHI:          &bhi,
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
