// AngelaMos | 2026
// scorer.go

package scoring

import (
	"fmt"
	"math"

	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/registry"
)

// ScoredKPI is one scored measurement, ready to persist as a scores row.
type ScoredKPI struct {
	KPIID    string
	Pillar   string
	RawValue float64
	Score    int
	Weight   float64
	External bool
}

// Score maps a raw KPI value onto [0,100] by linear interpolation
// between the definition's poor (0) and excellent (100) thresholds,
// clipped at both ends. Direction is encoded in the threshold ordering
// which the registry validates against the declared direction, so one
// formula covers higher-is-better and lower-is-better KPIs.
func Score(def registry.Definition, rawValue float64) (int, error) {
	if math.IsNaN(rawValue) || math.IsInf(rawValue, 0) {
		return 0, fmt.Errorf("kpi %q: %w", def.ID, core.ErrMissingInput)
	}

	frac := (rawValue - def.Poor) / (def.Excellent - def.Poor)

	if frac <= 0 {
		return 0, nil
	}
	if frac >= 1 {
		return 100, nil
	}

	return int(math.Round(frac * 100)), nil
}

// ScoreKPI resolves the definition and scores the value in one step.
func ScoreKPI(
	reg *registry.Registry,
	kpiID string,
	rawValue float64,
) (ScoredKPI, error) {
	def, err := reg.Lookup(kpiID)
	if err != nil {
		return ScoredKPI{}, err
	}

	score, err := Score(def, rawValue)
	if err != nil {
		return ScoredKPI{}, err
	}

	return ScoredKPI{
		KPIID:    def.ID,
		Pillar:   def.Pillar,
		RawValue: rawValue,
		Score:    score,
		Weight:   def.Weight,
		External: def.External,
	}, nil
}
