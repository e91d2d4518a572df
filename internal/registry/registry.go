// AngelaMos | 2026
// registry.go

package registry

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/angelamos/stratiq/internal/core"
)

type Direction string

const (
	HigherBetter Direction = "higher_better"
	LowerBetter  Direction = "lower_better"
)

// DefaultIndustry is the generic benchmark set used when a review's
// industry has no benchmark table of its own.
const DefaultIndustry = "default"

// Definition is one registered KPI. Poor and Excellent bound the
// piecewise-linear scoring band; External marks environment-facing
// KPIs that feed the Opportunity/Threat side of SWOT.
type Definition struct {
	ID         string             `koanf:"id"`
	Pillar     string             `koanf:"pillar"`
	Direction  Direction          `koanf:"direction"`
	Poor       float64            `koanf:"poor"`
	Excellent  float64            `koanf:"excellent"`
	Weight     float64            `koanf:"weight"`
	External   bool               `koanf:"external"`
	Benchmarks map[string]float64 `koanf:"benchmarks"`
}

// Registry is the immutable KPI catalog loaded once at process start
// and shared read-only across requests.
type Registry struct {
	defs          map[string]Definition
	order         []string
	pillarWeights map[string]float64
	tolerance     int
	industries    map[string]struct{}
}

type registryFile struct {
	PillarWeights map[string]float64 `koanf:"pillar_weights"`
	KPIs          []Definition       `koanf:"kpis"`
}

func Load(path string, tolerance int) (*Registry, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load kpi registry %s: %w", path, err)
	}

	var raw registryFile
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("unmarshal kpi registry: %w", err)
	}

	return New(raw.KPIs, raw.PillarWeights, tolerance)
}

func New(
	defs []Definition,
	pillarWeights map[string]float64,
	tolerance int,
) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("kpi registry: no definitions")
	}

	r := &Registry{
		defs:          make(map[string]Definition, len(defs)),
		order:         make([]string, 0, len(defs)),
		pillarWeights: pillarWeights,
		tolerance:     tolerance,
		industries:    make(map[string]struct{}),
	}

	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("kpi %q: %w", def.ID, err)
		}

		if _, exists := r.defs[def.ID]; exists {
			return nil, fmt.Errorf("kpi %q: duplicate definition", def.ID)
		}

		if _, ok := pillarWeights[def.Pillar]; !ok {
			return nil, fmt.Errorf(
				"kpi %q: pillar %q has no weight",
				def.ID,
				def.Pillar,
			)
		}

		r.defs[def.ID] = def
		r.order = append(r.order, def.ID)

		for industry := range def.Benchmarks {
			r.industries[industry] = struct{}{}
		}
	}

	sort.Strings(r.order)

	return r, nil
}

func validateDefinition(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("missing id")
	}
	if def.Pillar == "" {
		return fmt.Errorf("missing pillar")
	}
	if def.Direction != HigherBetter && def.Direction != LowerBetter {
		return fmt.Errorf("invalid direction %q", def.Direction)
	}
	if def.Direction == HigherBetter && def.Excellent <= def.Poor {
		return fmt.Errorf("higher_better requires excellent > poor")
	}
	if def.Direction == LowerBetter && def.Excellent >= def.Poor {
		return fmt.Errorf("lower_better requires excellent < poor")
	}
	if def.Weight <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	return nil
}

// Lookup returns the definition for kpiID or core.ErrUnknownKPI.
func (r *Registry) Lookup(kpiID string) (Definition, error) {
	def, ok := r.defs[kpiID]
	if !ok {
		return Definition{}, fmt.Errorf("kpi %q: %w", kpiID, core.ErrUnknownKPI)
	}
	return def, nil
}

// Definitions returns all KPIs in stable (id-sorted) order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// Count returns the number of registered KPIs.
func (r *Registry) Count() int {
	return len(r.defs)
}

func (r *Registry) PillarWeight(pillar string) float64 {
	return r.pillarWeights[pillar]
}

func (r *Registry) Tolerance() int {
	return r.tolerance
}

// IndustryKnown reports whether any KPI carries a benchmark table for
// the industry. Unknown industries degrade to the default set.
func (r *Registry) IndustryKnown(industry string) bool {
	_, ok := r.industries[industry]
	return ok
}

// Benchmark returns the raw benchmark value for a KPI in an industry,
// falling back to the KPI's default set. The second return reports
// whether any benchmark exists at all.
func (r *Registry) Benchmark(kpiID, industry string) (float64, bool) {
	def, ok := r.defs[kpiID]
	if !ok {
		return 0, false
	}

	if v, ok := def.Benchmarks[industry]; ok {
		return v, true
	}

	v, ok := def.Benchmarks[DefaultIndustry]
	return v, ok
}
