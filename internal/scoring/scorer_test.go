// AngelaMos | 2026
// scorer_test.go

package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/registry"
)

func higherBetterDef() registry.Definition {
	return registry.Definition{
		ID:        "revenue_growth",
		Pillar:    "financial",
		Direction: registry.HigherBetter,
		Poor:      0,
		Excellent: 20,
		Weight:    1,
	}
}

func lowerBetterDef() registry.Definition {
	return registry.Definition{
		ID:        "debt_ratio",
		Pillar:    "financial",
		Direction: registry.LowerBetter,
		Poor:      0.9,
		Excellent: 0.2,
		Weight:    1,
	}
}

func TestScoreBounds(t *testing.T) {
	def := higherBetterDef()

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"at poor threshold", 0, 0},
		{"below poor threshold", -10, 0},
		{"at excellent threshold", 20, 100},
		{"beyond excellent threshold", 55, 100},
		{"linear midpoint", 10, 50},
		{"quarter of the band", 5, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(def, tt.value)
			if err != nil {
				t.Fatalf("Score(%v) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Fatalf("Score(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestScoreMonotonic(t *testing.T) {
	def := higherBetterDef()

	prev := -1
	for v := -5.0; v <= 25.0; v += 0.5 {
		got, err := Score(def, v)
		if err != nil {
			t.Fatalf("Score(%v) error: %v", v, err)
		}
		if got < prev {
			t.Fatalf("Score(%v) = %d dropped below previous %d", v, got, prev)
		}
		prev = got
	}
}

func TestScoreLowerBetter(t *testing.T) {
	def := lowerBetterDef()

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"at poor threshold", 0.9, 0},
		{"worse than poor", 1.5, 0},
		{"at excellent threshold", 0.2, 100},
		{"better than excellent", 0.05, 100},
		{"midpoint", 0.55, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(def, tt.value)
			if err != nil {
				t.Fatalf("Score(%v) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Fatalf("Score(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestScoreRejectsNonFinite(t *testing.T) {
	def := higherBetterDef()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Score(def, v); !errors.Is(err, core.ErrMissingInput) {
			t.Fatalf("Score(%v) error = %v, want ErrMissingInput", v, err)
		}
	}
}

func TestScoreKPIUnknown(t *testing.T) {
	reg := testRegistry(t)

	_, err := ScoreKPI(reg, "nonexistent_kpi", 10)
	if !errors.Is(err, core.ErrUnknownKPI) {
		t.Fatalf("ScoreKPI error = %v, want ErrUnknownKPI", err)
	}
}

func TestScoreKPICarriesDefinition(t *testing.T) {
	reg := testRegistry(t)

	scored, err := ScoreKPI(reg, "revenue_growth", 20)
	if err != nil {
		t.Fatalf("ScoreKPI error: %v", err)
	}
	if scored.Score != 100 {
		t.Fatalf("score = %d, want 100", scored.Score)
	}
	if scored.Pillar != "financial" {
		t.Fatalf("pillar = %q, want financial", scored.Pillar)
	}
	if scored.RawValue != 20 {
		t.Fatalf("raw value = %v, want 20", scored.RawValue)
	}
}

func testRegistry(t *testing.T) *registry.Registry {
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
			},
			{
				ID:        "customer_retention",
				Pillar:    "operational",
				Direction: registry.HigherBetter,
				Poor:      60,
				Excellent: 95,
				Weight:    1,
			},
		},
		map[string]float64{"financial": 0.6, "operational": 0.4},
		2,
	)
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	return reg
}
