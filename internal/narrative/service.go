// AngelaMos | 2026
// service.go

package narrative

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/angelamos/stratiq/internal/benchmark"
)

const systemPrompt = "You are a senior financial and business " +
	"consultant. You write concise, actionable assessments for company " +
	"leadership. Ground every statement in the figures provided; do not " +
	"invent numbers or facts."

// ReportContext is everything the advisor narrative is allowed to see.
// The prompt is built only from already-derived facts so the narrative
// can elaborate but never contradict the deterministic analysis.
type ReportContext struct {
	CompanyName  string
	Industry     string
	BHI          *int
	PillarScores map[string]int
	Comparisons  []benchmark.Comparison
	SWOT         benchmark.SWOT
	Trend        benchmark.Trend
}

type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// Generate produces the advisor narrative for a finished review.
// Errors wrap core.ErrNarrativeUnavailable; callers treat them as a
// degraded report, not a failure.
func (s *Service) Generate(
	ctx context.Context,
	rc ReportContext,
) (string, error) {
	return s.client.GenerateText(ctx, systemPrompt, buildPrompt(rc))
}

func buildPrompt(rc ReportContext) string {
	var b strings.Builder

	fmt.Fprintf(
		&b,
		"Write a business health assessment for %s (industry: %s).\n\n",
		rc.CompanyName,
		rc.Industry,
	)

	if rc.BHI != nil {
		fmt.Fprintf(
			&b,
			"Business Health Index: %d/100 (%s)\n",
			*rc.BHI,
			healthBand(*rc.BHI),
		)
	}

	if rc.Trend != benchmark.TrendUnknown {
		fmt.Fprintf(&b, "Revenue trend: %s\n", rc.Trend)
	}

	if len(rc.PillarScores) > 0 {
		b.WriteString("\nPillar scores (0-100):\n")
		pillars := make([]string, 0, len(rc.PillarScores))
		for p := range rc.PillarScores {
			pillars = append(pillars, p)
		}
		sort.Strings(pillars)
		for _, p := range pillars {
			fmt.Fprintf(&b, "- %s: %d\n", p, rc.PillarScores[p])
		}
	}

	if len(rc.Comparisons) > 0 {
		b.WriteString("\nBenchmark comparison (score vs industry):\n")
		for _, row := range rc.Comparisons {
			fmt.Fprintf(
				&b,
				"- %s: %d vs %d (%s)\n",
				row.KPIID,
				row.CompanyScore,
				row.BenchmarkScore,
				row.Verdict,
			)
		}
	}

	writeFacts(&b, "Strengths", rc.SWOT.Strengths)
	writeFacts(&b, "Weaknesses", rc.SWOT.Weaknesses)
	writeFacts(&b, "Opportunities", rc.SWOT.Opportunities)
	writeFacts(&b, "Threats", rc.SWOT.Threats)

	b.WriteString(
		"\nStructure the assessment as: overall verdict, key drivers, " +
			"top three recommended actions.",
	)

	return b.String()
}

func healthBand(bhi int) string {
	switch {
	case bhi >= 80:
		return "strong"
	case bhi >= 60:
		return "moderate"
	default:
		return "weak"
	}
}

func writeFacts(b *strings.Builder, heading string, facts []benchmark.Fact) {
	if len(facts) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, f := range facts {
		fmt.Fprintf(b, "- %s\n", f.Detail)
	}
}
