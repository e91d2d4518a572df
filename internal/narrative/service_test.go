// AngelaMos | 2026
// service_test.go

package narrative

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/angelamos/stratiq/internal/benchmark"
	"github.com/angelamos/stratiq/internal/core"
)

type captureClient struct {
	system string
	user   string
	reply  string
	err    error
}

func (c *captureClient) GenerateText(
	_ context.Context,
	system, user string,
) (string, error) {
	c.system = system
	c.user = user
	return c.reply, c.err
}

func sampleContext() ReportContext {
	bhi := 72
	return ReportContext{
		CompanyName:  "Acme Widgets",
		Industry:     "manufacturing",
		BHI:          &bhi,
		PillarScores: map[string]int{"financial": 68, "operational": 80},
		Comparisons: []benchmark.Comparison{
			{
				KPIID:          "ebitda_margin",
				CompanyScore:   68,
				BenchmarkScore: 47,
				Delta:          21,
				Verdict:        benchmark.VerdictAbove,
			},
		},
		SWOT: benchmark.SWOT{
			Strengths: []benchmark.Fact{{
				KPIID:  "ebitda_margin",
				Bucket: benchmark.BucketStrength,
				Detail: "Strong performance in ebitda_margin",
			}},
		},
		Trend: benchmark.TrendImproving,
	}
}

func TestGenerateBuildsGroundedPrompt(t *testing.T) {
	client := &captureClient{reply: "assessment text"}
	svc := NewService(client)

	text, err := svc.Generate(context.Background(), sampleContext())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if text != "assessment text" {
		t.Fatalf("narrative = %q, want client reply", text)
	}

	if !strings.Contains(client.system, "do not invent numbers") {
		t.Fatalf("system prompt missing grounding instruction: %q", client.system)
	}

	for _, want := range []string{
		"Acme Widgets",
		"manufacturing",
		"Business Health Index: 72/100 (moderate)",
		"Revenue trend: improving",
		"- financial: 68",
		"- operational: 80",
		"- ebitda_margin: 68 vs 47 (above)",
		"Strong performance in ebitda_margin",
		"top three recommended actions",
	} {
		if !strings.Contains(client.user, want) {
			t.Fatalf("prompt missing %q:\n%s", want, client.user)
		}
	}
}

func TestGenerateOmitsAbsentSections(t *testing.T) {
	client := &captureClient{reply: "ok"}
	svc := NewService(client)

	rc := ReportContext{
		CompanyName: "Bare Co",
		Industry:    "retail",
		Trend:       benchmark.TrendUnknown,
	}

	if _, err := svc.Generate(context.Background(), rc); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	for _, absent := range []string{
		"Business Health Index",
		"Revenue trend",
		"Pillar scores",
		"Benchmark comparison",
		"Strengths",
	} {
		if strings.Contains(client.user, absent) {
			t.Fatalf("prompt should omit %q for an empty report:\n%s",
				absent, client.user)
		}
	}
}

func TestGeneratePropagatesClientError(t *testing.T) {
	client := &captureClient{
		err: fmt.Errorf("timeout: %w", core.ErrNarrativeUnavailable),
	}
	svc := NewService(client)

	_, err := svc.Generate(context.Background(), sampleContext())
	if err == nil {
		t.Fatal("expected client error to propagate")
	}
}
