// AngelaMos | 2026
// engine_test.go

package financial

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelamos/stratiq/internal/benchmark"
	"github.com/angelamos/stratiq/internal/core"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sampleStatements() Statements {
	return Statements{
		RevenueY2: dec(1000),
		RevenueY1: dec(1100),
		RevenueY0: dec(1210),

		EBITDAY2: dec(150),
		EBITDAY1: dec(176),
		EBITDAY0: dec(242),

		NetProfitY2: dec(80),
		NetProfitY1: dec(99),
		NetProfitY0: dec(121),

		TotalAssets:        dec(2000),
		Equity:             dec(800),
		CurrentAssets:      dec(600),
		CurrentLiabilities: dec(300),
		TotalDebt:          dec(900),

		OperatingCashFlow: dec(200),
		CapEx:             dec(79),
	}
}

func assertPct(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, *got, want)
	}
}

func TestAnalyzeDerivesMetrics(t *testing.T) {
	m := Analyze(sampleStatements())

	// 1000 -> 1100 -> 1210 is 10% a year.
	assertPct(t, "growth prior", m.RevenueGrowthPrior, 10)
	assertPct(t, "growth last", m.RevenueGrowthLast, 10)
	assertPct(t, "cagr", m.RevenueCAGR, 10)

	assertPct(t, "ebitda margin", m.EBITDAMargin, 20)
	assertPct(t, "net margin", m.NetMargin, 10)
	assertPct(t, "roa", m.ROA, 6.05)
	assertPct(t, "roe", m.ROE, 15.125)

	assertPct(t, "current ratio", m.CurrentRatio, 2)
	assertPct(t, "debt ratio", m.DebtRatio, 0.45)

	if m.FreeCashFlow != 121 {
		t.Fatalf("fcf = %v, want 121", m.FreeCashFlow)
	}
	assertPct(t, "fcf margin", m.FCFMargin, 10)
}

func TestAnalyzeNilOnZeroDenominators(t *testing.T) {
	st := sampleStatements()
	st.RevenueY0 = decimal.Zero
	st.TotalAssets = decimal.Zero
	st.Equity = decimal.Zero
	st.CurrentLiabilities = decimal.Zero

	m := Analyze(st)

	if m.EBITDAMargin != nil {
		t.Fatalf("ebitda margin = %v, want nil on zero revenue", *m.EBITDAMargin)
	}
	if m.NetMargin != nil {
		t.Fatal("net margin should be nil on zero revenue")
	}
	if m.ROA != nil || m.DebtRatio != nil {
		t.Fatal("roa and debt ratio should be nil on zero assets")
	}
	if m.ROE != nil {
		t.Fatal("roe should be nil on zero equity")
	}
	if m.CurrentRatio != nil {
		t.Fatal("current ratio should be nil on zero current liabilities")
	}
	if m.FCFMargin != nil {
		t.Fatal("fcf margin should be nil on zero revenue")
	}
	// CAGR endpoint is zero, so no geometric growth rate exists.
	if m.RevenueCAGR != nil {
		t.Fatal("cagr should be nil when the last year is zero")
	}
}

func TestAnalyzeCAGRSkipsNonPositiveEndpoints(t *testing.T) {
	st := sampleStatements()
	st.RevenueY2 = dec(-100)

	if m := Analyze(st); m.RevenueCAGR != nil {
		t.Fatalf("cagr = %v, want nil for negative start", *m.RevenueCAGR)
	}
}

func TestKPIValuesOmitsMissingMetrics(t *testing.T) {
	st := sampleStatements()
	st.Equity = decimal.Zero

	values := Analyze(st).KPIValues()

	if _, ok := values[KPIROE]; ok {
		t.Fatal("roe should be absent when equity is zero")
	}
	if v, ok := values[KPIEBITDAMargin]; !ok || math.Abs(v-20) > 1e-9 {
		t.Fatalf("ebitda_margin = %v, %v; want 20, true", v, ok)
	}
	if v, ok := values[KPICurrentRatio]; !ok || math.Abs(v-2) > 1e-9 {
		t.Fatalf("current_ratio = %v, %v; want 2, true", v, ok)
	}
}

func TestTrendFromCAGR(t *testing.T) {
	pct := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		cagr *float64
		want benchmark.Trend
	}{
		{"nil is unknown", nil, benchmark.TrendUnknown},
		{"growth", pct(4.2), benchmark.TrendImproving},
		{"decline", pct(-3.1), benchmark.TrendDeclining},
		{"just inside flat band", pct(0.5), benchmark.TrendFlat},
		{"just inside flat band negative", pct(-0.5), benchmark.TrendFlat},
		{"just outside flat band", pct(0.51), benchmark.TrendImproving},
		{"zero", pct(0), benchmark.TrendFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendFromCAGR(tt.cagr); got != tt.want {
				t.Fatalf("TrendFromCAGR = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateRejectsAllZeroRevenue(t *testing.T) {
	var st Statements
	st.TotalAssets = dec(100)

	if err := st.Validate(); !errors.Is(err, core.ErrMissingInput) {
		t.Fatalf("Validate error = %v, want ErrMissingInput", err)
	}

	st.RevenueY1 = dec(50)
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate error = %v, want nil", err)
	}
}

func TestRawLinesCoversAllStatementLines(t *testing.T) {
	lines := sampleStatements().RawLines()

	if len(lines) != 16 {
		t.Fatalf("got %d raw lines, want 16", len(lines))
	}
	if lines["revenue_y0"] != "1210" {
		t.Fatalf("revenue_y0 = %q, want 1210", lines["revenue_y0"])
	}
	if lines["capex"] != "79" {
		t.Fatalf("capex = %q, want 79", lines["capex"])
	}
}
