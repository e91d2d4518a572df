// AngelaMos | 2026
// engine.go

package financial

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/angelamos/stratiq/internal/benchmark"
	"github.com/angelamos/stratiq/internal/core"
)

// Statements holds three years of income data plus current balance
// sheet and cash flow positions. Y0 is the most recent year.
type Statements struct {
	RevenueY2 decimal.Decimal
	RevenueY1 decimal.Decimal
	RevenueY0 decimal.Decimal

	EBITDAY2 decimal.Decimal
	EBITDAY1 decimal.Decimal
	EBITDAY0 decimal.Decimal

	NetProfitY2 decimal.Decimal
	NetProfitY1 decimal.Decimal
	NetProfitY0 decimal.Decimal

	TotalAssets        decimal.Decimal
	Equity             decimal.Decimal
	CurrentAssets      decimal.Decimal
	CurrentLiabilities decimal.Decimal
	TotalDebt          decimal.Decimal

	OperatingCashFlow decimal.Decimal
	CapEx             decimal.Decimal
}

// Metrics is the derived ratio set, percentages on a 0..100 basis.
// Ratios whose denominator is zero are left nil and skipped downstream.
type Metrics struct {
	RevenueGrowthPrior *float64 `json:"revenue_growth_prior"`
	RevenueGrowthLast  *float64 `json:"revenue_growth_last"`
	RevenueCAGR        *float64 `json:"revenue_cagr"`
	EBITDAMargin       *float64 `json:"ebitda_margin"`
	NetMargin          *float64 `json:"net_margin"`
	ROA                *float64 `json:"roa"`
	ROE                *float64 `json:"roe"`
	CurrentRatio       *float64 `json:"current_ratio"`
	DebtRatio          *float64 `json:"debt_ratio"`
	FreeCashFlow       float64  `json:"free_cash_flow"`
	FCFMargin          *float64 `json:"fcf_margin"`
}

// KPI ids emitted into a review's inputs when financials are supplied.
const (
	KPIRevenueCAGR  = "revenue_cagr"
	KPIEBITDAMargin = "ebitda_margin"
	KPINetMargin    = "net_margin"
	KPIROA          = "roa"
	KPIROE          = "roe"
	KPICurrentRatio = "current_ratio"
	KPIDebtRatio    = "debt_ratio"
	KPIFCFMargin    = "fcf_margin"
)

var hundred = decimal.NewFromInt(100)

// Analyze derives the ratio metrics from raw statements. Decimal
// arithmetic keeps margin math exact; only the CAGR root goes through
// float64.
func Analyze(st Statements) Metrics {
	var m Metrics

	m.RevenueGrowthPrior = growthPct(st.RevenueY2, st.RevenueY1)
	m.RevenueGrowthLast = growthPct(st.RevenueY1, st.RevenueY0)
	m.RevenueCAGR = cagrPct(st.RevenueY2, st.RevenueY0, 2)

	m.EBITDAMargin = ratioPct(st.EBITDAY0, st.RevenueY0)
	m.NetMargin = ratioPct(st.NetProfitY0, st.RevenueY0)
	m.ROA = ratioPct(st.NetProfitY0, st.TotalAssets)
	m.ROE = ratioPct(st.NetProfitY0, st.Equity)

	m.CurrentRatio = ratio(st.CurrentAssets, st.CurrentLiabilities)
	m.DebtRatio = ratio(st.TotalDebt, st.TotalAssets)

	fcf := st.OperatingCashFlow.Sub(st.CapEx)
	m.FreeCashFlow = fcf.InexactFloat64()
	m.FCFMargin = ratioPct(fcf, st.RevenueY0)

	return m
}

// KPIValues maps the derived metrics onto registry KPI ids. Metrics
// that could not be computed are absent.
func (m Metrics) KPIValues() map[string]float64 {
	out := make(map[string]float64, 8)

	put := func(id string, v *float64) {
		if v != nil {
			out[id] = *v
		}
	}

	put(KPIRevenueCAGR, m.RevenueCAGR)
	put(KPIEBITDAMargin, m.EBITDAMargin)
	put(KPINetMargin, m.NetMargin)
	put(KPIROA, m.ROA)
	put(KPIROE, m.ROE)
	put(KPICurrentRatio, m.CurrentRatio)
	put(KPIDebtRatio, m.DebtRatio)
	put(KPIFCFMargin, m.FCFMargin)

	return out
}

// Trend classifies the revenue trajectory for SWOT tie-breaking.
func (m Metrics) Trend() benchmark.Trend {
	return TrendFromCAGR(m.RevenueCAGR)
}

// TrendFromCAGR buckets a CAGR percentage. Within half a percent of
// flat counts as flat; a missing CAGR is unknown.
func TrendFromCAGR(cagr *float64) benchmark.Trend {
	if cagr == nil {
		return benchmark.TrendUnknown
	}

	switch {
	case *cagr > 0.5:
		return benchmark.TrendImproving
	case *cagr < -0.5:
		return benchmark.TrendDeclining
	default:
		return benchmark.TrendFlat
	}
}

// RawLines flattens the statements for the financial_raw audit table.
func (st Statements) RawLines() map[string]string {
	return map[string]string{
		"revenue_y2":          st.RevenueY2.String(),
		"revenue_y1":          st.RevenueY1.String(),
		"revenue_y0":          st.RevenueY0.String(),
		"ebitda_y2":           st.EBITDAY2.String(),
		"ebitda_y1":           st.EBITDAY1.String(),
		"ebitda_y0":           st.EBITDAY0.String(),
		"net_profit_y2":       st.NetProfitY2.String(),
		"net_profit_y1":       st.NetProfitY1.String(),
		"net_profit_y0":       st.NetProfitY0.String(),
		"total_assets":        st.TotalAssets.String(),
		"equity":              st.Equity.String(),
		"current_assets":      st.CurrentAssets.String(),
		"current_liabilities": st.CurrentLiabilities.String(),
		"total_debt":          st.TotalDebt.String(),
		"operating_cash_flow": st.OperatingCashFlow.String(),
		"capex":               st.CapEx.String(),
	}
}

func (st Statements) Validate() error {
	if st.RevenueY0.IsZero() && st.RevenueY1.IsZero() &&
		st.RevenueY2.IsZero() {
		return fmt.Errorf(
			"financials: all revenue years are zero: %w",
			core.ErrMissingInput,
		)
	}
	return nil
}

func growthPct(prev, curr decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}

	v := curr.Sub(prev).Div(prev).Mul(hundred).InexactFloat64()
	return &v
}

// cagrPct computes the compound annual growth rate over years periods.
// Negative or zero endpoints have no meaningful geometric growth rate.
func cagrPct(start, end decimal.Decimal, years int) *float64 {
	if years <= 0 || start.Sign() <= 0 || end.Sign() <= 0 {
		return nil
	}

	ratio := end.Div(start).InexactFloat64()
	v := (math.Pow(ratio, 1/float64(years)) - 1) * 100

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func ratioPct(num, den decimal.Decimal) *float64 {
	if den.IsZero() {
		return nil
	}

	v := num.Div(den).Mul(hundred).InexactFloat64()
	return &v
}

func ratio(num, den decimal.Decimal) *float64 {
	if den.IsZero() {
		return nil
	}

	v := num.Div(den).InexactFloat64()
	return &v
}
