// AngelaMos | 2026
// dto.go

package review

import (
	"time"

	"github.com/angelamos/stratiq/internal/benchmark"
	"github.com/angelamos/stratiq/internal/financial"
)

type CreateReviewRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	Industry    string `json:"industry"     validate:"required,min=1,max=100"`
}

type KPIInputEntry struct {
	KPIID string  `json:"kpi_id" validate:"required"`
	Value float64 `json:"value"`
}

type PutInputsRequest struct {
	Inputs []KPIInputEntry `json:"inputs" validate:"required,min=1,dive"`
}

// FinancialsRequest is the JSON alternative to the Excel upload.
// Slices are ordered oldest year first.
type FinancialsRequest struct {
	Revenue            []float64 `json:"revenue"    validate:"required,len=3"`
	EBITDA             []float64 `json:"ebitda"     validate:"required,len=3"`
	NetProfit          []float64 `json:"net_profit" validate:"required,len=3"`
	TotalAssets        float64   `json:"total_assets"`
	Equity             float64   `json:"equity"`
	CurrentAssets      float64   `json:"current_assets"`
	CurrentLiabilities float64   `json:"current_liabilities"`
	TotalDebt          float64   `json:"total_debt"`
	OperatingCashFlow  float64   `json:"operating_cash_flow"`
	CapEx              float64   `json:"capex"`
}

type ReviewResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InputsResponse struct {
	Accepted int      `json:"accepted"`
	Warnings []string `json:"warnings,omitempty"`
}

type ScoredKPIResponse struct {
	KPIID    string  `json:"kpi_id"`
	Pillar   string  `json:"pillar"`
	RawValue float64 `json:"raw_value"`
	Score    int     `json:"score"`
}

type ScoreResponse struct {
	ReviewID     string              `json:"review_id"`
	Scores       []ScoredKPIResponse `json:"scores"`
	PillarScores map[string]int      `json:"pillar_scores"`
	BHI          *int                `json:"bhi"`
	Warnings     []string            `json:"warnings,omitempty"`
}

type FinancialsResponse struct {
	Metrics  financial.Metrics `json:"metrics"`
	Accepted int               `json:"kpi_inputs_written"`
	Warnings []string          `json:"warnings,omitempty"`
}

type NarrativeResponse struct {
	Status    string `json:"narrative_status"`
	Narrative string `json:"narrative,omitempty"`
}

// Report is the full assembled document, also the payload handed to
// the PDF renderer.
type Report struct {
	Review       ReviewResponse      `json:"review"`
	Scores       []ScoredKPIResponse `json:"scores"`
	PillarScores map[string]int      `json:"pillar_scores"`
	BHI          *int                `json:"bhi"`
	Benchmark    benchmark.Result    `json:"benchmark"`
	SWOT         benchmark.SWOT      `json:"swot"`
	Trend        benchmark.Trend     `json:"trend"`
	Narrative    string              `json:"narrative,omitempty"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		CompanyName: r.CompanyName,
		Industry:    r.Industry,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toScoredKPIResponses(scores []Score) []ScoredKPIResponse {
	out := make([]ScoredKPIResponse, 0, len(scores))
	for _, s := range scores {
		out = append(out, ScoredKPIResponse{
			KPIID:    s.KPIID,
			Pillar:   s.Pillar,
			RawValue: s.RawValue,
			Score:    s.Score,
		})
	}
	return out
}
