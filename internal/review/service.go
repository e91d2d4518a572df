// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/angelamos/stratiq/internal/benchmark"
	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/export"
	"github.com/angelamos/stratiq/internal/financial"
	"github.com/angelamos/stratiq/internal/narrative"
	"github.com/angelamos/stratiq/internal/registry"
	"github.com/angelamos/stratiq/internal/scoring"
)

// QuotaService gates review creation and export against the caller's
// subscription. Implemented by the subscription service.
type QuotaService interface {
	ConsumeReview(ctx context.Context, userID string, isAdmin bool) error
	ConsumeExport(ctx context.Context, userID string, isAdmin bool) error
	HasAdvisorAccess(
		ctx context.Context,
		userID string,
		isAdmin bool,
	) (bool, error)
}

// Narrator produces the advisor narrative. Implemented by the
// narrative service.
type Narrator interface {
	Generate(ctx context.Context, rc narrative.ReportContext) (string, error)
}

// TxRunner executes fn against a repository bound to one transaction.
type TxRunner func(ctx context.Context, fn func(Repository) error) error

func NewTxRunner(db *core.Database) TxRunner {
	return func(ctx context.Context, fn func(Repository) error) error {
		return core.InTx(ctx, db.DB, func(tx *sqlx.Tx) error {
			return fn(NewRepository(tx))
		})
	}
}

type Service struct {
	repo     Repository
	inTx     TxRunner
	reg      *registry.Registry
	quota    QuotaService
	narrator Narrator
	renderer export.Renderer
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	inTx TxRunner,
	reg *registry.Registry,
	quota QuotaService,
	narrator Narrator,
	renderer export.Renderer,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		inTx:     inTx,
		reg:      reg,
		quota:    quota,
		narrator: narrator,
		renderer: renderer,
		logger:   logger,
	}
}

// CreateReview burns one review credit, then persists the review.
// The quota check happens before any persistence work.
func (s *Service) CreateReview(
	ctx context.Context,
	ownerID string,
	isAdmin bool,
	req CreateReviewRequest,
) (*Review, error) {
	if err := s.quota.ConsumeReview(ctx, ownerID, isAdmin); err != nil {
		return nil, err
	}

	review := &Review{
		ID:          uuid.New().String(),
		OwnerUserID: ownerID,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) GetReview(
	ctx context.Context,
	id, callerID string,
	isAdmin bool,
) (*Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && review.OwnerUserID != callerID {
		return nil, fmt.Errorf("get review: %w", core.ErrForbidden)
	}

	return review, nil
}

func (s *Service) ListReviews(
	ctx context.Context,
	callerID string,
	isAdmin bool,
) ([]Review, error) {
	if isAdmin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, callerID)
}

func (s *Service) DeleteReview(
	ctx context.Context,
	id, callerID string,
	isAdmin bool,
) error {
	if _, err := s.GetReview(ctx, id, callerID, isAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// PutInputs stores a batch of raw KPI values. Unknown KPIs and
// non-finite values are skipped and reported as warnings; one bad
// entry never rejects the rest of the batch.
func (s *Service) PutInputs(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
	req PutInputsRequest,
) (*InputsResponse, error) {
	if _, err := s.GetReview(ctx, reviewID, callerID, isAdmin); err != nil {
		return nil, err
	}

	var warnings []string
	accepted := make([]KPIInput, 0, len(req.Inputs))

	for _, entry := range req.Inputs {
		if _, err := s.reg.Lookup(entry.KPIID); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"unknown kpi %q skipped", entry.KPIID))
			continue
		}

		if math.IsNaN(entry.Value) || math.IsInf(entry.Value, 0) {
			warnings = append(warnings, fmt.Sprintf(
				"kpi %q has a non-finite value, skipped", entry.KPIID))
			continue
		}

		accepted = append(accepted, KPIInput{
			ID:       uuid.New().String(),
			ReviewID: reviewID,
			KPIID:    entry.KPIID,
			Value:    entry.Value,
		})
	}

	err := s.inTx(ctx, func(repo Repository) error {
		for i := range accepted {
			if err := repo.UpsertInput(ctx, &accepted[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &InputsResponse{
		Accepted: len(accepted),
		Warnings: warnings,
	}, nil
}

// ScoreReview scores every stored input and persists all scores in one
// transaction, so a review is never visible half-scored. Inputs that
// cannot be scored are skipped with a warning.
func (s *Service) ScoreReview(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) (*ScoreResponse, error) {
	if _, err := s.GetReview(ctx, reviewID, callerID, isAdmin); err != nil {
		return nil, err
	}

	inputs, err := s.repo.GetInputs(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var warnings []string
	scored := make([]scoring.ScoredKPI, 0, len(inputs))

	for _, input := range inputs {
		sk, err := scoring.ScoreKPI(s.reg, input.KPIID, input.Value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"kpi %q not scored: %v", input.KPIID, err))
			continue
		}
		scored = append(scored, sk)
	}

	rows := make([]Score, 0, len(scored))
	for _, sk := range scored {
		rows = append(rows, Score{
			ID:       uuid.New().String(),
			ReviewID: reviewID,
			KPIID:    sk.KPIID,
			Pillar:   sk.Pillar,
			RawValue: sk.RawValue,
			Score:    sk.Score,
		})
	}

	err = s.inTx(ctx, func(repo Repository) error {
		for i := range rows {
			if err := repo.UpsertScore(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	agg := scoring.AggregateScores(s.reg, scored)

	return &ScoreResponse{
		ReviewID:     reviewID,
		Scores:       toScoredKPIResponses(rows),
		PillarScores: agg.PillarScores,
		BHI:          agg.BHI,
		Warnings:     warnings,
	}, nil
}

// ApplyFinancials derives ratio KPIs from raw statements, storing the
// raw lines for audit and the derived values as regular KPI inputs.
func (s *Service) ApplyFinancials(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
	st financial.Statements,
) (*FinancialsResponse, error) {
	if _, err := s.GetReview(ctx, reviewID, callerID, isAdmin); err != nil {
		return nil, err
	}

	if err := st.Validate(); err != nil {
		return nil, err
	}

	metrics := financial.Analyze(st)

	var warnings []string
	inputs := make([]KPIInput, 0, 8)

	for kpiID, value := range metrics.KPIValues() {
		if _, err := s.reg.Lookup(kpiID); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"derived kpi %q not in registry, skipped", kpiID))
			continue
		}

		inputs = append(inputs, KPIInput{
			ID:       uuid.New().String(),
			ReviewID: reviewID,
			KPIID:    kpiID,
			Value:    value,
		})
	}

	err := s.inTx(ctx, func(repo Repository) error {
		for metric, value := range st.RawLines() {
			line := &FinancialRaw{
				ID:       uuid.New().String(),
				ReviewID: reviewID,
				Metric:   metric,
				Value:    value,
			}
			if err := repo.InsertFinancialRaw(ctx, line); err != nil {
				return err
			}
		}

		for i := range inputs {
			if err := repo.UpsertInput(ctx, &inputs[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FinancialsResponse{
		Metrics:  metrics,
		Accepted: len(inputs),
		Warnings: warnings,
	}, nil
}

// BenchmarkReview compares the review's persisted scores against its
// industry's benchmark set.
func (s *Service) BenchmarkReview(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) (*benchmark.Result, error) {
	review, err := s.GetReview(ctx, reviewID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	scored, err := s.scoredKPIs(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	result := benchmark.Compare(s.reg, scored, review.Industry)
	return &result, nil
}

// SWOTReview derives the rule-based SWOT facts for a scored review.
func (s *Service) SWOTReview(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) (*benchmark.SWOT, error) {
	result, err := s.BenchmarkReview(ctx, reviewID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	trend, err := s.revenueTrend(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	swot := benchmark.DeriveSWOT(result.Rows, trend)
	return &swot, nil
}

// GenerateNarrative asks the advisor for a written assessment. The
// caller's plan must include advisor access; LLM failure degrades to
// narrative_status "unavailable" instead of an error.
func (s *Service) GenerateNarrative(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) (*NarrativeResponse, error) {
	allowed, err := s.quota.HasAdvisorAccess(ctx, callerID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("narrative: %w", core.ErrForbidden)
	}

	report, err := s.AssembleReport(ctx, reviewID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	text, err := s.narrator.Generate(ctx, narrative.ReportContext{
		CompanyName:  report.Review.CompanyName,
		Industry:     report.Review.Industry,
		BHI:          report.BHI,
		PillarScores: report.PillarScores,
		Comparisons:  report.Benchmark.Rows,
		SWOT:         report.SWOT,
		Trend:        report.Trend,
	})
	if err != nil {
		if errors.Is(err, core.ErrNarrativeUnavailable) {
			s.logger.Warn("narrative unavailable",
				slog.String("review_id", reviewID),
				slog.String("error", err.Error()),
			)
			return &NarrativeResponse{Status: "unavailable"}, nil
		}
		return nil, err
	}

	return &NarrativeResponse{Status: "ok", Narrative: text}, nil
}

// AssembleReport builds the full report document without the
// narrative.
func (s *Service) AssembleReport(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) (*Report, error) {
	review, err := s.GetReview(ctx, reviewID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetScores(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	scored, err := s.scoredKPIs(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	trend, err := s.revenueTrend(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	agg := scoring.AggregateScores(s.reg, scored)
	result := benchmark.Compare(s.reg, scored, review.Industry)
	swot := benchmark.DeriveSWOT(result.Rows, trend)

	return &Report{
		Review:       ToReviewResponse(review),
		Scores:       toScoredKPIResponses(rows),
		PillarScores: agg.PillarScores,
		BHI:          agg.BHI,
		Benchmark:    result,
		SWOT:         swot,
		Trend:        trend,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// ExportReview burns one export credit and streams the rendered PDF.
// Renderer failure does not refund the credit and rolls nothing back.
func (s *Service) ExportReview(
	ctx context.Context,
	reviewID, callerID string,
	isAdmin bool,
) ([]byte, error) {
	report, err := s.AssembleReport(ctx, reviewID, callerID, isAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.quota.ConsumeExport(ctx, callerID, isAdmin); err != nil {
		return nil, err
	}

	// Narrative enrichment is best effort: a report exports fine
	// without it.
	if allowed, aErr := s.quota.HasAdvisorAccess(ctx, callerID, isAdmin); aErr == nil && allowed {
		text, nErr := s.narrator.Generate(ctx, narrative.ReportContext{
			CompanyName:  report.Review.CompanyName,
			Industry:     report.Review.Industry,
			BHI:          report.BHI,
			PillarScores: report.PillarScores,
			Comparisons:  report.Benchmark.Rows,
			SWOT:         report.SWOT,
			Trend:        report.Trend,
		})
		if nErr == nil {
			report.Narrative = text
		} else {
			s.logger.Warn("export narrative skipped",
				slog.String("review_id", reviewID),
				slog.String("error", nErr.Error()),
			)
		}
	}

	return s.renderer.RenderPDF(ctx, report)
}

func (s *Service) scoredKPIs(
	ctx context.Context,
	reviewID string,
) ([]scoring.ScoredKPI, error) {
	rows, err := s.repo.GetScores(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	scored := make([]scoring.ScoredKPI, 0, len(rows))
	for _, row := range rows {
		def, err := s.reg.Lookup(row.KPIID)
		if err != nil {
			// Registry shrank since scoring; stale rows drop out of
			// aggregates rather than poisoning them.
			continue
		}

		scored = append(scored, scoring.ScoredKPI{
			KPIID:    row.KPIID,
			Pillar:   row.Pillar,
			RawValue: row.RawValue,
			Score:    row.Score,
			Weight:   def.Weight,
			External: def.External,
		})
	}

	return scored, nil
}

// revenueTrend reads the stored revenue CAGR input, when financials
// have been supplied, and buckets it for SWOT tie-breaking.
func (s *Service) revenueTrend(
	ctx context.Context,
	reviewID string,
) (benchmark.Trend, error) {
	inputs, err := s.repo.GetInputs(ctx, reviewID)
	if err != nil {
		return benchmark.TrendUnknown, err
	}

	for _, input := range inputs {
		if input.KPIID == financial.KPIRevenueCAGR {
			v := input.Value
			return financial.TrendFromCAGR(&v), nil
		}
	}

	return benchmark.TrendUnknown, nil
}

// StatementsFromRequest converts the JSON financial payload into the
// engine's decimal form. Slices arrive oldest year first.
func StatementsFromRequest(req FinancialsRequest) financial.Statements {
	d := decimal.NewFromFloat

	return financial.Statements{
		RevenueY2:          d(req.Revenue[0]),
		RevenueY1:          d(req.Revenue[1]),
		RevenueY0:          d(req.Revenue[2]),
		EBITDAY2:           d(req.EBITDA[0]),
		EBITDAY1:           d(req.EBITDA[1]),
		EBITDAY0:           d(req.EBITDA[2]),
		NetProfitY2:        d(req.NetProfit[0]),
		NetProfitY1:        d(req.NetProfit[1]),
		NetProfitY0:        d(req.NetProfit[2]),
		TotalAssets:        d(req.TotalAssets),
		Equity:             d(req.Equity),
		CurrentAssets:      d(req.CurrentAssets),
		CurrentLiabilities: d(req.CurrentLiabilities),
		TotalDebt:          d(req.TotalDebt),
		OperatingCashFlow:  d(req.OperatingCashFlow),
		CapEx:              d(req.CapEx),
	}
}
