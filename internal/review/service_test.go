// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/financial"
	"github.com/angelamos/stratiq/internal/narrative"
	"github.com/angelamos/stratiq/internal/registry"
)

type fakeRepo struct {
	reviews map[string]*Review
	inputs  map[string][]KPIInput
	scores  map[string][]Score
	raw     map[string][]FinancialRaw

	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews: make(map[string]*Review),
		inputs:  make(map[string][]KPIInput),
		scores:  make(map[string][]Score),
		raw:     make(map[string][]FinancialRaw),
	}
}

func (f *fakeRepo) Create(_ context.Context, review *Review) error {
	f.createCalls++
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review: %w", core.ErrNotFound)
	}
	return review, nil
}

func (f *fakeRepo) ListByOwner(
	_ context.Context,
	ownerID string,
) ([]Review, error) {
	var out []Review
	for _, review := range f.reviews {
		if review.OwnerUserID == ownerID {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]Review, error) {
	var out []Review
	for _, review := range f.reviews {
		out = append(out, *review)
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) UpsertInput(_ context.Context, input *KPIInput) error {
	existing := f.inputs[input.ReviewID]
	for i := range existing {
		if existing[i].KPIID == input.KPIID {
			existing[i].Value = input.Value
			return nil
		}
	}
	f.inputs[input.ReviewID] = append(existing, *input)
	return nil
}

func (f *fakeRepo) GetInputs(
	_ context.Context,
	reviewID string,
) ([]KPIInput, error) {
	return f.inputs[reviewID], nil
}

func (f *fakeRepo) UpsertScore(_ context.Context, score *Score) error {
	existing := f.scores[score.ReviewID]
	for i := range existing {
		if existing[i].KPIID == score.KPIID {
			existing[i] = *score
			return nil
		}
	}
	f.scores[score.ReviewID] = append(existing, *score)
	return nil
}

func (f *fakeRepo) GetScores(
	_ context.Context,
	reviewID string,
) ([]Score, error) {
	return f.scores[reviewID], nil
}

func (f *fakeRepo) InsertFinancialRaw(
	_ context.Context,
	line *FinancialRaw,
) error {
	f.raw[line.ReviewID] = append(f.raw[line.ReviewID], *line)
	return nil
}

func (f *fakeRepo) GetFinancialRaw(
	_ context.Context,
	reviewID string,
) ([]FinancialRaw, error) {
	return f.raw[reviewID], nil
}

type fakeQuota struct {
	reviewErr     error
	exportErr     error
	advisor       bool
	reviewsBurned int
	exportsBurned int
}

func (f *fakeQuota) ConsumeReview(
	_ context.Context,
	_ string,
	isAdmin bool,
) error {
	if isAdmin {
		return nil
	}
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.reviewsBurned++
	return nil
}

func (f *fakeQuota) ConsumeExport(
	_ context.Context,
	_ string,
	isAdmin bool,
) error {
	if isAdmin {
		return nil
	}
	if f.exportErr != nil {
		return f.exportErr
	}
	f.exportsBurned++
	return nil
}

func (f *fakeQuota) HasAdvisorAccess(
	_ context.Context,
	_ string,
	isAdmin bool,
) (bool, error) {
	return isAdmin || f.advisor, nil
}

type fakeNarrator struct {
	text string
	err  error
}

func (f *fakeNarrator) Generate(
	_ context.Context,
	_ narrative.ReportContext,
) (string, error) {
	return f.text, f.err
}

type fakeRenderer struct {
	pdf   []byte
	err   error
	calls int
}

func (f *fakeRenderer) RenderPDF(
	_ context.Context,
	_ any,
) ([]byte, error) {
	f.calls++
	return f.pdf, f.err
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.New(
		[]registry.Definition{
			{
				ID:        "revenue_growth",
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0, Excellent: 20, Weight: 1,
				Benchmarks: map[string]float64{"default": 10},
			},
			{
				ID:        financial.KPIRevenueCAGR,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0, Excellent: 18, Weight: 1,
				Benchmarks: map[string]float64{"default": 7},
			},
			{
				ID:        financial.KPIEBITDAMargin,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0, Excellent: 30, Weight: 1,
				Benchmarks: map[string]float64{"default": 12},
			},
			{
				ID:        financial.KPINetMargin,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      -5, Excellent: 20, Weight: 1,
			},
			{
				ID:        financial.KPIROA,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0, Excellent: 15, Weight: 1,
			},
			{
				ID:        financial.KPIROE,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0, Excellent: 25, Weight: 1,
			},
			{
				ID:        financial.KPICurrentRatio,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      0.8, Excellent: 2.5, Weight: 1,
			},
			{
				ID:        financial.KPIDebtRatio,
				Pillar:    "financial",
				Direction: registry.LowerBetter,
				Poor:      0.9, Excellent: 0.2, Weight: 1,
			},
			{
				ID:        financial.KPIFCFMargin,
				Pillar:    "financial",
				Direction: registry.HigherBetter,
				Poor:      -5, Excellent: 20, Weight: 1,
			},
		},
		map[string]float64{"financial": 1},
		2,
	)
	if err != nil {
		t.Fatalf("registry.New error: %v", err)
	}
	return reg
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	quota    *fakeQuota
	narrator *fakeNarrator
	renderer *fakeRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	quota := &fakeQuota{}
	narrator := &fakeNarrator{text: "looks healthy"}
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.7")}

	inTx := func(ctx context.Context, fn func(Repository) error) error {
		return fn(repo)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(repo, inTx, testRegistry(t), quota, narrator, renderer, logger)

	return &fixture{
		svc:      svc,
		repo:     repo,
		quota:    quota,
		narrator: narrator,
		renderer: renderer,
	}
}

func (fx *fixture) seedReview(t *testing.T, ownerID string) *Review {
	t.Helper()

	review, err := fx.svc.CreateReview(
		context.Background(),
		ownerID,
		false,
		CreateReviewRequest{CompanyName: "Acme", Industry: "manufacturing"},
	)
	if err != nil {
		t.Fatalf("CreateReview error: %v", err)
	}
	return review
}

func TestCreateReviewQuotaBeforePersistence(t *testing.T) {
	fx := newFixture(t)
	fx.quota.reviewErr = fmt.Errorf("review quota: %w", core.ErrQuotaExceeded)

	_, err := fx.svc.CreateReview(
		context.Background(),
		"u1",
		false,
		CreateReviewRequest{CompanyName: "Acme", Industry: "saas"},
	)

	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
	if fx.repo.createCalls != 0 {
		t.Fatal("review was persisted despite exhausted quota")
	}
}

func TestCreateReviewBurnsOneCredit(t *testing.T) {
	fx := newFixture(t)

	fx.seedReview(t, "u1")

	if fx.quota.reviewsBurned != 1 {
		t.Fatalf("credits burned = %d, want 1", fx.quota.reviewsBurned)
	}
}

func TestGetReviewOwnerScoping(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "owner")

	if _, err := fx.svc.GetReview(ctx, review.ID, "owner", false); err != nil {
		t.Fatalf("owner GetReview error: %v", err)
	}

	_, err := fx.svc.GetReview(ctx, review.ID, "stranger", false)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("stranger error = %v, want ErrForbidden", err)
	}

	if _, err := fx.svc.GetReview(ctx, review.ID, "anyone", true); err != nil {
		t.Fatalf("admin GetReview error: %v", err)
	}
}

func TestPutInputsSkipsBadEntriesWithWarnings(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "u1")

	resp, err := fx.svc.PutInputs(ctx, review.ID, "u1", false, PutInputsRequest{
		Inputs: []KPIInputEntry{
			{KPIID: "revenue_growth", Value: 12},
			{KPIID: "made_up_kpi", Value: 5},
			{KPIID: "revenue_growth", Value: math.NaN()},
		},
	})
	if err != nil {
		t.Fatalf("PutInputs error: %v", err)
	}

	if resp.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1", resp.Accepted)
	}
	if len(resp.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 entries", resp.Warnings)
	}

	stored := fx.repo.inputs[review.ID]
	if len(stored) != 1 || stored[0].Value != 12 {
		t.Fatalf("stored inputs = %+v, want single revenue_growth=12", stored)
	}
}

func TestPutInputsOverwritesPriorValue(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "u1")

	for _, v := range []float64{8, 14} {
		_, err := fx.svc.PutInputs(ctx, review.ID, "u1", false, PutInputsRequest{
			Inputs: []KPIInputEntry{{KPIID: "revenue_growth", Value: v}},
		})
		if err != nil {
			t.Fatalf("PutInputs error: %v", err)
		}
	}

	stored := fx.repo.inputs[review.ID]
	if len(stored) != 1 || stored[0].Value != 14 {
		t.Fatalf("stored inputs = %+v, want single revenue_growth=14", stored)
	}
}

func TestScoreReviewComputesAndAggregates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "u1")

	_, err := fx.svc.PutInputs(ctx, review.ID, "u1", false, PutInputsRequest{
		Inputs: []KPIInputEntry{{KPIID: "revenue_growth", Value: 10}},
	})
	if err != nil {
		t.Fatalf("PutInputs error: %v", err)
	}

	resp, err := fx.svc.ScoreReview(ctx, review.ID, "u1", false)
	if err != nil {
		t.Fatalf("ScoreReview error: %v", err)
	}

	if len(resp.Scores) != 1 || resp.Scores[0].Score != 50 {
		t.Fatalf("scores = %+v, want single score of 50", resp.Scores)
	}
	if resp.PillarScores["financial"] != 50 {
		t.Fatalf(
			"financial pillar = %d, want 50",
			resp.PillarScores["financial"],
		)
	}
	if resp.BHI == nil || *resp.BHI != 50 {
		t.Fatalf("BHI = %v, want 50", resp.BHI)
	}
}

func TestScoreReviewEmptyHasNoBHI(t *testing.T) {
	fx := newFixture(t)
	review := fx.seedReview(t, "u1")

	resp, err := fx.svc.ScoreReview(context.Background(), review.ID, "u1", false)
	if err != nil {
		t.Fatalf("ScoreReview error: %v", err)
	}

	if resp.BHI != nil {
		t.Fatalf("BHI = %v, want nil for unscored review", *resp.BHI)
	}
}

func TestApplyFinancialsWritesInputsAndAudit(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "u1")

	resp, err := fx.svc.ApplyFinancials(
		ctx,
		review.ID,
		"u1",
		false,
		StatementsFromRequest(FinancialsRequest{
			Revenue:            []float64{1000, 1100, 1210},
			EBITDA:             []float64{150, 176, 242},
			NetProfit:          []float64{80, 99, 121},
			TotalAssets:        2000,
			Equity:             800,
			CurrentAssets:      600,
			CurrentLiabilities: 300,
			TotalDebt:          900,
			OperatingCashFlow:  200,
			CapEx:              79,
		}),
	)
	if err != nil {
		t.Fatalf("ApplyFinancials error: %v", err)
	}

	// All eight derived KPIs are registered in the test registry.
	if resp.Accepted != 8 {
		t.Fatalf("accepted = %d, want 8", resp.Accepted)
	}
	if len(resp.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", resp.Warnings)
	}

	if len(fx.repo.raw[review.ID]) != 16 {
		t.Fatalf(
			"raw audit lines = %d, want 16",
			len(fx.repo.raw[review.ID]),
		)
	}

	var cagr *KPIInput
	for i := range fx.repo.inputs[review.ID] {
		if fx.repo.inputs[review.ID][i].KPIID == financial.KPIRevenueCAGR {
			cagr = &fx.repo.inputs[review.ID][i]
		}
	}
	if cagr == nil {
		t.Fatal("revenue_cagr input missing after ApplyFinancials")
	}
	if math.Abs(cagr.Value-10) > 1e-9 {
		t.Fatalf("revenue_cagr = %v, want 10", cagr.Value)
	}
}

func TestApplyFinancialsRejectsEmptyRevenue(t *testing.T) {
	fx := newFixture(t)
	review := fx.seedReview(t, "u1")

	_, err := fx.svc.ApplyFinancials(
		context.Background(),
		review.ID,
		"u1",
		false,
		StatementsFromRequest(FinancialsRequest{
			Revenue:   []float64{0, 0, 0},
			EBITDA:    []float64{0, 0, 0},
			NetProfit: []float64{0, 0, 0},
		}),
	)
	if !errors.Is(err, core.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
}

func TestSWOTReviewUsesStoredTrend(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	review := fx.seedReview(t, "u1")

	// revenue_growth 10 scores 50; the default benchmark 10 also scores
	// 50, so the verdict is "at" and the trend breaks the tie.
	_, err := fx.svc.PutInputs(ctx, review.ID, "u1", false, PutInputsRequest{
		Inputs: []KPIInputEntry{
			{KPIID: "revenue_growth", Value: 10},
			{KPIID: financial.KPIRevenueCAGR, Value: 6},
		},
	})
	if err != nil {
		t.Fatalf("PutInputs error: %v", err)
	}
	if _, err := fx.svc.ScoreReview(ctx, review.ID, "u1", false); err != nil {
		t.Fatalf("ScoreReview error: %v", err)
	}

	swot, err := fx.svc.SWOTReview(ctx, review.ID, "u1", false)
	if err != nil {
		t.Fatalf("SWOTReview error: %v", err)
	}

	found := false
	for _, fact := range swot.Strengths {
		if fact.KPIID == "revenue_growth" {
			found = true
		}
	}
	if !found {
		t.Fatalf(
			"revenue_growth at benchmark with improving trend should be a strength: %+v",
			swot,
		)
	}
}

func TestGenerateNarrativeRequiresAdvisorPlan(t *testing.T) {
	fx := newFixture(t)
	review := fx.seedReview(t, "u1")

	_, err := fx.svc.GenerateNarrative(
		context.Background(),
		review.ID,
		"u1",
		false,
	)
	if !errors.Is(err, core.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden without advisor plan", err)
	}
}

func TestGenerateNarrativeDegradesWhenUnavailable(t *testing.T) {
	fx := newFixture(t)
	fx.quota.advisor = true
	fx.narrator.err = fmt.Errorf(
		"llm timeout: %w",
		core.ErrNarrativeUnavailable,
	)
	review := fx.seedReview(t, "u1")

	resp, err := fx.svc.GenerateNarrative(
		context.Background(),
		review.ID,
		"u1",
		false,
	)
	if err != nil {
		t.Fatalf("GenerateNarrative error: %v, want graceful degrade", err)
	}

	if resp.Status != "unavailable" {
		t.Fatalf("status = %q, want unavailable", resp.Status)
	}
	if resp.Narrative != "" {
		t.Fatalf("narrative = %q, want empty", resp.Narrative)
	}
}

func TestGenerateNarrativeSuccess(t *testing.T) {
	fx := newFixture(t)
	fx.quota.advisor = true
	review := fx.seedReview(t, "u1")

	resp, err := fx.svc.GenerateNarrative(
		context.Background(),
		review.ID,
		"u1",
		false,
	)
	if err != nil {
		t.Fatalf("GenerateNarrative error: %v", err)
	}

	if resp.Status != "ok" || resp.Narrative != "looks healthy" {
		t.Fatalf("response = %+v, want ok with narrator text", resp)
	}
}

func TestExportReviewQuotaBeforeRender(t *testing.T) {
	fx := newFixture(t)
	fx.quota.exportErr = fmt.Errorf("export quota: %w", core.ErrQuotaExceeded)
	review := fx.seedReview(t, "u1")

	_, err := fx.svc.ExportReview(context.Background(), review.ID, "u1", false)
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
	if fx.renderer.calls != 0 {
		t.Fatal("renderer was invoked despite exhausted export quota")
	}
}

func TestExportReviewRendererFailureKeepsCredit(t *testing.T) {
	fx := newFixture(t)
	fx.renderer.err = fmt.Errorf(
		"render: %w",
		errors.New("upstream down"),
	)
	review := fx.seedReview(t, "u1")

	_, err := fx.svc.ExportReview(context.Background(), review.ID, "u1", false)
	if err == nil {
		t.Fatal("expected renderer error to surface")
	}

	// The credit stays burned; export failures are not refunded.
	if fx.quota.exportsBurned != 1 {
		t.Fatalf("exports burned = %d, want 1", fx.quota.exportsBurned)
	}
}

func TestExportReviewReturnsPDF(t *testing.T) {
	fx := newFixture(t)
	review := fx.seedReview(t, "u1")

	pdf, err := fx.svc.ExportReview(
		context.Background(),
		review.ID,
		"u1",
		false,
	)
	if err != nil {
		t.Fatalf("ExportReview error: %v", err)
	}

	if string(pdf) != "%PDF-1.7" {
		t.Fatalf("pdf = %q, want renderer output", pdf)
	}
	if fx.quota.exportsBurned != 1 {
		t.Fatalf("exports burned = %d, want 1", fx.quota.exportsBurned)
	}
}

func TestListReviewsAdminSeesAll(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.seedReview(t, "u1")
	fx.seedReview(t, "u2")

	mine, err := fx.svc.ListReviews(ctx, "u1", false)
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("owner sees %d reviews, want 1", len(mine))
	}

	all, err := fx.svc.ListReviews(ctx, "admin", true)
	if err != nil {
		t.Fatalf("ListReviews error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin sees %d reviews, want 2", len(all))
	}
}
