// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/stratiq/internal/core"
)

type Repository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Review, error)
	ListAll(ctx context.Context) ([]Review, error)
	Delete(ctx context.Context, id string) error

	UpsertInput(ctx context.Context, input *KPIInput) error
	GetInputs(ctx context.Context, reviewID string) ([]KPIInput, error)

	UpsertScore(ctx context.Context, score *Score) error
	GetScores(ctx context.Context, reviewID string) ([]Score, error)

	InsertFinancialRaw(ctx context.Context, line *FinancialRaw) error
	GetFinancialRaw(ctx context.Context, reviewID string) ([]FinancialRaw, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository binds the queries to db, which may be a pool or an
// open transaction; the scoring service rebinds inside core.InTx.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, owner_user_id, company_name, industry)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, review, query,
		review.ID,
		review.OwnerUserID,
		review.CompanyName,
		review.Industry,
	)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Review, error) {
	query := `
		SELECT id, owner_user_id, company_name, industry,
		       created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var review Review
	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

func (r *repository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]Review, error) {
	query := `
		SELECT id, owner_user_id, company_name, industry,
		       created_at, updated_at
		FROM reviews
		WHERE owner_user_id = $1
		ORDER BY created_at DESC`

	var reviews []Review
	if err := r.db.SelectContext(ctx, &reviews, query, ownerID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Review, error) {
	query := `
		SELECT id, owner_user_id, company_name, industry,
		       created_at, updated_at
		FROM reviews
		ORDER BY created_at DESC`

	var reviews []Review
	if err := r.db.SelectContext(ctx, &reviews, query); err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}

	return reviews, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

// UpsertInput overwrites on conflict: (review_id, kpi_id) is the
// natural key and re-entered values replace earlier ones.
func (r *repository) UpsertInput(ctx context.Context, input *KPIInput) error {
	query := `
		INSERT INTO kpi_inputs (id, review_id, kpi_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (review_id, kpi_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, input, query,
		input.ID,
		input.ReviewID,
		input.KPIID,
		input.Value,
	)
	if err != nil {
		return fmt.Errorf("upsert kpi input: %w", err)
	}

	return nil
}

func (r *repository) GetInputs(
	ctx context.Context,
	reviewID string,
) ([]KPIInput, error) {
	query := `
		SELECT id, review_id, kpi_id, value, created_at, updated_at
		FROM kpi_inputs
		WHERE review_id = $1
		ORDER BY kpi_id`

	var inputs []KPIInput
	if err := r.db.SelectContext(ctx, &inputs, query, reviewID); err != nil {
		return nil, fmt.Errorf("get kpi inputs: %w", err)
	}

	return inputs, nil
}

func (r *repository) UpsertScore(ctx context.Context, score *Score) error {
	query := `
		INSERT INTO scores (id, review_id, kpi_id, pillar, raw_value, score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (review_id, kpi_id)
		DO UPDATE SET
			pillar = EXCLUDED.pillar,
			raw_value = EXCLUDED.raw_value,
			score = EXCLUDED.score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, score, query,
		score.ID,
		score.ReviewID,
		score.KPIID,
		score.Pillar,
		score.RawValue,
		score.Score,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

func (r *repository) GetScores(
	ctx context.Context,
	reviewID string,
) ([]Score, error) {
	query := `
		SELECT id, review_id, kpi_id, pillar, raw_value, score,
		       created_at, updated_at
		FROM scores
		WHERE review_id = $1
		ORDER BY kpi_id`

	var scores []Score
	if err := r.db.SelectContext(ctx, &scores, query, reviewID); err != nil {
		return nil, fmt.Errorf("get scores: %w", err)
	}

	return scores, nil
}

func (r *repository) InsertFinancialRaw(
	ctx context.Context,
	line *FinancialRaw,
) error {
	query := `
		INSERT INTO financial_raw (id, review_id, metric, value)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &line.CreatedAt, query,
		line.ID,
		line.ReviewID,
		line.Metric,
		line.Value,
	)
	if err != nil {
		return fmt.Errorf("insert financial raw: %w", err)
	}

	return nil
}

func (r *repository) GetFinancialRaw(
	ctx context.Context,
	reviewID string,
) ([]FinancialRaw, error) {
	query := `
		SELECT id, review_id, metric, value, created_at
		FROM financial_raw
		WHERE review_id = $1
		ORDER BY metric`

	var lines []FinancialRaw
	if err := r.db.SelectContext(ctx, &lines, query, reviewID); err != nil {
		return nil, fmt.Errorf("get financial raw: %w", err)
	}

	return lines, nil
}
