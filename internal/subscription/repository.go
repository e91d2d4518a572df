// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/stratiq/internal/core"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
	CancelActive(ctx context.Context, userID string) error
	ConsumeReview(ctx context.Context, userID string) (bool, error)
	ConsumeExport(ctx context.Context, userID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, plan, status, max_reviews, max_exports, advisor
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, sub, query,
		sub.ID,
		sub.UserID,
		sub.Plan,
		sub.Status,
		sub.MaxReviews,
		sub.MaxExports,
		sub.Advisor,
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

func (r *repository) GetActiveByUserID(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	query := `
		SELECT id, user_id, plan, status, max_reviews, max_exports,
		       used_reviews, used_exports, advisor,
		       created_at, updated_at, canceled_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &sub, nil
}

func (r *repository) CancelActive(ctx context.Context, userID string) error {
	query := `
		UPDATE subscriptions
		SET status = 'canceled', canceled_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	return nil
}

// ConsumeReview burns one review credit. The guard lives in the WHERE
// clause so concurrent consumers can never push usage past the limit;
// zero rows affected means the quota is spent.
func (r *repository) ConsumeReview(
	ctx context.Context,
	userID string,
) (bool, error) {
	query := `
		UPDATE subscriptions
		SET used_reviews = used_reviews + 1, updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'
			AND used_reviews < max_reviews`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("consume review quota: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume review quota: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ConsumeExport(
	ctx context.Context,
	userID string,
) (bool, error) {
	query := `
		UPDATE subscriptions
		SET used_exports = used_exports + 1, updated_at = NOW()
		WHERE user_id = $1 AND status = 'active'
			AND used_exports < max_exports`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("consume export quota: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume export quota: %w", err)
	}

	return rows > 0, nil
}
