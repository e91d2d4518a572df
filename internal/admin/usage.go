// AngelaMos | 2026
// usage.go

package admin

import (
	"context"
	"fmt"

	"github.com/angelamos/stratiq/internal/core"
)

type usageRepository struct {
	db core.DBTX
}

func NewUsageCounter(db core.DBTX) UsageCounter {
	return &usageRepository{db: db}
}

func (r *usageRepository) CountUsage(
	ctx context.Context,
) (UsageStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL)
				AS total_users,
			(SELECT COUNT(*) FROM users
				WHERE deleted_at IS NULL AND is_active = FALSE)
				AS pending_users,
			(SELECT COUNT(*) FROM reviews) AS total_reviews,
			(SELECT COUNT(DISTINCT review_id) FROM scores)
				AS scored_reviews`

	var row struct {
		TotalUsers    int `db:"total_users"`
		PendingUsers  int `db:"pending_users"`
		TotalReviews  int `db:"total_reviews"`
		ScoredReviews int `db:"scored_reviews"`
	}

	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return UsageStats{}, fmt.Errorf("count usage: %w", err)
	}

	return UsageStats{
		TotalUsers:    row.TotalUsers,
		PendingUsers:  row.PendingUsers,
		TotalReviews:  row.TotalReviews,
		ScoredReviews: row.ScoredReviews,
	}, nil
}
