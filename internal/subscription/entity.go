// AngelaMos | 2026
// entity.go

package subscription

import (
	"time"
)

// Subscription is one plan assignment with its usage counters. Limits
// are snapshotted from the plan catalog at assignment time so later
// catalog changes never shrink a paid-for quota.
type Subscription struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Plan        string     `db:"plan"`
	Status      string     `db:"status"`
	MaxReviews  int        `db:"max_reviews"`
	MaxExports  int        `db:"max_exports"`
	UsedReviews int        `db:"used_reviews"`
	UsedExports int        `db:"used_exports"`
	Advisor     bool       `db:"advisor"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	CanceledAt  *time.Time `db:"canceled_at"`
}

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

const (
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) ReviewsRemaining() int {
	if r := s.MaxReviews - s.UsedReviews; r > 0 {
		return r
	}
	return 0
}

func (s *Subscription) ExportsRemaining() int {
	if r := s.MaxExports - s.UsedExports; r > 0 {
		return r
	}
	return 0
}
