// AngelaMos | 2026
// dto.go

package subscription

import (
	"time"
)

type AssignPlanRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Plan   string `json:"plan"    validate:"required,oneof=starter pro enterprise"`
}

type SubscriptionResponse struct {
	ID          string    `json:"id"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	MaxReviews  int       `json:"max_reviews"`
	MaxExports  int       `json:"max_exports"`
	UsedReviews int       `json:"used_reviews"`
	UsedExports int       `json:"used_exports"`
	Advisor     bool      `json:"advisor"`
	CreatedAt   time.Time `json:"created_at"`
}

type PlanInfo struct {
	Name       string `json:"name"`
	MaxReviews int    `json:"max_reviews"`
	MaxExports int    `json:"max_exports"`
	Advisor    bool   `json:"advisor"`
}

type PlanCatalogResponse struct {
	Plans []PlanInfo `json:"plans"`
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:          s.ID,
		Plan:        s.Plan,
		Status:      s.Status,
		MaxReviews:  s.MaxReviews,
		MaxExports:  s.MaxExports,
		UsedReviews: s.UsedReviews,
		UsedExports: s.UsedExports,
		Advisor:     s.Advisor,
		CreatedAt:   s.CreatedAt,
	}
}
