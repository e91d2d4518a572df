// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelamos/stratiq/internal/config"
	"github.com/angelamos/stratiq/internal/core"
)

type Service struct {
	repo  Repository
	plans config.PlansConfig
}

func NewService(repo Repository, plans config.PlansConfig) *Service {
	return &Service{repo: repo, plans: plans}
}

// AssignPlan cancels any active subscription and starts a fresh one on
// the requested plan. Usage counters reset with the new row; a user
// holds at most one active subscription.
func (s *Service) AssignPlan(
	ctx context.Context,
	userID, plan string,
) (*Subscription, error) {
	planCfg, ok := s.plans[plan]
	if !ok {
		return nil, fmt.Errorf(
			"assign plan: unknown plan %q: %w",
			plan,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.CancelActive(ctx, userID); err != nil {
		return nil, err
	}

	sub := &Subscription{
		ID:         uuid.New().String(),
		UserID:     userID,
		Plan:       plan,
		Status:     StatusActive,
		MaxReviews: planCfg.MaxReviews,
		MaxExports: planCfg.MaxExports,
		Advisor:    planCfg.Advisor,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// GetOrCreate returns the user's active subscription, provisioning the
// entry plan on first touch so every account has usage accounting.
func (s *Service) GetOrCreate(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	return s.AssignPlan(ctx, userID, PlanStarter)
}

// ActivePlan implements the plan claim lookup for token issuance.
func (s *Service) ActivePlan(ctx context.Context, userID string) string {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return PlanStarter
	}
	return sub.Plan
}

// ConsumeReview burns one review credit. Admins are exempt from quota
// accounting entirely.
func (s *Service) ConsumeReview(
	ctx context.Context,
	userID string,
	isAdmin bool,
) error {
	if isAdmin {
		return nil
	}

	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	consumed, err := s.repo.ConsumeReview(ctx, userID)
	if err != nil {
		return err
	}

	if !consumed {
		return fmt.Errorf("review quota: %w", core.ErrQuotaExceeded)
	}

	return nil
}

func (s *Service) ConsumeExport(
	ctx context.Context,
	userID string,
	isAdmin bool,
) error {
	if isAdmin {
		return nil
	}

	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	consumed, err := s.repo.ConsumeExport(ctx, userID)
	if err != nil {
		return err
	}

	if !consumed {
		return fmt.Errorf("export quota: %w", core.ErrQuotaExceeded)
	}

	return nil
}

// HasAdvisorAccess reports whether the user's plan includes the
// narrative advisor. Admins always have access.
func (s *Service) HasAdvisorAccess(
	ctx context.Context,
	userID string,
	isAdmin bool,
) (bool, error) {
	if isAdmin {
		return true, nil
	}

	sub, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}

	return sub.Advisor, nil
}

func (s *Service) PlanCatalog() []PlanInfo {
	names := make([]string, 0, len(s.plans))
	for name := range s.plans {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PlanInfo, 0, len(names))
	for _, name := range names {
		p := s.plans[name]
		out = append(out, PlanInfo{
			Name:       name,
			MaxReviews: p.MaxReviews,
			MaxExports: p.MaxExports,
			Advisor:    p.Advisor,
		})
	}

	return out
}
