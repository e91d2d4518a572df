// AngelaMos | 2026
// service_test.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelamos/stratiq/internal/config"
	"github.com/angelamos/stratiq/internal/core"
)

type fakeRepo struct {
	subs map[string]*Subscription
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{subs: make(map[string]*Subscription)}
}

func (f *fakeRepo) Create(_ context.Context, sub *Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeRepo) GetActiveByUserID(
	_ context.Context,
	userID string,
) (*Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok || sub.Status != StatusActive {
		return nil, fmt.Errorf("subscription: %w", core.ErrNotFound)
	}
	return sub, nil
}

func (f *fakeRepo) CancelActive(_ context.Context, userID string) error {
	if sub, ok := f.subs[userID]; ok {
		sub.Status = StatusCanceled
	}
	return nil
}

func (f *fakeRepo) ConsumeReview(
	_ context.Context,
	userID string,
) (bool, error) {
	sub, ok := f.subs[userID]
	if !ok || sub.Status != StatusActive ||
		sub.UsedReviews >= sub.MaxReviews {
		return false, nil
	}
	sub.UsedReviews++
	return true, nil
}

func (f *fakeRepo) ConsumeExport(
	_ context.Context,
	userID string,
) (bool, error) {
	sub, ok := f.subs[userID]
	if !ok || sub.Status != StatusActive ||
		sub.UsedExports >= sub.MaxExports {
		return false, nil
	}
	sub.UsedExports++
	return true, nil
}

func testPlans() config.PlansConfig {
	return config.PlansConfig{
		PlanStarter: {MaxReviews: 2, MaxExports: 1, Advisor: false},
		PlanPro:     {MaxReviews: 10, MaxExports: 5, Advisor: true},
	}
}

func TestAssignPlanSnapshotsLimits(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testPlans())

	sub, err := svc.AssignPlan(context.Background(), "u1", PlanPro)
	if err != nil {
		t.Fatalf("AssignPlan error: %v", err)
	}

	if sub.MaxReviews != 10 || sub.MaxExports != 5 || !sub.Advisor {
		t.Fatalf("limits not snapshotted from plan config: %+v", sub)
	}
	if sub.Status != StatusActive {
		t.Fatalf("status = %s, want active", sub.Status)
	}
}

func TestAssignPlanUnknownPlan(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())

	_, err := svc.AssignPlan(context.Background(), "u1", "platinum")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestAssignPlanReplacesActive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testPlans())
	ctx := context.Background()

	first, err := svc.AssignPlan(ctx, "u1", PlanStarter)
	if err != nil {
		t.Fatalf("AssignPlan error: %v", err)
	}
	if err := svc.ConsumeReview(ctx, "u1", false); err != nil {
		t.Fatalf("ConsumeReview error: %v", err)
	}

	second, err := svc.AssignPlan(ctx, "u1", PlanPro)
	if err != nil {
		t.Fatalf("AssignPlan error: %v", err)
	}

	if second.ID == first.ID {
		t.Fatal("upgrade should create a fresh subscription row")
	}
	if second.UsedReviews != 0 {
		t.Fatalf("usage = %d, want reset to 0", second.UsedReviews)
	}
}

func TestGetOrCreateProvisionsStarter(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testPlans())

	sub, err := svc.GetOrCreate(context.Background(), "fresh-user")
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	if sub.Plan != PlanStarter {
		t.Fatalf("plan = %s, want starter", sub.Plan)
	}
	if _, ok := repo.subs["fresh-user"]; !ok {
		t.Fatal("starter subscription was not persisted")
	}
}

func TestConsumeReviewQuota(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())
	ctx := context.Background()

	// Starter allows 2 reviews; first touch auto-provisions.
	for i := 0; i < 2; i++ {
		if err := svc.ConsumeReview(ctx, "u1", false); err != nil {
			t.Fatalf("ConsumeReview %d error: %v", i, err)
		}
	}

	err := svc.ConsumeReview(ctx, "u1", false)
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
}

func TestConsumeExportQuota(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())
	ctx := context.Background()

	if err := svc.ConsumeExport(ctx, "u1", false); err != nil {
		t.Fatalf("ConsumeExport error: %v", err)
	}

	err := svc.ConsumeExport(ctx, "u1", false)
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
}

func TestAdminBypassesQuota(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, testPlans())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := svc.ConsumeReview(ctx, "admin", true); err != nil {
			t.Fatalf("admin ConsumeReview error: %v", err)
		}
		if err := svc.ConsumeExport(ctx, "admin", true); err != nil {
			t.Fatalf("admin ConsumeExport error: %v", err)
		}
	}

	// Admin consumption must not provision or touch any subscription.
	if len(repo.subs) != 0 {
		t.Fatalf("admin usage created subscriptions: %v", repo.subs)
	}
}

func TestHasAdvisorAccess(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())
	ctx := context.Background()

	ok, err := svc.HasAdvisorAccess(ctx, "u1", false)
	if err != nil {
		t.Fatalf("HasAdvisorAccess error: %v", err)
	}
	if ok {
		t.Fatal("starter plan should not include the advisor")
	}

	if _, err := svc.AssignPlan(ctx, "u1", PlanPro); err != nil {
		t.Fatalf("AssignPlan error: %v", err)
	}

	ok, err = svc.HasAdvisorAccess(ctx, "u1", false)
	if err != nil {
		t.Fatalf("HasAdvisorAccess error: %v", err)
	}
	if !ok {
		t.Fatal("pro plan should include the advisor")
	}

	ok, err = svc.HasAdvisorAccess(ctx, "someone", true)
	if err != nil || !ok {
		t.Fatalf("admin advisor access = %v, %v; want true, nil", ok, err)
	}
}

func TestActivePlanDefaultsToStarter(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())
	ctx := context.Background()

	if plan := svc.ActivePlan(ctx, "nobody"); plan != PlanStarter {
		t.Fatalf("plan = %s, want starter", plan)
	}

	if _, err := svc.AssignPlan(ctx, "u1", PlanPro); err != nil {
		t.Fatalf("AssignPlan error: %v", err)
	}
	if plan := svc.ActivePlan(ctx, "u1"); plan != PlanPro {
		t.Fatalf("plan = %s, want pro", plan)
	}
}

func TestPlanCatalogSorted(t *testing.T) {
	svc := NewService(newFakeRepo(), testPlans())

	catalog := svc.PlanCatalog()
	if len(catalog) != 2 {
		t.Fatalf("got %d plans, want 2", len(catalog))
	}
	if catalog[0].Name != PlanPro || catalog[1].Name != PlanStarter {
		t.Fatalf(
			"catalog not name-sorted: %s, %s",
			catalog[0].Name,
			catalog[1].Name,
		)
	}
}
