// AngelaMos | 2026
// handler.go

package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/subscription", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetMine)
		r.Get("/plans", h.GetPlans)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", h.AssignPlan)
		})
	})
}

// GetMine returns the caller's active subscription with usage counters,
// provisioning the entry plan on first request.
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}

func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	core.OK(w, PlanCatalogResponse{Plans: h.service.PlanCatalog()})
}

// AssignPlan sets a user's plan (admin only).
func (h *Handler) AssignPlan(w http.ResponseWriter, r *http.Request) {
	var req AssignPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.AssignPlan(r.Context(), req.UserID, req.Plan)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown plan")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}
