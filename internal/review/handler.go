// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/stratiq/internal/core"
	"github.com/angelamos/stratiq/internal/export"
	"github.com/angelamos/stratiq/internal/financial"
	"github.com/angelamos/stratiq/internal/middleware"
)

const maxUploadBytes = 8 << 20

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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/reviews", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequirePermission(middleware.PermReviewCreate)).
			Post("/", h.Create)
		r.With(middleware.RequirePermission(middleware.PermReviewView)).
			Get("/", h.List)

		r.Route("/{reviewID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(middleware.PermReviewView)).
				Get("/", h.Get)
			r.With(middleware.RequirePermission(middleware.PermReviewCreate)).
				Delete("/", h.Delete)

			r.With(middleware.RequirePermission(middleware.PermReviewInput)).
				Put("/inputs", h.PutInputs)
			r.With(middleware.RequirePermission(middleware.PermReviewInput)).
				Post("/score", h.Score)
			r.With(middleware.RequirePermission(middleware.PermReviewInput)).
				Put("/financials", h.PutFinancials)
			r.With(middleware.RequirePermission(middleware.PermReviewInput)).
				Post("/financials/import", h.ImportFinancials)

			r.With(middleware.RequirePermission(middleware.PermBenchmarkView)).
				Get("/benchmark", h.Benchmark)
			r.With(middleware.RequirePermission(middleware.PermSWOTView)).
				Get("/swot", h.SWOT)
			r.With(middleware.RequirePermission(middleware.PermNarrative)).
				Post("/narrative", h.Narrative)
			r.With(middleware.RequirePermission(middleware.PermExport)).
				Post("/export", h.Export)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	review, err := h.service.CreateReview(
		ctx,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(review))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviews, err := h.service.ListReviews(
		ctx,
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}

	core.OK(w, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	review, err := h.service.GetReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.service.DeleteReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) PutInputs(w http.ResponseWriter, r *http.Request) {
	var req PutInputsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	resp, err := h.service.PutInputs(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.service.ScoreReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) PutFinancials(w http.ResponseWriter, r *http.Request) {
	var req FinancialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	resp, err := h.service.ApplyFinancials(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		StatementsFromRequest(req),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

// ImportFinancials accepts the xlsx template as a multipart upload
// under the "file" field.
func (h *Handler) ImportFinancials(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		core.BadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "missing file upload")
		return
	}
	defer file.Close()

	st, err := financial.ParseWorkbook(file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	resp, err := h.service.ApplyFinancials(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
		st,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Benchmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.BenchmarkReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) SWOT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	swot, err := h.service.SWOTReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, swot)
}

func (h *Handler) Narrative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.service.GenerateNarrative(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pdf, err := h.service.ExportReview(
		ctx,
		chi.URLParam(r, "reviewID"),
		middleware.GetUserID(ctx),
		middleware.IsAdmin(ctx),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set(
		"Content-Disposition",
		`attachment; filename="business-review.pdf"`,
	)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client disconnects mid-stream are not actionable
	_, _ = w.Write(pdf)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "review")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrQuotaExceeded):
		core.JSONError(w, core.QuotaExceededError("plan"))
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrMissingInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, export.ErrRendererUnavailable):
		core.JSONError(w, core.NewAppError(
			err,
			"pdf renderer unavailable, try again later",
			http.StatusBadGateway,
			"EXPORT_UNAVAILABLE",
		))
	default:
		core.InternalServerError(w, err)
	}
}
