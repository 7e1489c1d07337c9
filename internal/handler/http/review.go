package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinoddotcom/ecom-learn-backend/internal/service"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/httputil"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/middleware"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/validator"
)

// ReviewHandler handles HTTP requests for product review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// UpsertReviewRequest is the JSON request body for submitting a review.
type UpsertReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// List handles GET /api/v1/products/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}

// Upsert handles PUT /api/v1/products/{id}/reviews. Submitting again for the
// same product replaces the caller's earlier review.
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	product, err := h.service.Upsert(ctx, service.UpsertReviewInput{
		ProductID: chi.URLParam(r, "id"),
		UserID:    middleware.UserIDFromContext(ctx),
		UserName:  middleware.UserNameFromContext(ctx),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/{id}/reviews/{reviewId}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	product, err := h.service.Delete(ctx,
		chi.URLParam(r, "id"),
		chi.URLParam(r, "reviewId"),
		middleware.UserIDFromContext(ctx),
		middleware.RoleFromContext(ctx),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}
