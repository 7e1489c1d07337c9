package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinoddotcom/ecom-learn-backend/internal/domain"
	"github.com/vinoddotcom/ecom-learn-backend/internal/query"
	"github.com/vinoddotcom/ecom-learn-backend/internal/service"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/httputil"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/middleware"
	"github.com/vinoddotcom/ecom-learn-backend/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service        *service.ProductService
	defaultPerPage int
	logger         *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, defaultPerPage int, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, defaultPerPage: defaultPerPage, logger: logger}
}

// ImageRequest is one image in a product create/update request.
type ImageRequest struct {
	URL     string `json:"url" validate:"required,url"`
	AltText string `json:"alt_text" validate:"omitempty,max=200"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"omitempty,max=5000"`
	Category    string         `json:"category" validate:"required,min=1,max=100"`
	Price       int64          `json:"price" validate:"gte=0"`
	Stock       int            `json:"stock" validate:"gte=0"`
	Images      []ImageRequest `json:"images" validate:"omitempty,dive"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description" validate:"omitempty,max=5000"`
	Category    *string        `json:"category" validate:"omitempty,min=1,max=100"`
	Price       *int64         `json:"price" validate:"omitempty,gte=0"`
	Stock       *int           `json:"stock" validate:"omitempty,gte=0"`
	Images      []ImageRequest `json:"images" validate:"omitempty,dive"`
}

// ListProductsResponse is the listing payload: one page of products plus the
// unfiltered total, the page size, and the filtered total.
type ListProductsResponse struct {
	Success               bool             `json:"success"`
	Products              []domain.Product `json:"products"`
	ProductsCount         int64            `json:"productsCount"`
	ResultPerPage         int              `json:"resultPerPage"`
	FilteredProductsCount int64            `json:"filteredProductsCount"`
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := query.Parse(r.URL.Query(), query.ProductSchema(), h.defaultPerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	listing, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListProductsResponse{
		Success:               true,
		Products:              listing.Products,
		ProductsCount:         listing.TotalCount,
		ResultPerPage:         params.Limit,
		FilteredProductsCount: listing.FilteredCount,
	})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// Create handles POST /api/v1/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      toImages(req.Images),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// Update handles PUT /api/v1/admin/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.Images != nil {
		input.Images = toImages(req.Images)
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/admin/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func toImages(reqs []ImageRequest) []domain.Image {
	images := make([]domain.Image, 0, len(reqs))
	for _, img := range reqs {
		images = append(images, domain.Image{URL: img.URL, AltText: img.AltText})
	}
	return images
}
