package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/service"
	"github.com/Raymond9734/storefront-backend/internal/storage"
)

// UploadLimits bounds image uploads
type UploadLimits struct {
	MaxFileBytes int64
	MaxFiles     int
}

// ProductHandler handles product HTTP requests
type ProductHandler struct {
	productService service.ProductService
	images         storage.ImageStore
	limits         UploadLimits
	logger         *zap.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	productService service.ProductService,
	images storage.ImageStore,
	limits UploadLimits,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		images:         images,
		limits:         limits,
		logger:         logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondCreated(w, service.NewProductResponse(product))
}

// ListProducts handles GET /products, optionally filtered by category
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	storeID := query.Get("store_id")
	page := pageFromQuery(r)

	var (
		result *service.ProductListResult
		err    error
	)
	if category := query.Get("category"); category != "" {
		result, err = h.productService.ListByCategory(r.Context(), storeID, category, page)
	} else {
		result, err = h.productService.List(r.Context(), storeID, page)
	}
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// ListFeatured handles GET /products/featured
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.productService.ListFeatured(r.Context(), r.URL.Query().Get("store_id"), limit)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponses(products))
}

// ListLowStock handles GET /products/low-stock
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListLowStock(r.Context(), r.URL.Query().Get("store_id"))
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponses(products))
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("store_id"))
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponse(product))
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponse(product))
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("store_id")); err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondNoContent(w)
}

// UploadImage handles POST /products/{id}/upload-image
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	files, storeID, err := h.parseUpload(w, r, "image")
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}
	if len(files) != 1 {
		handleError(w, r, models.NewValidationError("image", "exactly one file is required"), h.logger)
		return
	}

	urls, err := h.saveAll(r, files)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	product, err := h.productService.UpdateImage(r.Context(), chi.URLParam(r, "id"), storeID, urls[0])
	if err != nil {
		h.discard(r, urls)
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponse(product))
}

// UploadImages handles POST /products/{id}/upload-images
func (h *ProductHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	files, storeID, err := h.parseUpload(w, r, "images")
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}
	if len(files) == 0 {
		handleError(w, r, models.NewValidationError("images", "at least one file is required"), h.logger)
		return
	}
	if len(files) > h.limits.MaxFiles {
		handleError(w, r, models.NewValidationError("images", fmt.Sprintf("at most %d files per request", h.limits.MaxFiles)), h.logger)
		return
	}

	urls, err := h.saveAll(r, files)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	product, err := h.productService.UpdateImages(r.Context(), chi.URLParam(r, "id"), storeID, urls)
	if err != nil {
		h.discard(r, urls)
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewProductResponse(product))
}

// parseUpload reads the multipart form and returns the files under field.
// store_id may come from the query string or a form value.
func (h *ProductHandler) parseUpload(w http.ResponseWriter, r *http.Request, field string) ([]*multipart.FileHeader, string, error) {
	// room for every file plus form overhead
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.limits.MaxFiles)*h.limits.MaxFileBytes+1<<20)

	if err := r.ParseMultipartForm(h.limits.MaxFileBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", models.NewValidationError(field, "upload too large")
		}
		return nil, "", models.NewValidationError(field, "invalid multipart form")
	}

	storeID := r.URL.Query().Get("store_id")
	if storeID == "" {
		storeID = r.FormValue("store_id")
	}
	if storeID == "" {
		return nil, "", models.NewValidationError("store_id", "is required")
	}

	return r.MultipartForm.File[field], storeID, nil
}

func (h *ProductHandler) saveAll(r *http.Request, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		data, err := storage.ReadUpload(fh, h.limits.MaxFileBytes)
		if err != nil {
			h.discard(r, urls)
			return nil, err
		}
		url, err := h.images.Save(r.Context(), data, fh.Header.Get("Content-Type"))
		if err != nil {
			h.discard(r, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// discard removes files saved for a request that did not complete
func (h *ProductHandler) discard(r *http.Request, urls []string) {
	for _, url := range urls {
		if err := h.images.Delete(r.Context(), url); err != nil {
			h.logger.Warn("failed to remove orphaned image", zap.String("url", url), zap.Error(err))
		}
	}
}
