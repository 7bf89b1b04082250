package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/service"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// CreateCustomer handles POST /customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.customerService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondCreated(w, service.NewCustomerResponse(customer))
}

// Login handles POST /customers/login
func (h *CustomerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.CustomerLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.customerService.Authenticate(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// ListCustomers handles GET /customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.customerService.List(r.Context(), r.URL.Query().Get("store_id"), pageFromQuery(r))
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// GetCustomer handles GET /customers/{id}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.GetByID(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("store_id"))
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewCustomerResponse(customer))
}

// UpdateCustomer handles PUT /customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.customerService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondSuccess(w, service.NewCustomerResponse(customer))
}

// DeleteCustomer handles DELETE /customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customerService.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("store_id")); err != nil {
		handleError(w, r, err, h.logger)
		return
	}

	respondNoContent(w)
}
