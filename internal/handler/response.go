package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message. Field names the offending
// input for validation errors.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, we can't do much at this point
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// respondError writes a standard error response
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondFieldError(w, status, code, message, "")
}

func respondFieldError(w http.ResponseWriter, status int, code, message, field string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, response)
}

// respondSuccess writes a successful response with 200 OK
func respondSuccess(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a successful response with 201 Created
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondNoContent writes an empty 204 response
func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes the request body, answering 400 on malformed input
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return false
	}
	return true
}

// pageFromQuery reads page and limit, falling back to defaults
func pageFromQuery(r *http.Request) models.PageRequest {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	return models.NewPageRequest(page, limit)
}
