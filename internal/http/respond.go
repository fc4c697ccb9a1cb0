package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahmedharby13/Evouqe-Project/internal/service"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

// serviceErrors maps sentinel errors to HTTP status and error code. Order
// matters: the first match wins.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_argument"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{service.ErrSizeUnavailable, http.StatusBadRequest, "size_unavailable"},
	{service.ErrPriceMismatch, http.StatusBadRequest, "price_mismatch"},
	{service.ErrTotalMismatch, http.StatusBadRequest, "total_mismatch"},
	{service.ErrEmptyOrder, http.StatusBadRequest, "empty_order"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{service.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
	{service.ErrInvalidToken, http.StatusBadRequest, "invalid_token"},
	{service.ErrTooManyImages, http.StatusBadRequest, "too_many_images"},
	{service.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrEmailNotVerified, http.StatusForbidden, "email_not_verified"},
	{service.ErrAccountNotFound, http.StatusNotFound, "not_found"},
	{service.ErrProductNotFound, http.StatusNotFound, "not_found"},
	{service.ErrOrderNotFound, http.StatusNotFound, "not_found"},
	{service.ErrEmailTaken, http.StatusConflict, "already_exists"},
}

// handleServiceError converts a service error into the JSON error body.
// Unknown errors are logged and answered with a generic message.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *service.ProviderError
	if errors.As(err, &perr) {
		slog.WarnContext(r.Context(), "provider failure", "provider", perr.Provider, "error", perr.Err)
		respondError(w, http.StatusBadGateway, "provider_error", perr.Error())
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			respondError(w, m.status, m.code, err.Error())
			return
		}
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
