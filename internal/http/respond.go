package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/menu"
	"github.com/fjod/go_cart/storefront/internal/order"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// respondDomainError maps storefront errors to HTTP responses.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		menuErr       *backend.MenuLoadError
		validationErr *order.ValidationError
		submissionErr *order.SubmissionError
	)

	switch {
	case errors.As(err, &menuErr):
		respondError(w, http.StatusBadGateway, "menu_unavailable", menuErr.Error())
	case errors.Is(err, menu.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "pizza_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidSize):
		respondError(w, http.StatusBadRequest, "invalid_size", err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidIndex):
		respondError(w, http.StatusBadRequest, "invalid_index", err.Error())
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "order validation failed",
			Code:    "validation_failed",
			Details: validationErr.Reason,
		})
	case errors.Is(err, order.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.As(err, &submissionErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   submissionErr.Error(),
			Code:    "submission_failed",
			Details: submissionErr.Reason,
		})
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
