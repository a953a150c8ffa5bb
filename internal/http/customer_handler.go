package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CustomerHandler struct{}

func NewCustomerHandler() *CustomerHandler {
	return &CustomerHandler{}
}

// GET /api/v1/customer
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	respondJSON(w, http.StatusOK, s.Customer())
}

// PUT /api/v1/customer replaces the whole profile.
func (h *CustomerHandler) PutCustomer(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	var c domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.SetCustomer(c)
	respondJSON(w, http.StatusOK, c)
}
