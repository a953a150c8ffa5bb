package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Recorder receives cart and order outcomes for metrics.
type Recorder interface {
	CartMutation(op string)
	Submission(err error)
}

type noopRecorder struct{}

func (noopRecorder) CartMutation(string) {}
func (noopRecorder) Submission(error)    {}

type CartHandler struct {
	menu    MenuService
	metrics Recorder
	timeout time.Duration
}

func NewCartHandler(menu MenuService, metrics Recorder, timeout time.Duration) *CartHandler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &CartHandler{
		menu:    menu,
		metrics: metrics,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	PizzaID domain.ID `json:"pizza_id"`
	Size    string    `json:"size,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Delta *int `json:"delta"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	respondJSON(w, http.StatusOK, s.Cart())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PizzaID.IsZero() {
		respondError(w, http.StatusBadRequest, "invalid_pizza_id", "pizza_id is required")
		return
	}

	size := domain.DefaultSize
	if req.Size != "" {
		parsed, err := domain.ParseSize(req.Size)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		size = parsed
	}

	item, err := h.menu.Lookup(ctx, req.PizzaID.String())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	s.AddItem(item, size)
	h.metrics.CartMutation("add")

	respondJSON(w, http.StatusCreated, s.Cart())
}

// PATCH /api/v1/cart/items/{pizza_id}/{size}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	key, err := lineKeyFromPath(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	delta, ok := decodeDelta(w, r)
	if !ok {
		return
	}

	if err := s.UpdateQuantity(key, delta); err != nil {
		respondDomainError(w, err)
		return
	}
	h.metrics.CartMutation("update")

	respondJSON(w, http.StatusOK, s.Cart())
}

// PATCH /api/v1/cart/lines/{index}
func (h *CartHandler) UpdateQuantityAt(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return
	}

	delta, ok := decodeDelta(w, r)
	if !ok {
		return
	}

	if err := s.UpdateQuantityAt(index, delta); err != nil {
		respondDomainError(w, err)
		return
	}
	h.metrics.CartMutation("update")

	respondJSON(w, http.StatusOK, s.Cart())
}

// DELETE /api/v1/cart/items/{pizza_id}/{size}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	key, err := lineKeyFromPath(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := s.RemoveLine(key); err != nil {
		respondDomainError(w, err)
		return
	}
	h.metrics.CartMutation("remove")

	respondJSON(w, http.StatusOK, s.Cart())
}

func lineKeyFromPath(r *http.Request) (domain.LineKey, error) {
	size, err := domain.ParseSize(chi.URLParam(r, "size"))
	if err != nil {
		return domain.LineKey{}, err
	}
	return domain.LineKey{PizzaID: chi.URLParam(r, "pizza_id"), Size: size}, nil
}

func decodeDelta(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return 0, false
	}
	if req.Delta == nil {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta is required")
		return 0, false
	}
	return *req.Delta, true
}
