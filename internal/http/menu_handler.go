package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MenuService is the menu side the handlers need.
type MenuService interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
	Refresh(ctx context.Context) ([]domain.MenuItem, error)
	Lookup(ctx context.Context, id string) (domain.MenuItem, error)
	SeedSamples(ctx context.Context) ([]domain.MenuItem, error)
}

type MenuHandler struct {
	menu    MenuService
	timeout time.Duration
}

func NewMenuHandler(menu MenuService, timeout time.Duration) *MenuHandler {
	return &MenuHandler{
		menu:    menu,
		timeout: timeout,
	}
}

// GET /api/v1/menu
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.Menu(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// POST /api/v1/menu/refresh
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.Refresh(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// POST /api/v1/menu/samples
func (h *MenuHandler) SeedSamples(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.menu.SeedSamples(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, items)
}
