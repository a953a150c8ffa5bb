package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/receipts"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	receipts receipts.Repository
	metrics  Recorder
	log      *zap.Logger
	timeout  time.Duration
}

// NewOrdersHandler builds the order endpoints. repo may be nil when
// receipts are disabled.
func NewOrdersHandler(repo receipts.Repository, metrics Recorder, log *zap.Logger, timeout time.Duration) *OrdersHandler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrdersHandler{
		receipts: repo,
		metrics:  metrics,
		log:      log,
		timeout:  timeout,
	}
}

// POST /api/v1/orders
func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	// a started submission runs to completion; the backend client timeout bounds it
	ctx := context.WithoutCancel(r.Context())

	conf, err := s.PlaceOrder(ctx)
	h.metrics.Submission(err)
	if err != nil {
		h.log.Info("order not placed",
			zap.String("session_id", s.ID),
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(err))
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, conf)
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, http.StatusBadRequest, "missing_session", "no session")
		return
	}

	if h.receipts == nil {
		respondJSON(w, http.StatusOK, []receipts.Receipt{})
		return
	}

	list, err := h.receipts.ListBySession(ctx, s.ID, receipts.DefaultListLimit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}
