package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// Session owns one shopper's cart, customer profile and order submitter.
// Requests for the same session may arrive concurrently, so every access
// to the cart goes through mu.
type Session struct {
	ID string

	mu        sync.Mutex
	cart      *cart.Store
	customer  domain.Customer
	lastOrder *domain.OrderConfirmation

	submitter *order.Submitter
	lastSeen  atomic.Int64
}

type CartView struct {
	Lines      []domain.CartLine         `json:"lines"`
	Totals     domain.Totals             `json:"totals"`
	ItemCount  int                       `json:"item_count"`
	Submitting bool                      `json:"submitting"`
	LastOrder  *domain.OrderConfirmation `json:"last_order,omitempty"`
}

func New(id string, submitter *order.Submitter) *Session {
	s := &Session{
		ID:        id,
		cart:      cart.NewStore(),
		submitter: submitter,
	}
	s.touch(time.Now())
	return s
}

func (s *Session) AddItem(item domain.MenuItem, size domain.Size) domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.AddItem(item, size)
}

func (s *Session) UpdateQuantity(key domain.LineKey, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(key, delta)
}

func (s *Session) UpdateQuantityAt(index, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantityAt(index, delta)
}

func (s *Session) RemoveLine(key domain.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Remove(key)
}

// Cart returns the current lines with freshly computed totals.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.Lines()
	view := CartView{
		Lines:      lines,
		Totals:     pricing.ComputeTotals(lines),
		ItemCount:  s.cart.ItemCount(),
		Submitting: s.submitter.Submitting(),
	}
	if s.lastOrder != nil {
		last := *s.lastOrder
		view.LastOrder = &last
	}
	return view
}

func (s *Session) Customer() domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

func (s *Session) SetCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = c
}

// PlaceOrder submits the cart. The session lock is not held while the
// backend call is in flight; the submitter rejects overlapping calls.
func (s *Session) PlaceOrder(ctx context.Context) (domain.OrderConfirmation, error) {
	s.mu.Lock()
	customer := s.customer
	s.mu.Unlock()

	return s.submitter.PlaceOrder(ctx, customer, lockedCart{s})
}

func (s *Session) touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// lockedCart lets the submitter read and clear the cart under the session lock.
type lockedCart struct {
	s *Session
}

func (c lockedCart) Lines() []domain.CartLine {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.lastOrder = nil
	return c.s.cart.Lines()
}

func (c lockedCart) Clear() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.cart.Clear()
}

// ClearConfirmed empties the cart and stores the confirmation under one lock.
func (c lockedCart) ClearConfirmed(conf domain.OrderConfirmation) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.cart.Clear()
	c.s.lastOrder = &conf
}
