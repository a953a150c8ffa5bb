package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// Placer sends an order to the ordering backend. Implementations report
// failures as *SubmissionError; any other error is treated as a transport
// failure.
type Placer interface {
	SubmitOrder(ctx context.Context, req Request) (Response, error)
}

// Cart is the part of a cart the submitter reads and clears.
type Cart interface {
	Lines() []domain.CartLine
	Clear()
}

// ConfirmingCart records the confirmation in the same step that clears the
// cart, so no reader sees an emptied cart without its confirmation.
type ConfirmingCart interface {
	Cart
	ClearConfirmed(conf domain.OrderConfirmation)
}

// notifyTimeout bounds each notifier call made after a confirmed order.
const notifyTimeout = 10 * time.Second

// Placement describes a confirmed order for the components that react to it.
type Placement struct {
	SessionID    string
	Customer     domain.Customer
	Request      Request
	Confirmation domain.OrderConfirmation
	PlacedAt     time.Time
}

// Notifier is told about every confirmed order, after the cart was cleared.
// Notifiers run in the background and never delay the confirmation.
type Notifier interface {
	OrderPlaced(ctx context.Context, p Placement) error
}

// Submitter places orders for a single session and refuses to start a
// second submission while one is in flight.
type Submitter struct {
	sessionID string
	placer    Placer
	notifiers []Notifier
	log       *zap.Logger
	inFlight  atomic.Bool
	now       func() time.Time
	pending   sync.WaitGroup
}

func NewSubmitter(sessionID string, placer Placer, log *zap.Logger, notifiers ...Notifier) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{
		sessionID: sessionID,
		placer:    placer,
		notifiers: notifiers,
		log:       log.With(zap.String("session_id", sessionID)),
		now:       time.Now,
	}
}

func (s *Submitter) Submitting() bool {
	return s.inFlight.Load()
}

// PlaceOrder validates the customer and cart, submits the order and, on
// success, clears the cart before returning the confirmation.
func (s *Submitter) PlaceOrder(ctx context.Context, customer domain.Customer, cart Cart) (domain.OrderConfirmation, error) {
	if !customer.Complete() {
		return domain.OrderConfirmation{}, &ValidationError{Reason: ReasonMissingCustomerFields}
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.OrderConfirmation{}, ErrSubmissionInProgress
	}
	defer s.inFlight.Store(false)

	// read after taking the flag so a just-cleared cart is never resubmitted
	lines := cart.Lines()
	if len(lines) == 0 {
		return domain.OrderConfirmation{}, &ValidationError{Reason: ReasonEmptyCart}
	}

	req := NewRequest(customer, lines)
	resp, err := s.placer.SubmitOrder(ctx, req)
	if err != nil {
		s.log.Warn("order submission failed", zap.Int("lines", len(lines)), zap.Error(err))
		return domain.OrderConfirmation{}, asSubmissionError(err)
	}
	if resp.ID.IsZero() {
		s.log.Warn("order response without id")
		return domain.OrderConfirmation{}, &SubmissionError{Reason: "response missing order id"}
	}
	if !resp.HasTotal() {
		s.log.Warn("order response without total", zap.String("order_id", resp.ID.String()))
	}

	confirmation := resp.Confirmation()
	if cc, ok := cart.(ConfirmingCart); ok {
		cc.ClearConfirmed(confirmation)
	} else {
		cart.Clear()
	}
	s.log.Info("order placed",
		zap.String("order_id", confirmation.ID.String()),
		zap.String("total", confirmation.Total.String()))

	s.notify(ctx, Placement{
		SessionID:    s.sessionID,
		Customer:     customer,
		Request:      req,
		Confirmation: confirmation,
		PlacedAt:     s.now().UTC(),
	})
	return confirmation, nil
}

// notify hands the placement to the notifiers on a detached goroutine.
func (s *Submitter) notify(ctx context.Context, p Placement) {
	if len(s.notifiers) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		for _, n := range s.notifiers {
			nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			if err := n.OrderPlaced(nctx, p); err != nil {
				s.log.Error("order notifier failed", zap.String("order_id", p.Confirmation.ID.String()), zap.Error(err))
			}
			cancel()
		}
	}()
}

// Wait blocks until notifications for already confirmed orders are done.
func (s *Submitter) Wait() {
	s.pending.Wait()
}

func asSubmissionError(err error) error {
	var se *SubmissionError
	if errors.As(err, &se) {
		return err
	}
	return &SubmissionError{Reason: "transport error", Err: err}
}
