package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockPlacer struct {
	m        sync.Mutex
	calls    int
	requests []Request
	resp     Response
	err      error
	release  chan struct{}
	started  chan struct{}
}

func (m *mockPlacer) SubmitOrder(_ context.Context, req Request) (Response, error) {
	m.m.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.m.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return Response{}, m.err
	}
	return m.resp, nil
}

func (m *mockPlacer) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type recordingNotifier struct {
	m          sync.Mutex
	placements []Placement
	err        error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, p Placement) error {
	n.m.Lock()
	defer n.m.Unlock()
	n.placements = append(n.placements, p)
	return n.err
}

var (
	validCustomer = domain.Customer{Name: "Ada", Phone: "555-0100", Address: "1 Crust Lane"}
	margherita    = domain.MenuItem{ID: domain.StringID("m1"), Name: "Margherita", Price: domain.MustMoney("10.99")}
)

func cartWith(items ...domain.MenuItem) *cart.Store {
	s := cart.NewStore()
	for _, item := range items {
		s.AddItem(item, domain.SizeMedium)
	}
	return s
}

func TestPlaceOrder_Success_ClearsCart(t *testing.T) {
	placer := &mockPlacer{resp: Response{ID: domain.StringID("A1"), Total: domain.MustMoney("11.87")}}
	store := cartWith(margherita)
	sut := NewSubmitter("s1", placer, nil)

	conf, err := sut.PlaceOrder(context.Background(), validCustomer, store)

	require.NoError(t, err)
	assert.Equal(t, "A1", conf.ID.String())
	assert.Equal(t, "11.87", conf.Total.String())
	assert.True(t, store.IsEmpty())
	assert.False(t, sut.Submitting())

	require.Len(t, placer.requests, 1)
	req := placer.requests[0]
	assert.Equal(t, "Ada", req.CustomerName)
	assert.Equal(t, "555-0100", req.Phone)
	assert.Equal(t, "1 Crust Lane", req.Address)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 1, req.Items[0].Quantity)
}

func TestPlaceOrder_MissingCustomerField(t *testing.T) {
	cases := map[string]domain.Customer{
		"name":    {Phone: "1", Address: "a"},
		"phone":   {Name: "n", Address: "a"},
		"address": {Name: "n", Phone: "1"},
	}
	for field, customer := range cases {
		t.Run(field, func(t *testing.T) {
			placer := &mockPlacer{}
			store := cartWith(margherita)
			sut := NewSubmitter("s1", placer, nil)

			_, err := sut.PlaceOrder(context.Background(), customer, store)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, ReasonMissingCustomerFields, verr.Reason)
			assert.Equal(t, 0, placer.callCount())
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	placer := &mockPlacer{}
	sut := NewSubmitter("s1", placer, nil)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, cart.NewStore())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonEmptyCart, verr.Reason)
	assert.Equal(t, 0, placer.callCount())
	assert.False(t, sut.Submitting())
}

func TestPlaceOrder_TransportError_KeepsCart(t *testing.T) {
	cause := errors.New("connection refused")
	placer := &mockPlacer{err: cause}
	store := cartWith(margherita, margherita)
	sut := NewSubmitter("s1", placer, nil)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, store)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "transport error", serr.Reason)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, 2, store.Lines()[0].Quantity)
}

func TestPlaceOrder_BackendRejects_KeepsCart(t *testing.T) {
	placer := &mockPlacer{err: &SubmissionError{Reason: "failed to place order", StatusCode: 500}}
	store := cartWith(margherita)
	sut := NewSubmitter("s1", placer, nil)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, store)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 500, serr.StatusCode)
	assert.Equal(t, 1, store.Len())
}

func TestPlaceOrder_ResponseWithoutID(t *testing.T) {
	placer := &mockPlacer{resp: Response{Total: domain.MustMoney("11.87")}}
	store := cartWith(margherita)
	sut := NewSubmitter("s1", placer, nil)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, store)

	assert.True(t, IsSubmission(err))
	assert.Equal(t, 1, store.Len())
}

func TestPlaceOrder_RejectsReentrantSubmission(t *testing.T) {
	placer := &mockPlacer{
		resp:    Response{ID: domain.NumericID(7), Total: domain.MustMoney("11.87")},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	store := cartWith(margherita)
	sut := NewSubmitter("s1", placer, nil)

	done := make(chan error, 1)
	go func() {
		_, err := sut.PlaceOrder(context.Background(), validCustomer, store)
		done <- err
	}()

	select {
	case <-placer.started:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the backend")
	}
	assert.True(t, sut.Submitting())

	_, err := sut.PlaceOrder(context.Background(), validCustomer, store)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(placer.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, placer.callCount())
	assert.False(t, sut.Submitting())
	assert.True(t, store.IsEmpty())
}

func TestPlaceOrder_NotifiesAfterSuccess(t *testing.T) {
	placer := &mockPlacer{resp: Response{ID: domain.StringID("A1"), Total: domain.MustMoney("11.87")}}
	failing := &recordingNotifier{err: fmt.Errorf("kafka down")}
	recording := &recordingNotifier{}
	sut := NewSubmitter("s1", placer, nil, failing, recording)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, cartWith(margherita))

	require.NoError(t, err)
	sut.Wait()
	require.Len(t, recording.placements, 1)
	p := recording.placements[0]
	assert.Equal(t, "s1", p.SessionID)
	assert.Equal(t, "A1", p.Confirmation.ID.String())
	assert.Len(t, p.Request.Items, 1)
	assert.False(t, p.PlacedAt.IsZero())
}

func TestPlaceOrder_NoNotificationOnFailure(t *testing.T) {
	placer := &mockPlacer{err: errors.New("boom")}
	recording := &recordingNotifier{}
	sut := NewSubmitter("s1", placer, nil, recording)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, cartWith(margherita))

	require.Error(t, err)
	sut.Wait()
	assert.Empty(t, recording.placements)
}

type slowNotifier struct {
	release chan struct{}
	done    chan Placement
}

func (n *slowNotifier) OrderPlaced(ctx context.Context, p Placement) error {
	select {
	case <-n.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.done <- p
	return nil
}

type confirmingCart struct {
	*cart.Store
	confirmed []domain.OrderConfirmation
	cleared   int
}

func (c *confirmingCart) Clear() {
	c.cleared++
	c.Store.Clear()
}

func (c *confirmingCart) ClearConfirmed(conf domain.OrderConfirmation) {
	c.confirmed = append(c.confirmed, conf)
	c.Store.Clear()
}

func TestPlaceOrder_SlowNotifierDoesNotDelayConfirmation(t *testing.T) {
	placer := &mockPlacer{resp: Response{ID: domain.StringID("A1"), Total: domain.MustMoney("11.87")}}
	slow := &slowNotifier{release: make(chan struct{}), done: make(chan Placement, 1)}
	sut := NewSubmitter("s1", placer, nil, slow)

	ctx, cancel := context.WithCancel(context.Background())
	conf, err := sut.PlaceOrder(ctx, validCustomer, cartWith(margherita))
	require.NoError(t, err)
	assert.Equal(t, "A1", conf.ID.String())
	assert.False(t, sut.Submitting())

	// the request context ending must not cut the notification short
	cancel()
	close(slow.release)

	select {
	case p := <-slow.done:
		assert.Equal(t, "A1", p.Confirmation.ID.String())
	case <-time.After(time.Second):
		t.Fatal("notifier never completed")
	}
	sut.Wait()
}

func TestPlaceOrder_ConfirmingCartRecordsConfirmation(t *testing.T) {
	placer := &mockPlacer{resp: Response{ID: domain.NumericID(9), Total: domain.MustMoney("11.87")}}
	c := &confirmingCart{Store: cartWith(margherita)}
	sut := NewSubmitter("s1", placer, nil)

	_, err := sut.PlaceOrder(context.Background(), validCustomer, c)

	require.NoError(t, err)
	require.Len(t, c.confirmed, 1)
	assert.Equal(t, "9", c.confirmed[0].ID.String())
	assert.Equal(t, 0, c.cleared)
	assert.True(t, c.IsEmpty())
}

func TestPlaceOrder_WarnsWhenTotalMissing(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(`{"id":"A1"}`), &resp))
	placer := &mockPlacer{resp: resp}
	sut := NewSubmitter("s1", placer, zap.New(core))

	conf, err := sut.PlaceOrder(context.Background(), validCustomer, cartWith(margherita))

	require.NoError(t, err)
	assert.Equal(t, "A1", conf.ID.String())
	assert.Equal(t, 1, logs.FilterMessage("order response without total").Len())
}

func TestPlaceOrder_NoWarningWhenTotalPresent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	placer := &mockPlacer{resp: Response{ID: domain.StringID("A1"), Total: domain.MustMoney("11.87")}}
	sut := NewSubmitter("s1", placer, zap.New(core))

	_, err := sut.PlaceOrder(context.Background(), validCustomer, cartWith(margherita))

	require.NoError(t, err)
	assert.Equal(t, 0, logs.Len())
}
