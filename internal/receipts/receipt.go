package receipts

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
)

const saveTimeout = 5 * time.Second

// Receipt is the stored record of a confirmed order.
type Receipt struct {
	OrderID      domain.ID         `json:"order_id"`
	SessionID    string            `json:"session_id"`
	CustomerName string            `json:"customer_name"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Items        []domain.CartLine `json:"items"`
	Total        domain.Money      `json:"total"`
	PlacedAt     time.Time         `json:"placed_at"`
}

// Repository stores receipts. Consumers define this interface, the Mongo
// implementation satisfies it.
type Repository interface {
	Save(ctx context.Context, r Receipt) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]Receipt, error)
}

func FromPlacement(p order.Placement) Receipt {
	return Receipt{
		OrderID:      p.Confirmation.ID,
		SessionID:    p.SessionID,
		CustomerName: p.Customer.Name,
		Phone:        p.Customer.Phone,
		Address:      p.Customer.Address,
		Items:        p.Request.Items,
		Total:        p.Confirmation.Total,
		PlacedAt:     p.PlacedAt,
	}
}

// Recorder saves a receipt for every confirmed order.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) OrderPlaced(ctx context.Context, p order.Placement) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	return r.repo.Save(ctx, FromPlacement(p))
}
