package order

import (
	"encoding/json"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Request is the body sent to the backend's order endpoint. Totals are not
// included: the backend decides the charged amount.
type Request struct {
	CustomerName string            `json:"customer_name"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Items        []domain.CartLine `json:"items"`
}

func NewRequest(customer domain.Customer, lines []domain.CartLine) Request {
	items := make([]domain.CartLine, len(lines))
	for i, line := range lines {
		if line.Toppings == nil {
			line.Toppings = []string{}
		}
		items[i] = line
	}
	return Request{
		CustomerName: customer.Name,
		Phone:        customer.Phone,
		Address:      customer.Address,
		Items:        items,
	}
}

// Response is what the backend returns for an accepted order.
type Response struct {
	ID    domain.ID    `json:"id"`
	Total domain.Money `json:"total"`

	totalMissing bool
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID    domain.ID     `json:"id"`
		Total *domain.Money `json:"total"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = Response{ID: wire.ID}
	if wire.Total != nil {
		r.Total = *wire.Total
	} else {
		r.totalMissing = true
	}
	return nil
}

// HasTotal reports whether the decoded body carried a total.
func (r Response) HasTotal() bool {
	return !r.totalMissing
}

func (r Response) Confirmation() domain.OrderConfirmation {
	return domain.OrderConfirmation{ID: r.ID, Total: r.Total}
}
