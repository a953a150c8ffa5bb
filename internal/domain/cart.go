package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSize = errors.New("invalid pizza size")

type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"

	DefaultSize = SizeMedium
)

var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

func ParseSize(s string) (Size, error) {
	for _, size := range Sizes {
		if strings.EqualFold(s, string(size)) {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSize, s)
}

// LineKey identifies a cart line: one line per pizza and size.
type LineKey struct {
	PizzaID string
	Size    Size
}

func (k LineKey) String() string {
	return k.PizzaID + "/" + string(k.Size)
}

type CartLine struct {
	PizzaID   ID       `json:"pizza_id"`
	Name      string   `json:"name"`
	Size      Size     `json:"size"`
	Quantity  int      `json:"quantity"`
	UnitPrice Money    `json:"unit_price"`
	Toppings  []string `json:"toppings"`
}

func (l CartLine) Key() LineKey {
	return LineKey{PizzaID: l.PizzaID.String(), Size: l.Size}
}

func (l CartLine) LineTotal() Money {
	return l.UnitPrice.Mul(l.Quantity)
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Complete reports whether every field needed for delivery is filled in.
func (c Customer) Complete() bool {
	return c.Name != "" && c.Phone != "" && c.Address != ""
}

type Totals struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

type OrderConfirmation struct {
	ID    ID    `json:"id"`
	Total Money `json:"total"`
}
