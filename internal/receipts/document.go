package receipts

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type receiptDocument struct {
	OrderID      any                  `bson:"order_id"`
	SessionID    string               `bson:"session_id"`
	CustomerName string               `bson:"customer_name"`
	Phone        string               `bson:"phone"`
	Address      string               `bson:"address"`
	Items        []itemDocument       `bson:"items"`
	Total        primitive.Decimal128 `bson:"total"`
	PlacedAt     time.Time            `bson:"placed_at"`
}

type itemDocument struct {
	PizzaID   any                  `bson:"pizza_id"`
	Name      string               `bson:"name"`
	Size      string               `bson:"size"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Toppings  []string             `bson:"toppings"`
}

func toDocument(r Receipt) (receiptDocument, error) {
	total, err := toDecimal128(r.Total)
	if err != nil {
		return receiptDocument{}, err
	}

	items := make([]itemDocument, len(r.Items))
	for i, line := range r.Items {
		price, err := toDecimal128(line.UnitPrice)
		if err != nil {
			return receiptDocument{}, err
		}
		toppings := line.Toppings
		if toppings == nil {
			toppings = []string{}
		}
		items[i] = itemDocument{
			PizzaID:   idValue(line.PizzaID),
			Name:      line.Name,
			Size:      string(line.Size),
			Quantity:  line.Quantity,
			UnitPrice: price,
			Toppings:  toppings,
		}
	}

	return receiptDocument{
		OrderID:      idValue(r.OrderID),
		SessionID:    r.SessionID,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Address:      r.Address,
		Items:        items,
		Total:        total,
		PlacedAt:     r.PlacedAt.UTC().Truncate(time.Millisecond),
	}, nil
}

func (d receiptDocument) toReceipt() (Receipt, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return Receipt{}, err
	}

	items := make([]domain.CartLine, len(d.Items))
	for i, item := range d.Items {
		price, err := fromDecimal128(item.UnitPrice)
		if err != nil {
			return Receipt{}, err
		}
		toppings := item.Toppings
		if toppings == nil {
			toppings = []string{}
		}
		items[i] = domain.CartLine{
			PizzaID:   idFromValue(item.PizzaID),
			Name:      item.Name,
			Size:      domain.Size(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: price,
			Toppings:  toppings,
		}
	}

	return Receipt{
		OrderID:      idFromValue(d.OrderID),
		SessionID:    d.SessionID,
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		Address:      d.Address,
		Items:        items,
		Total:        total,
		PlacedAt:     d.PlacedAt,
	}, nil
}

// numericID stores a numeric id that does not fit an int64 with its exact
// text, so it is not mistaken for a string id on the way back.
type numericID struct {
	Number string `bson:"number"`
}

// idValue keeps numeric ids numeric in the stored document.
func idValue(id domain.ID) any {
	if !id.IsNumeric() {
		return id.String()
	}
	if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
		return n
	}
	return numericID{Number: id.String()}
}

func idFromValue(v any) domain.ID {
	switch n := v.(type) {
	case int32:
		return domain.NumericID(int64(n))
	case int64:
		return domain.NumericID(n)
	case string:
		return domain.StringID(n)
	case numericID:
		return numericFromText(n.Number)
	case primitive.D:
		return numericFromText(lookupNumber(n.Map()))
	case primitive.M:
		return numericFromText(lookupNumber(n))
	case nil:
		return domain.ID{}
	default:
		return domain.StringID(fmt.Sprint(n))
	}
}

func lookupNumber(m primitive.M) string {
	s, _ := m["number"].(string)
	return s
}

func numericFromText(s string) domain.ID {
	id, err := domain.ParseNumericID(s)
	if err != nil {
		return domain.StringID(s)
	}
	return id
}

func toDecimal128(m domain.Money) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(m.Decimal().String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode amount %s: %w", m, err)
	}
	return d, nil
}

func fromDecimal128(d primitive.Decimal128) (domain.Money, error) {
	m, err := domain.ParseMoney(d.String())
	if err != nil {
		return domain.Money{}, fmt.Errorf("decode amount: %w", err)
	}
	return m, nil
}
