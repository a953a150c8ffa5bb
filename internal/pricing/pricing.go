package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to every order.
var TaxRate = decimal.RequireFromString("0.08")

// ComputeTotals prices the given lines. Each reported figure is rounded
// once; tax and total are derived from the unrounded subtotal.
func ComputeTotals(lines []domain.CartLine) domain.Totals {
	var subtotal domain.Money
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	tax := subtotal.MulRate(TaxRate).Round2()
	return domain.Totals{
		Subtotal: subtotal.Round2(),
		Tax:      tax,
		Total:    subtotal.Add(tax).Round2(),
	}
}
