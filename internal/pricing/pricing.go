// Package pricing holds the deterministic cart pricing rules. Totals are
// a pure function of the line items, so every cart mutation recomputes
// them from scratch instead of patching the stored figures.
package pricing

import (
	"github.com/shopspring/decimal"

	"tambour/internal/domain"
)

var (
	taxDivisor        = decimal.NewFromInt(6)   // VAT share of the tax-inclusive item total
	freeShippingAbove = decimal.NewFromInt(150) // strictly greater than
	flatShipping      = decimal.NewFromInt(10)
)

type Totals struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Round2 rounds to two decimal places, half up.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

func CalcTotals(items []domain.CartItem) Totals {
	itemsPrice := decimal.Zero
	for _, it := range items {
		itemsPrice = itemsPrice.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	itemsPrice = Round2(itemsPrice)

	taxPrice := Round2(itemsPrice.Div(taxDivisor))

	shippingPrice := flatShipping
	if itemsPrice.GreaterThan(freeShippingAbove) {
		shippingPrice = decimal.Zero
	}

	return Totals{
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    Round2(itemsPrice.Add(shippingPrice)),
	}
}
