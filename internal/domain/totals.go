package domain

import "github.com/shopspring/decimal"

// DefaultTaxRate — ставка налога (IVA) в процентах.
var DefaultTaxRate = decimal.NewFromInt(21)

var hundred = decimal.NewFromInt(100)

// Totals — итоги корзины или продажи.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	TaxRate  decimal.Decimal
}

// CalculateTotals считает итоги: subtotal = Σ subtotal_i, tax = subtotal * rate / 100, total = subtotal + tax.
// Каждое значение округляется до 2 знаков по банковскому правилу (half-to-even),
// округление применяется к точным значениям, а не к уже округлённым.
func CalculateTotals(items []CartItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}

	tax := subtotal.Mul(taxRate).Div(hundred)
	total := subtotal.Add(tax)

	return Totals{
		Subtotal: subtotal.RoundBank(2),
		Tax:      tax.RoundBank(2),
		Total:    total.RoundBank(2),
		TaxRate:  taxRate,
	}
}
