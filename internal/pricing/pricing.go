// Package pricing computes selling prices from purchase price, margin and
// VAT. It is pure: no I/O, no state, no error conditions. Callers validate
// their inputs before calling.
package pricing

import "github.com/shopspring/decimal"

// Breakdown holds the five derived amounts, each already rounded to two
// decimal places.
type Breakdown struct {
	NetUnit    float64
	GrossUnit  float64
	NetTotal   float64
	VATAmount  float64
	GrossTotal float64
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Calculate derives unit and line amounts for one offer line.
//
// The chain is computed at full precision and every output is rounded
// independently. GrossUnit comes from NetUnit, not from the totals, so
// GrossTotal can differ from GrossUnit×quantity by a grosz at some
// quantities. That asymmetry is intentional and relied upon by existing
// documents.
func Calculate(purchasePriceNet, marginPercent, vatRatePercent, quantity float64) Breakdown {
	purchase := decimal.NewFromFloat(purchasePriceNet)
	margin := decimal.NewFromFloat(marginPercent)
	vat := decimal.NewFromFloat(vatRatePercent)
	qty := decimal.NewFromFloat(quantity)

	netUnit := purchase.Mul(one.Add(margin.Div(hundred)))
	grossUnit := netUnit.Mul(one.Add(vat.Div(hundred)))
	netTotal := netUnit.Mul(qty)
	vatAmount := netTotal.Mul(vat.Div(hundred))
	grossTotal := netTotal.Add(vatAmount)

	return Breakdown{
		NetUnit:    round2(netUnit),
		GrossUnit:  round2(grossUnit),
		NetTotal:   round2(netTotal),
		VATAmount:  round2(vatAmount),
		GrossTotal: round2(grossTotal),
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
