package totals

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/njord/internal/domain"
)

// StandardCalculator derives order totals by summing line groups. Tax-rate
// computation itself happens upstream (each line carries a per-rate
// breakdown); this calculator only aggregates, so recomputation is always
// idempotent.
type StandardCalculator struct{}

// NewStandardCalculator creates the default totals calculator.
func NewStandardCalculator() *StandardCalculator {
	return &StandardCalculator{}
}

// CalculateTotals recomputes discount, shipping, tax and grand totals in
// place. When recalcFull is set, per-line tax sums are re-derived from the
// rate breakdowns and order-level tax lines are rebuilt; otherwise the line
// tax fields are taken as-is.
func (c *StandardCalculator) CalculateTotals(ctx context.Context, o *domain.Order, recalcFull bool) error {
	if recalcFull {
		c.recalcLineTaxes(o)
		c.rebuildTaxLines(o)
	}

	itemsTotal := decimal.Zero
	cartTax := decimal.Zero
	discountTotal := decimal.Zero
	discountTax := decimal.Zero

	for _, li := range o.LineItems {
		itemsTotal = itemsTotal.Add(li.Total)
		cartTax = cartTax.Add(li.TotalTax)

		if d := li.Subtotal.Sub(li.Total); d.GreaterThan(decimal.Zero) {
			discountTotal = discountTotal.Add(d)
		}
		if d := li.SubtotalTax.Sub(li.TotalTax); d.GreaterThan(decimal.Zero) {
			discountTax = discountTax.Add(d)
		}
	}

	feesTotal := decimal.Zero
	for _, fl := range o.FeeLines {
		feesTotal = feesTotal.Add(fl.Total)
		cartTax = cartTax.Add(fl.TotalTax)
	}

	shippingTotal := decimal.Zero
	shippingTax := decimal.Zero
	for _, sl := range o.ShippingLines {
		shippingTotal = shippingTotal.Add(sl.Total)
		shippingTax = shippingTax.Add(sl.TotalTax)
	}

	o.DiscountTotal = discountTotal
	o.DiscountTax = discountTax
	o.ShippingTotal = shippingTotal
	o.ShippingTax = shippingTax
	o.CartTax = cartTax
	o.TotalTax = cartTax.Add(shippingTax)

	// Inclusive pricing means line totals already carry their tax.
	total := itemsTotal.Add(feesTotal).Add(shippingTotal)
	if !o.PricesIncludeTax {
		total = total.Add(o.TotalTax)
	}
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}
	o.Total = total

	return nil
}

// recalcLineTaxes re-derives each line's tax sums from its rate breakdown.
// Lines without a breakdown keep their stated tax fields.
func (c *StandardCalculator) recalcLineTaxes(o *domain.Order) {
	for i := range o.LineItems {
		li := &o.LineItems[i]
		if len(li.Taxes.Total) == 0 && len(li.Taxes.Subtotal) == 0 {
			continue
		}
		li.TotalTax = li.Taxes.TotalTax()
		li.SubtotalTax = li.Taxes.SubtotalTax()
	}
	for i := range o.ShippingLines {
		if len(o.ShippingLines[i].Taxes.Total) == 0 {
			continue
		}
		o.ShippingLines[i].TotalTax = o.ShippingLines[i].Taxes.TotalTax()
	}
	for i := range o.FeeLines {
		if len(o.FeeLines[i].Taxes.Total) == 0 {
			continue
		}
		o.FeeLines[i].TotalTax = o.FeeLines[i].Taxes.TotalTax()
	}
}

// rebuildTaxLines replaces the order-level tax summary with one line per
// rate id seen across item, fee and shipping breakdowns. Rate code, label
// and compound flags survive from any existing line for the same rate.
func (c *StandardCalculator) rebuildTaxLines(o *domain.Order) {
	type rateSums struct {
		tax      decimal.Decimal
		shipping decimal.Decimal
	}
	sums := map[int64]*rateSums{}

	accumulate := func(b domain.TaxBreakdown, shipping bool) {
		for id, amount := range b.Total {
			s, ok := sums[id]
			if !ok {
				s = &rateSums{tax: decimal.Zero, shipping: decimal.Zero}
				sums[id] = s
			}
			if shipping {
				s.shipping = s.shipping.Add(amount)
			} else {
				s.tax = s.tax.Add(amount)
			}
		}
	}

	for _, li := range o.LineItems {
		accumulate(li.Taxes, false)
	}
	for _, fl := range o.FeeLines {
		accumulate(fl.Taxes, false)
	}
	for _, sl := range o.ShippingLines {
		accumulate(sl.Taxes, true)
	}

	existing := make(map[int64]domain.TaxLine, len(o.TaxLines))
	for _, tl := range o.TaxLines {
		existing[tl.RateID] = tl
	}

	lines := make([]domain.TaxLine, 0, len(sums))
	seen := domain.TaxBreakdown{Total: map[int64]decimal.Decimal{}}
	for id := range sums {
		seen.Total[id] = decimal.Zero
	}
	for _, id := range seen.RateIDs() {
		s := sums[id]
		line := domain.TaxLine{RateID: id}
		if prev, ok := existing[id]; ok {
			line.ID = prev.ID
			line.RateCode = prev.RateCode
			line.Label = prev.Label
			line.Compound = prev.Compound
			line.MetaData = prev.MetaData
		}
		line.TaxTotal = s.tax
		line.ShippingTaxTotal = s.shipping
		lines = append(lines, line)
	}
	o.TaxLines = lines
}
