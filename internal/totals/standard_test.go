package totals

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/njord/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals_GrandTotalInvariant(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{
			ProductID: 11,
			Quantity:  2,
			Subtotal:  dec("20.00"),
			Total:     dec("18.00"), // 2.00 discount
			TotalTax:  dec("1.80"),
		},
		{
			ProductID: 12,
			Quantity:  1,
			Subtotal:  dec("5.00"),
			Total:     dec("5.00"),
			TotalTax:  dec("0.50"),
		},
	}
	o.ShippingLines = []domain.ShippingLine{
		{MethodID: "flat_rate", Total: dec("4.00"), TotalTax: dec("0.40")},
	}

	err := NewStandardCalculator().CalculateTotals(context.Background(), o, false)
	require.NoError(t, err)

	require.True(t, o.DiscountTotal.Equal(dec("2.00")), "discount = %s", o.DiscountTotal)
	require.True(t, o.ShippingTotal.Equal(dec("4.00")), "shipping = %s", o.ShippingTotal)
	require.True(t, o.CartTax.Equal(dec("2.30")), "cart tax = %s", o.CartTax)
	require.True(t, o.TotalTax.Equal(dec("2.70")), "total tax = %s", o.TotalTax)

	// total = subtotal - discount + shipping + tax
	want := o.Subtotal().Sub(o.DiscountTotal).Add(o.ShippingTotal).Add(o.TotalTax)
	require.True(t, o.Total.Equal(want), "total = %s, want %s", o.Total, want)
}

func TestCalculateTotals_Idempotent(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{Quantity: 3, Subtotal: dec("30.00"), Total: dec("27.00"), TotalTax: dec("2.16")},
	}
	o.FeeLines = []domain.FeeLine{
		{Name: "Handling", Total: dec("1.50"), TotalTax: dec("0.12")},
	}

	calc := NewStandardCalculator()
	require.NoError(t, calc.CalculateTotals(context.Background(), o, false))
	first := o.Total

	require.NoError(t, calc.CalculateTotals(context.Background(), o, false))
	require.True(t, o.Total.Equal(first), "recompute changed total: %s != %s", o.Total, first)
}

func TestCalculateTotals_EmptyOrder(t *testing.T) {
	o := domain.NewOrder("USD")
	require.NoError(t, NewStandardCalculator().CalculateTotals(context.Background(), o, false))
	require.True(t, o.Total.IsZero())
	require.True(t, o.TotalTax.IsZero())
}

func TestCalculateTotals_PricesIncludeTax(t *testing.T) {
	o := domain.NewOrder("USD")
	o.PricesIncludeTax = true
	o.LineItems = []domain.LineItem{
		{Quantity: 1, Subtotal: dec("12.00"), Total: dec("12.00"), TotalTax: dec("2.00")},
	}

	require.NoError(t, NewStandardCalculator().CalculateTotals(context.Background(), o, false))

	// Tax is already inside the line total.
	require.True(t, o.Total.Equal(dec("12.00")), "total = %s", o.Total)
	require.True(t, o.TotalTax.Equal(dec("2.00")))
}

func TestCalculateTotals_RecalcFullRebuildsTaxLines(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{
			Quantity: 1,
			Subtotal: dec("10.00"),
			Total:    dec("10.00"),
			Taxes: domain.TaxBreakdown{
				Total:    map[int64]decimal.Decimal{7: dec("0.70"), 3: dec("0.30")},
				Subtotal: map[int64]decimal.Decimal{7: dec("0.70"), 3: dec("0.30")},
			},
		},
	}
	o.ShippingLines = []domain.ShippingLine{
		{
			MethodID: "flat_rate",
			Total:    dec("5.00"),
			Taxes:    domain.TaxBreakdown{Total: map[int64]decimal.Decimal{7: dec("0.35")}},
		},
	}
	o.TaxLines = []domain.TaxLine{
		{ID: 41, RateID: 7, RateCode: "US-CA-TAX-1", Label: "State Tax", TaxTotal: dec("9.99")},
	}

	require.NoError(t, NewStandardCalculator().CalculateTotals(context.Background(), o, true))

	// Per-line sums re-derived from the breakdowns.
	require.True(t, o.LineItems[0].TotalTax.Equal(dec("1.00")))
	require.True(t, o.ShippingLines[0].TotalTax.Equal(dec("0.35")))

	// One tax line per rate, ordered by rate id, existing identity preserved.
	require.Len(t, o.TaxLines, 2)
	require.Equal(t, int64(3), o.TaxLines[0].RateID)
	require.True(t, o.TaxLines[0].TaxTotal.Equal(dec("0.30")))
	require.Equal(t, int64(7), o.TaxLines[1].RateID)
	require.Equal(t, int64(41), o.TaxLines[1].ID)
	require.Equal(t, "US-CA-TAX-1", o.TaxLines[1].RateCode)
	require.True(t, o.TaxLines[1].TaxTotal.Equal(dec("0.70")))
	require.True(t, o.TaxLines[1].ShippingTaxTotal.Equal(dec("0.35")))

	require.True(t, o.TotalTax.Equal(dec("1.35")))
}

func TestMockCalculator_RecordsCalls(t *testing.T) {
	m := NewMockCalculator()
	o := domain.NewOrder("USD")

	require.NoError(t, m.CalculateTotals(context.Background(), o, true))
	require.NoError(t, m.CalculateTotals(context.Background(), o, false))

	require.Equal(t, 2, m.CallCount())
	require.Equal(t, []bool{true, false}, m.Calls)
}
