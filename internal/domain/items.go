package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MetaData is a free-form key/value entry attached to an order or line group.
// Each entry carries its own identity so callers can update entries in place.
type MetaData struct {
	ID    int64
	Key   string
	Value any
}

// TaxBreakdown holds per-tax-rate amounts keyed by tax rate id. This is the
// internal working form; responses explode it into an ordered list.
type TaxBreakdown struct {
	Total    map[int64]decimal.Decimal
	Subtotal map[int64]decimal.Decimal
}

// RateIDs returns the rate ids present in the breakdown, ascending.
// Map iteration order is not stable, and the exploded list must be.
func (t TaxBreakdown) RateIDs() []int64 {
	ids := make([]int64, 0, len(t.Total))
	for id := range t.Total {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TotalTax sums the per-rate totals.
func (t TaxBreakdown) TotalTax() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.Total {
		sum = sum.Add(v)
	}
	return sum
}

// SubtotalTax sums the per-rate subtotals.
func (t TaxBreakdown) SubtotalTax() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t.Subtotal {
		sum = sum.Add(v)
	}
	return sum
}

// Clone deep-copies the breakdown.
func (t TaxBreakdown) Clone() TaxBreakdown {
	out := TaxBreakdown{}
	if t.Total != nil {
		out.Total = make(map[int64]decimal.Decimal, len(t.Total))
		for k, v := range t.Total {
			out.Total[k] = v
		}
	}
	if t.Subtotal != nil {
		out.Subtotal = make(map[int64]decimal.Decimal, len(t.Subtotal))
		for k, v := range t.Subtotal {
			out.Subtotal[k] = v
		}
	}
	return out
}

// LineItem is a purchased product line.
type LineItem struct {
	ID          int64
	Name        string
	ProductID   int64
	VariationID int64
	Quantity    int
	TaxClass    string
	SKU         string
	Subtotal    decimal.Decimal
	SubtotalTax decimal.Decimal
	Total       decimal.Decimal
	TotalTax    decimal.Decimal
	Taxes       TaxBreakdown
	MetaData    []MetaData
}

// UnitPrice derives the effective unit price from the discounted line total.
// Returns zero for a zero quantity rather than dividing by zero.
func (li LineItem) UnitPrice() decimal.Decimal {
	if li.Quantity == 0 {
		return decimal.Zero
	}
	return li.Total.Div(decimal.NewFromInt(int64(li.Quantity)))
}

// TaxLine is an order-level tax summary for a single rate.
type TaxLine struct {
	ID               int64
	RateCode         string
	RateID           int64
	Label            string
	Compound         bool
	TaxTotal         decimal.Decimal
	ShippingTaxTotal decimal.Decimal
	MetaData         []MetaData
}

// ShippingLine is a shipping charge applied to the order.
type ShippingLine struct {
	ID          int64
	MethodTitle string
	MethodID    string
	InstanceID  string
	Total       decimal.Decimal
	TotalTax    decimal.Decimal
	Taxes       TaxBreakdown
	MetaData    []MetaData
}

// FeeLine is an arbitrary surcharge applied to the order.
type FeeLine struct {
	ID        int64
	Name      string
	TaxClass  string
	TaxStatus string
	Total     decimal.Decimal
	TotalTax  decimal.Decimal
	Taxes     TaxBreakdown
	MetaData  []MetaData
}

// CouponLine records a coupon applied to the order and the discount it gave.
type CouponLine struct {
	ID          int64
	Code        string
	Discount    decimal.Decimal
	DiscountTax decimal.Decimal
	MetaData    []MetaData
}

// Refund is a read-only view of a refund issued against the order. The
// refund aggregate itself lives elsewhere; orders only expose this summary.
type Refund struct {
	ID     int64
	Reason string
	Amount decimal.Decimal
}

func cloneMeta(in []MetaData) []MetaData {
	if in == nil {
		return nil
	}
	out := make([]MetaData, len(in))
	copy(out, in)
	return out
}
