package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a billing or shipping address block. Email and Phone are only
// populated on billing addresses.
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	State     string
	Postcode  string
	Country   string
	Email     string
	Phone     string
}

// Order is the aggregate representing a single purchase transaction.
//
// All monetary totals are decimals, never floats, and are recomputed
// server-side whenever a contributing field changes; client-submitted totals
// are only trusted on read. Timestamps are stored in UTC and rendered as
// local/UTC pairs at the response boundary.
type Order struct {
	ID         int64
	ParentID   int64
	OrderKey   string
	CreatedVia string
	Status     OrderStatus
	Currency   string

	PricesIncludeTax bool

	DateCreated   time.Time
	DateModified  time.Time
	DatePaid      *time.Time
	DateCompleted *time.Time

	DiscountTotal decimal.Decimal
	DiscountTax   decimal.Decimal
	ShippingTotal decimal.Decimal
	ShippingTax   decimal.Decimal
	CartTax       decimal.Decimal
	Total         decimal.Decimal
	TotalTax      decimal.Decimal

	// CustomerID is 0 for guest orders.
	CustomerID        int64
	CustomerIP        string
	CustomerUserAgent string
	CustomerNote      string

	Billing  Address
	Shipping Address

	PaymentMethod      string
	PaymentMethodTitle string
	TransactionID      string

	MetaData []MetaData

	LineItems     []LineItem
	TaxLines      []TaxLine
	ShippingLines []ShippingLine
	FeeLines      []FeeLine
	CouponLines   []CouponLine

	// Refunds is a read-only view loaded alongside the order.
	Refunds []Refund
}

// NewOrder returns an order with lifecycle defaults applied. An order is
// instantiable with no input at all; every field is optional on create.
func NewOrder(currency string) *Order {
	return &Order{
		Status:   OrderStatusPending,
		Currency: currency,
	}
}

// NeedsPayment reports whether the order still awaits payment.
func (o *Order) NeedsPayment() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusFailed, OrderStatusOnHold:
		return o.Total.GreaterThan(decimal.Zero)
	}
	return false
}

// SetStatus transitions the order to the given status, stamping the
// completion timestamp when the order reaches completed.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	if o.Status == status {
		return
	}
	o.Status = status
	if status == OrderStatusCompleted && o.DateCompleted == nil {
		t := now
		o.DateCompleted = &t
	}
}

// PaymentComplete marks the order as paid: stamps the paid timestamp and
// moves payment-awaiting statuses to processing. Calling it on an order that
// is already paid is a no-op.
func (o *Order) PaymentComplete(now time.Time) {
	if o.DatePaid != nil {
		return
	}
	t := now
	o.DatePaid = &t
	switch o.Status {
	case OrderStatusPending, OrderStatusFailed, OrderStatusOnHold:
		o.SetStatus(OrderStatusProcessing, now)
	}
}

// Subtotal sums the pre-discount line item subtotals.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range o.LineItems {
		sum = sum.Add(li.Subtotal)
	}
	return sum
}

// UpsertMeta updates the metadata entry with a matching id, or appends a new
// entry when id is zero or unknown.
func (o *Order) UpsertMeta(id int64, key string, value any) {
	if id != 0 {
		for i := range o.MetaData {
			if o.MetaData[i].ID == id {
				o.MetaData[i].Key = key
				o.MetaData[i].Value = value
				return
			}
		}
	}
	o.MetaData = append(o.MetaData, MetaData{ID: id, Key: key, Value: value})
}

// Clone deep-copies the order so a mutation plan can be applied and discarded
// without touching the persisted aggregate.
func (o *Order) Clone() *Order {
	out := *o

	if o.DatePaid != nil {
		t := *o.DatePaid
		out.DatePaid = &t
	}
	if o.DateCompleted != nil {
		t := *o.DateCompleted
		out.DateCompleted = &t
	}

	out.MetaData = cloneMeta(o.MetaData)

	if o.LineItems != nil {
		out.LineItems = make([]LineItem, len(o.LineItems))
		for i, li := range o.LineItems {
			li.Taxes = li.Taxes.Clone()
			li.MetaData = cloneMeta(li.MetaData)
			out.LineItems[i] = li
		}
	}
	if o.TaxLines != nil {
		out.TaxLines = make([]TaxLine, len(o.TaxLines))
		for i, tl := range o.TaxLines {
			tl.MetaData = cloneMeta(tl.MetaData)
			out.TaxLines[i] = tl
		}
	}
	if o.ShippingLines != nil {
		out.ShippingLines = make([]ShippingLine, len(o.ShippingLines))
		for i, sl := range o.ShippingLines {
			sl.Taxes = sl.Taxes.Clone()
			sl.MetaData = cloneMeta(sl.MetaData)
			out.ShippingLines[i] = sl
		}
	}
	if o.FeeLines != nil {
		out.FeeLines = make([]FeeLine, len(o.FeeLines))
		for i, fl := range o.FeeLines {
			fl.Taxes = fl.Taxes.Clone()
			fl.MetaData = cloneMeta(fl.MetaData)
			out.FeeLines[i] = fl
		}
	}
	if o.CouponLines != nil {
		out.CouponLines = make([]CouponLine, len(o.CouponLines))
		for i, cl := range o.CouponLines {
			cl.MetaData = cloneMeta(cl.MetaData)
			out.CouponLines[i] = cl
		}
	}
	if o.Refunds != nil {
		out.Refunds = make([]Refund, len(o.Refunds))
		copy(out.Refunds, o.Refunds)
	}

	return &out
}
