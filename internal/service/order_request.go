package service

import (
	"github.com/dukerupert/njord/internal/domain"
)

// OrderRequest is the write payload for order create and update calls.
// Every field is optional; only supplied (non-nil) fields are applied.
// Enum-shaped fields are rejected at the binding boundary, before the
// mapper runs.
type OrderRequest struct {
	ParentID     *int64  `json:"parent_id" validate:"omitempty,gte=0"`
	Status       *string `json:"status" validate:"omitempty,order_status"`
	Currency     *string `json:"currency" validate:"omitempty,iso4217"`
	CustomerID   *int64  `json:"customer_id" validate:"omitempty,gte=0"`
	CustomerNote *string `json:"customer_note"`

	Billing  *AddressRequest `json:"billing"`
	Shipping *AddressRequest `json:"shipping"`

	PaymentMethod      *string `json:"payment_method"`
	PaymentMethodTitle *string `json:"payment_method_title"`
	TransactionID      *string `json:"transaction_id"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`

	LineItems     []LineItemRequest     `json:"line_items" validate:"omitempty,dive"`
	ShippingLines []ShippingLineRequest `json:"shipping_lines" validate:"omitempty,dive"`
	FeeLines      []FeeLineRequest      `json:"fee_lines" validate:"omitempty,dive"`
	CouponLines   []CouponLineRequest   `json:"coupon_lines" validate:"omitempty,dive"`

	SetPaid *bool `json:"set_paid"`
}

// TouchesTotals reports whether the request includes any field that feeds
// into totals recomputation.
func (r *OrderRequest) TouchesTotals() bool {
	return r.Billing != nil ||
		r.Shipping != nil ||
		r.LineItems != nil ||
		r.ShippingLines != nil ||
		r.FeeLines != nil ||
		r.CouponLines != nil
}

// AddressRequest is a partial address; only supplied fields are merged.
type AddressRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Company   *string `json:"company"`
	Address1  *string `json:"address_1"`
	Address2  *string `json:"address_2"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Postcode  *string `json:"postcode"`
	Country   *string `json:"country"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
}

// MetaDataRequest upserts a metadata entry: a matching id updates in place,
// an absent id appends.
type MetaDataRequest struct {
	ID    int64  `json:"id"`
	Key   string `json:"key" validate:"required"`
	Value any    `json:"value"`
}

// LineItemRequest creates or partially updates a product line. An id
// matching an existing item updates it in place; a zero id appends.
// Omitted items are never deleted implicitly.
type LineItemRequest struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	ProductID   *int64  `json:"product_id" validate:"omitempty,gte=0"`
	VariationID *int64  `json:"variation_id" validate:"omitempty,gte=0"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
	TaxClass    *string `json:"tax_class"`
	Subtotal    *string `json:"subtotal"`
	Total       *string `json:"total"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// ShippingLineRequest creates or partially updates a shipping line.
type ShippingLineRequest struct {
	ID          int64   `json:"id"`
	MethodTitle *string `json:"method_title"`
	MethodID    *string `json:"method_id"`
	InstanceID  *string `json:"instance_id"`
	Total       *string `json:"total"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// FeeLineRequest creates or partially updates a fee line.
type FeeLineRequest struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name"`
	TaxClass  *string `json:"tax_class"`
	TaxStatus *string `json:"tax_status" validate:"omitempty,oneof=taxable none"`
	Total     *string `json:"total"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// CouponLineRequest creates or partially updates a coupon line. Like the
// other line groups, the discount amounts are client-submitted; the order
// totals derived from them are what the server recomputes.
type CouponLineRequest struct {
	ID          int64   `json:"id"`
	Code        *string `json:"code"`
	Discount    *string `json:"discount"`
	DiscountTax *string `json:"discount_tax"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// ValidOrderStatus reports whether s names a known order status, accepting
// the prefixed storage form. It backs the order_status validation tag.
func ValidOrderStatus(s string) bool {
	return domain.ParseOrderStatus(s).Known()
}
