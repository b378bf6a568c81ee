package service

import (
	"strconv"
	"time"

	"github.com/dukerupert/njord/internal/domain"
	"github.com/dukerupert/njord/internal/money"
)

// ResponseOptions controls how an order is rendered for the API.
type ResponseOptions struct {
	// Precision is the number of fractional digits for monetary fields.
	Precision int

	// Location is the site-local timezone for the local half of each
	// timestamp pair. Nil means UTC.
	Location *time.Location
}

// OrderResponse is the flattened external representation of an order.
// Monetary fields are decimal strings at the configured precision and
// timestamps are local/UTC pairs, nil when unset.
type OrderResponse struct {
	ID               int64  `json:"id"`
	ParentID         int64  `json:"parent_id"`
	Number           string `json:"number"`
	OrderKey         string `json:"order_key"`
	CreatedVia       string `json:"created_via"`
	Status           string `json:"status"`
	Currency         string `json:"currency"`
	PricesIncludeTax bool   `json:"prices_include_tax"`

	DateCreated     *string `json:"date_created"`
	DateCreatedGMT  *string `json:"date_created_gmt"`
	DateModified    *string `json:"date_modified"`
	DateModifiedGMT *string `json:"date_modified_gmt"`

	DiscountTotal string `json:"discount_total"`
	DiscountTax   string `json:"discount_tax"`
	ShippingTotal string `json:"shipping_total"`
	ShippingTax   string `json:"shipping_tax"`
	CartTax       string `json:"cart_tax"`
	Total         string `json:"total"`
	TotalTax      string `json:"total_tax"`

	CustomerID        int64  `json:"customer_id"`
	CustomerIPAddress string `json:"customer_ip_address"`
	CustomerUserAgent string `json:"customer_user_agent"`
	CustomerNote      string `json:"customer_note"`

	Billing  BillingResponse  `json:"billing"`
	Shipping ShippingResponse `json:"shipping"`

	PaymentMethod      string `json:"payment_method"`
	PaymentMethodTitle string `json:"payment_method_title"`
	TransactionID      string `json:"transaction_id"`

	DatePaid         *string `json:"date_paid"`
	DatePaidGMT      *string `json:"date_paid_gmt"`
	DateCompleted    *string `json:"date_completed"`
	DateCompletedGMT *string `json:"date_completed_gmt"`

	MetaData []MetaResponse `json:"meta_data"`

	LineItems     []LineItemResponse     `json:"line_items"`
	TaxLines      []TaxLineResponse      `json:"tax_lines"`
	ShippingLines []ShippingLineResponse `json:"shipping_lines"`
	FeeLines      []FeeLineResponse      `json:"fee_lines"`
	CouponLines   []CouponLineResponse   `json:"coupon_lines"`
	Refunds       []RefundResponse       `json:"refunds"`
}

// BillingResponse carries the full address block including contact details.
type BillingResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShippingResponse is an address block without contact details.
type ShippingResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// MetaResponse is a metadata entry on an order or line group.
type MetaResponse struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// TaxEntryResponse is one exploded per-rate tax amount. Subtotal is the
// empty string when the breakdown carries no subtotal for the rate.
type TaxEntryResponse struct {
	ID       int64  `json:"id"`
	Total    string `json:"total"`
	Subtotal string `json:"subtotal"`
}

// LineItemResponse is a purchased product line. SKU and unit price only
// exist on this variant because only it references a product.
type LineItemResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	ProductID   int64              `json:"product_id"`
	VariationID int64              `json:"variation_id"`
	Quantity    int                `json:"quantity"`
	TaxClass    string             `json:"tax_class"`
	Subtotal    string             `json:"subtotal"`
	SubtotalTax string             `json:"subtotal_tax"`
	Total       string             `json:"total"`
	TotalTax    string             `json:"total_tax"`
	Taxes       []TaxEntryResponse `json:"taxes"`
	MetaData    []MetaResponse     `json:"meta_data"`
	SKU         string             `json:"sku"`
	Price       string             `json:"price"`
}

// TaxLineResponse is an order-level tax summary; the rate code is the
// identifying name so no generic name field is rendered.
type TaxLineResponse struct {
	ID               int64          `json:"id"`
	RateCode         string         `json:"rate_code"`
	RateID           int64          `json:"rate_id"`
	Label            string         `json:"label"`
	Compound         bool           `json:"compound"`
	TaxTotal         string         `json:"tax_total"`
	ShippingTaxTotal string         `json:"shipping_tax_total"`
	MetaData         []MetaResponse `json:"meta_data"`
}

// ShippingLineResponse is a shipping charge; the method title is the
// identifying name.
type ShippingLineResponse struct {
	ID          int64              `json:"id"`
	MethodTitle string             `json:"method_title"`
	MethodID    string             `json:"method_id"`
	InstanceID  string             `json:"instance_id"`
	Total       string             `json:"total"`
	TotalTax    string             `json:"total_tax"`
	Taxes       []TaxEntryResponse `json:"taxes"`
	MetaData    []MetaResponse     `json:"meta_data"`
}

// FeeLineResponse is a surcharge line.
type FeeLineResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	TaxClass  string             `json:"tax_class"`
	TaxStatus string             `json:"tax_status"`
	Total     string             `json:"total"`
	TotalTax  string             `json:"total_tax"`
	Taxes     []TaxEntryResponse `json:"taxes"`
	MetaData  []MetaResponse     `json:"meta_data"`
}

// CouponLineResponse is an applied coupon; the code is the identifying name.
type CouponLineResponse struct {
	ID          int64          `json:"id"`
	Code        string         `json:"code"`
	Discount    string         `json:"discount"`
	DiscountTax string         `json:"discount_tax"`
	MetaData    []MetaResponse `json:"meta_data"`
}

// RefundResponse summarizes a refund against the order. Total is rendered
// as a negative amount.
type RefundResponse struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
	Total  string `json:"total"`
}

// NewOrderResponse renders an order into its external representation.
func NewOrderResponse(o *domain.Order, opts ResponseOptions) *OrderResponse {
	dp := opts.Precision
	loc := opts.Location

	resp := &OrderResponse{
		ID:               o.ID,
		ParentID:         o.ParentID,
		Number:           strconv.FormatInt(o.ID, 10),
		OrderKey:         o.OrderKey,
		CreatedVia:       o.CreatedVia,
		Status:           string(o.Status),
		Currency:         o.Currency,
		PricesIncludeTax: o.PricesIncludeTax,

		DiscountTotal: money.FormatDecimal(o.DiscountTotal, dp),
		DiscountTax:   money.FormatDecimal(o.DiscountTax, dp),
		ShippingTotal: money.FormatDecimal(o.ShippingTotal, dp),
		ShippingTax:   money.FormatDecimal(o.ShippingTax, dp),
		CartTax:       money.FormatDecimal(o.CartTax, dp),
		Total:         money.FormatDecimal(o.Total, dp),
		TotalTax:      money.FormatDecimal(o.TotalTax, dp),

		CustomerID:        o.CustomerID,
		CustomerIPAddress: o.CustomerIP,
		CustomerUserAgent: o.CustomerUserAgent,
		CustomerNote:      o.CustomerNote,

		Billing: BillingResponse{
			FirstName: o.Billing.FirstName,
			LastName:  o.Billing.LastName,
			Company:   o.Billing.Company,
			Address1:  o.Billing.Address1,
			Address2:  o.Billing.Address2,
			City:      o.Billing.City,
			State:     o.Billing.State,
			Postcode:  o.Billing.Postcode,
			Country:   o.Billing.Country,
			Email:     o.Billing.Email,
			Phone:     o.Billing.Phone,
		},
		Shipping: ShippingResponse{
			FirstName: o.Shipping.FirstName,
			LastName:  o.Shipping.LastName,
			Company:   o.Shipping.Company,
			Address1:  o.Shipping.Address1,
			Address2:  o.Shipping.Address2,
			City:      o.Shipping.City,
			State:     o.Shipping.State,
			Postcode:  o.Shipping.Postcode,
			Country:   o.Shipping.Country,
		},

		PaymentMethod:      o.PaymentMethod,
		PaymentMethodTitle: o.PaymentMethodTitle,
		TransactionID:      o.TransactionID,

		MetaData: metaResponses(o.MetaData),

		LineItems:     make([]LineItemResponse, 0, len(o.LineItems)),
		TaxLines:      make([]TaxLineResponse, 0, len(o.TaxLines)),
		ShippingLines: make([]ShippingLineResponse, 0, len(o.ShippingLines)),
		FeeLines:      make([]FeeLineResponse, 0, len(o.FeeLines)),
		CouponLines:   make([]CouponLineResponse, 0, len(o.CouponLines)),
		Refunds:       make([]RefundResponse, 0, len(o.Refunds)),
	}

	created := o.DateCreated
	resp.DateCreated, resp.DateCreatedGMT = money.FormatDateTime(&created, loc)
	modified := o.DateModified
	resp.DateModified, resp.DateModifiedGMT = money.FormatDateTime(&modified, loc)
	resp.DatePaid, resp.DatePaidGMT = money.FormatDateTime(o.DatePaid, loc)
	resp.DateCompleted, resp.DateCompletedGMT = money.FormatDateTime(o.DateCompleted, loc)

	for _, li := range o.LineItems {
		resp.LineItems = append(resp.LineItems, newLineItemResponse(li, dp))
	}
	for _, tl := range o.TaxLines {
		resp.TaxLines = append(resp.TaxLines, TaxLineResponse{
			ID:               tl.ID,
			RateCode:         tl.RateCode,
			RateID:           tl.RateID,
			Label:            tl.Label,
			Compound:         tl.Compound,
			TaxTotal:         money.FormatDecimal(tl.TaxTotal, dp),
			ShippingTaxTotal: money.FormatDecimal(tl.ShippingTaxTotal, dp),
			MetaData:         metaResponses(tl.MetaData),
		})
	}
	for _, sl := range o.ShippingLines {
		resp.ShippingLines = append(resp.ShippingLines, ShippingLineResponse{
			ID:          sl.ID,
			MethodTitle: sl.MethodTitle,
			MethodID:    sl.MethodID,
			InstanceID:  sl.InstanceID,
			Total:       money.FormatDecimal(sl.Total, dp),
			TotalTax:    money.FormatDecimal(sl.TotalTax, dp),
			Taxes:       explodeTaxes(sl.Taxes, dp),
			MetaData:    metaResponses(sl.MetaData),
		})
	}
	for _, fl := range o.FeeLines {
		resp.FeeLines = append(resp.FeeLines, FeeLineResponse{
			ID:        fl.ID,
			Name:      fl.Name,
			TaxClass:  fl.TaxClass,
			TaxStatus: fl.TaxStatus,
			Total:     money.FormatDecimal(fl.Total, dp),
			TotalTax:  money.FormatDecimal(fl.TotalTax, dp),
			Taxes:     explodeTaxes(fl.Taxes, dp),
			MetaData:  metaResponses(fl.MetaData),
		})
	}
	for _, cl := range o.CouponLines {
		resp.CouponLines = append(resp.CouponLines, CouponLineResponse{
			ID:          cl.ID,
			Code:        cl.Code,
			Discount:    money.FormatDecimal(cl.Discount, dp),
			DiscountTax: money.FormatDecimal(cl.DiscountTax, dp),
			MetaData:    metaResponses(cl.MetaData),
		})
	}
	for _, r := range o.Refunds {
		resp.Refunds = append(resp.Refunds, RefundResponse{
			ID:     r.ID,
			Reason: r.Reason,
			Total:  money.FormatDecimal(r.Amount.Neg(), dp),
		})
	}

	return resp
}

func newLineItemResponse(li domain.LineItem, dp int) LineItemResponse {
	return LineItemResponse{
		ID:          li.ID,
		Name:        li.Name,
		ProductID:   li.ProductID,
		VariationID: li.VariationID,
		Quantity:    li.Quantity,
		TaxClass:    li.TaxClass,
		Subtotal:    money.FormatDecimal(li.Subtotal, dp),
		SubtotalTax: money.FormatDecimal(li.SubtotalTax, dp),
		Total:       money.FormatDecimal(li.Total, dp),
		TotalTax:    money.FormatDecimal(li.TotalTax, dp),
		Taxes:       explodeTaxes(li.Taxes, dp),
		MetaData:    metaResponses(li.MetaData),
		SKU:         li.SKU,
		// Unit price derives from the discounted total; a zero quantity
		// renders as zero rather than dividing.
		Price: money.FormatDecimal(li.UnitPrice(), dp),
	}
}

// explodeTaxes converts the rate-keyed breakdown into an ordered list.
// Rates without a subtotal render it as the empty string, not "0.00".
func explodeTaxes(t domain.TaxBreakdown, dp int) []TaxEntryResponse {
	ids := t.RateIDs()
	out := make([]TaxEntryResponse, 0, len(ids))
	for _, id := range ids {
		entry := TaxEntryResponse{
			ID:    id,
			Total: money.FormatDecimal(t.Total[id], dp),
		}
		if sub, ok := t.Subtotal[id]; ok {
			entry.Subtotal = money.FormatDecimal(sub, dp)
		}
		out = append(out, entry)
	}
	return out
}

func metaResponses(in []domain.MetaData) []MetaResponse {
	out := make([]MetaResponse, 0, len(in))
	for _, m := range in {
		out = append(out, MetaResponse{ID: m.ID, Key: m.Key, Value: m.Value})
	}
	return out
}
