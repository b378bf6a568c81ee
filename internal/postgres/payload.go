package postgres

import (
	"github.com/shopspring/decimal"

	"github.com/dukerupert/njord/internal/domain"
)

// Storage payloads for the JSONB columns. Monetary values are stored as
// decimal strings so they survive round-trips exactly.

type addressPayload struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func addressPayloadFrom(a domain.Address) addressPayload {
	return addressPayload(a)
}

func (p addressPayload) toAddress() domain.Address {
	return domain.Address(p)
}

type metaPayload struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func metaPayloadsFrom(in []domain.MetaData) []metaPayload {
	out := make([]metaPayload, 0, len(in))
	for _, m := range in {
		out = append(out, metaPayload(m))
	}
	return out
}

func metaPayloadsTo(in []metaPayload) []domain.MetaData {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.MetaData, 0, len(in))
	for _, m := range in {
		out = append(out, domain.MetaData(m))
	}
	return out
}

// itemPayload is the shared JSONB shape for all five line group variants.
// Fields irrelevant to a variant are omitted from the stored document.
type itemPayload struct {
	Name        string `json:"name,omitempty"`
	VariationID int64  `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	TaxClass    string `json:"tax_class,omitempty"`
	SKU         string `json:"sku,omitempty"`

	Subtotal    string `json:"subtotal,omitempty"`
	SubtotalTax string `json:"subtotal_tax,omitempty"`
	Total       string `json:"total,omitempty"`
	TotalTax    string `json:"total_tax,omitempty"`

	TaxTotals    map[int64]string `json:"tax_totals,omitempty"`
	TaxSubtotals map[int64]string `json:"tax_subtotals,omitempty"`

	RateCode         string `json:"rate_code,omitempty"`
	RateID           int64  `json:"rate_id,omitempty"`
	Label            string `json:"label,omitempty"`
	Compound         bool   `json:"compound,omitempty"`
	ShippingTaxTotal string `json:"shipping_tax_total,omitempty"`

	MethodTitle string `json:"method_title,omitempty"`
	MethodID    string `json:"method_id,omitempty"`
	InstanceID  string `json:"instance_id,omitempty"`

	TaxStatus string `json:"tax_status,omitempty"`

	Code        string `json:"code,omitempty"`
	Discount    string `json:"discount,omitempty"`
	DiscountTax string `json:"discount_tax,omitempty"`

	Meta []metaPayload `json:"meta,omitempty"`
}

func lineItemPayload(li *domain.LineItem) itemPayload {
	return itemPayload{
		Name:         li.Name,
		VariationID:  li.VariationID,
		Quantity:     li.Quantity,
		TaxClass:     li.TaxClass,
		SKU:          li.SKU,
		Subtotal:     li.Subtotal.String(),
		SubtotalTax:  li.SubtotalTax.String(),
		Total:        li.Total.String(),
		TotalTax:     li.TotalTax.String(),
		TaxTotals:    breakdownPayload(li.Taxes.Total),
		TaxSubtotals: breakdownPayload(li.Taxes.Subtotal),
		Meta:         metaPayloadsFrom(li.MetaData),
	}
}

func (p itemPayload) toLineItem(id, productID int64) domain.LineItem {
	return domain.LineItem{
		ID:          id,
		Name:        p.Name,
		ProductID:   productID,
		VariationID: p.VariationID,
		Quantity:    p.Quantity,
		TaxClass:    p.TaxClass,
		SKU:         p.SKU,
		Subtotal:    parseStoredDecimal(p.Subtotal),
		SubtotalTax: parseStoredDecimal(p.SubtotalTax),
		Total:       parseStoredDecimal(p.Total),
		TotalTax:    parseStoredDecimal(p.TotalTax),
		Taxes: domain.TaxBreakdown{
			Total:    breakdownFromPayload(p.TaxTotals),
			Subtotal: breakdownFromPayload(p.TaxSubtotals),
		},
		MetaData: metaPayloadsTo(p.Meta),
	}
}

func taxLinePayload(tl *domain.TaxLine) itemPayload {
	return itemPayload{
		RateCode:         tl.RateCode,
		RateID:           tl.RateID,
		Label:            tl.Label,
		Compound:         tl.Compound,
		TotalTax:         tl.TaxTotal.String(),
		ShippingTaxTotal: tl.ShippingTaxTotal.String(),
		Meta:             metaPayloadsFrom(tl.MetaData),
	}
}

func (p itemPayload) toTaxLine(id int64) domain.TaxLine {
	return domain.TaxLine{
		ID:               id,
		RateCode:         p.RateCode,
		RateID:           p.RateID,
		Label:            p.Label,
		Compound:         p.Compound,
		TaxTotal:         parseStoredDecimal(p.TotalTax),
		ShippingTaxTotal: parseStoredDecimal(p.ShippingTaxTotal),
		MetaData:         metaPayloadsTo(p.Meta),
	}
}

func shippingLinePayload(sl *domain.ShippingLine) itemPayload {
	return itemPayload{
		MethodTitle: sl.MethodTitle,
		MethodID:    sl.MethodID,
		InstanceID:  sl.InstanceID,
		Total:       sl.Total.String(),
		TotalTax:    sl.TotalTax.String(),
		TaxTotals:   breakdownPayload(sl.Taxes.Total),
		Meta:        metaPayloadsFrom(sl.MetaData),
	}
}

func (p itemPayload) toShippingLine(id int64) domain.ShippingLine {
	return domain.ShippingLine{
		ID:          id,
		MethodTitle: p.MethodTitle,
		MethodID:    p.MethodID,
		InstanceID:  p.InstanceID,
		Total:       parseStoredDecimal(p.Total),
		TotalTax:    parseStoredDecimal(p.TotalTax),
		Taxes:       domain.TaxBreakdown{Total: breakdownFromPayload(p.TaxTotals)},
		MetaData:    metaPayloadsTo(p.Meta),
	}
}

func feeLinePayload(fl *domain.FeeLine) itemPayload {
	return itemPayload{
		Name:      fl.Name,
		TaxClass:  fl.TaxClass,
		TaxStatus: fl.TaxStatus,
		Total:     fl.Total.String(),
		TotalTax:  fl.TotalTax.String(),
		TaxTotals: breakdownPayload(fl.Taxes.Total),
		Meta:      metaPayloadsFrom(fl.MetaData),
	}
}

func (p itemPayload) toFeeLine(id int64) domain.FeeLine {
	return domain.FeeLine{
		ID:        id,
		Name:      p.Name,
		TaxClass:  p.TaxClass,
		TaxStatus: p.TaxStatus,
		Total:     parseStoredDecimal(p.Total),
		TotalTax:  parseStoredDecimal(p.TotalTax),
		Taxes:     domain.TaxBreakdown{Total: breakdownFromPayload(p.TaxTotals)},
		MetaData:  metaPayloadsTo(p.Meta),
	}
}

func couponLinePayload(cl *domain.CouponLine) itemPayload {
	return itemPayload{
		Code:        cl.Code,
		Discount:    cl.Discount.String(),
		DiscountTax: cl.DiscountTax.String(),
		Meta:        metaPayloadsFrom(cl.MetaData),
	}
}

func (p itemPayload) toCouponLine(id int64) domain.CouponLine {
	return domain.CouponLine{
		ID:          id,
		Code:        p.Code,
		Discount:    parseStoredDecimal(p.Discount),
		DiscountTax: parseStoredDecimal(p.DiscountTax),
		MetaData:    metaPayloadsTo(p.Meta),
	}
}

func breakdownPayload(in map[int64]decimal.Decimal) map[int64]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[int64]string, len(in))
	for rateID, amount := range in {
		out[rateID] = amount.String()
	}
	return out
}

func breakdownFromPayload(in map[int64]string) map[int64]decimal.Decimal {
	if len(in) == 0 {
		return nil
	}
	out := make(map[int64]decimal.Decimal, len(in))
	for rateID, amount := range in {
		out[rateID] = parseStoredDecimal(amount)
	}
	return out
}
