package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/njord/internal/domain"
)

// orderField enumerates every order property a write request can touch.
// Applying a request walks this closed list; a field the switch does not
// handle is a programming error surfaced as EINTERNAL, never silently
// ignored.
type orderField int

const (
	fieldParentID orderField = iota
	fieldStatus
	fieldCurrency
	fieldCustomerID
	fieldCustomerNote
	fieldBilling
	fieldShipping
	fieldPaymentMethod
	fieldPaymentMethodTitle
	fieldTransactionID
	fieldMetaData
	fieldLineItems
	fieldShippingLines
	fieldFeeLines
	fieldCouponLines
)

var writableOrderFields = []orderField{
	fieldParentID,
	fieldStatus,
	fieldCurrency,
	fieldCustomerID,
	fieldCustomerNote,
	fieldBilling,
	fieldShipping,
	fieldPaymentMethod,
	fieldPaymentMethodTitle,
	fieldTransactionID,
	fieldMetaData,
	fieldLineItems,
	fieldShippingLines,
	fieldFeeLines,
	fieldCouponLines,
}

// applyOrderRequest merges the supplied request fields into the order.
// Absent fields are left untouched; collections reconcile by id and never
// delete implicitly. The order passed in must be a scratch copy; on error
// it is left partially mutated and must be discarded.
func applyOrderRequest(order *domain.Order, req *OrderRequest, now time.Time) error {
	const op = "order.map"

	for _, field := range writableOrderFields {
		if err := applyOrderField(order, req, field, now); err != nil {
			return err
		}
	}
	return nil
}

func applyOrderField(order *domain.Order, req *OrderRequest, field orderField, now time.Time) error {
	const op = "order.map"

	switch field {
	case fieldParentID:
		if req.ParentID != nil {
			order.ParentID = *req.ParentID
		}
	case fieldStatus:
		if req.Status != nil {
			status := domain.ParseOrderStatus(*req.Status)
			if !status.Known() {
				return domain.NewValidationError(op, "status", fmt.Sprintf("invalid order status: %s", *req.Status))
			}
			order.SetStatus(status, now)
		}
	case fieldCurrency:
		if req.Currency != nil {
			order.Currency = *req.Currency
		}
	case fieldCustomerID:
		if req.CustomerID != nil {
			order.CustomerID = *req.CustomerID
		}
	case fieldCustomerNote:
		if req.CustomerNote != nil {
			order.CustomerNote = *req.CustomerNote
		}
	case fieldBilling:
		if req.Billing != nil {
			mergeAddress(&order.Billing, req.Billing)
		}
	case fieldShipping:
		if req.Shipping != nil {
			mergeAddress(&order.Shipping, req.Shipping)
			// Shipping addresses never carry contact details.
			order.Shipping.Email = ""
			order.Shipping.Phone = ""
		}
	case fieldPaymentMethod:
		if req.PaymentMethod != nil {
			order.PaymentMethod = *req.PaymentMethod
		}
	case fieldPaymentMethodTitle:
		if req.PaymentMethodTitle != nil {
			order.PaymentMethodTitle = *req.PaymentMethodTitle
		}
	case fieldTransactionID:
		if req.TransactionID != nil {
			order.TransactionID = *req.TransactionID
		}
	case fieldMetaData:
		for _, m := range req.MetaData {
			order.UpsertMeta(m.ID, m.Key, m.Value)
		}
	case fieldLineItems:
		return applyLineItems(order, req.LineItems)
	case fieldShippingLines:
		return applyShippingLines(order, req.ShippingLines)
	case fieldFeeLines:
		return applyFeeLines(order, req.FeeLines)
	case fieldCouponLines:
		return applyCouponLines(order, req.CouponLines)
	default:
		return domain.Errorf(domain.EINTERNAL, op, "unhandled order field %d", field)
	}
	return nil
}

func mergeAddress(dst *domain.Address, src *AddressRequest) {
	if src.FirstName != nil {
		dst.FirstName = *src.FirstName
	}
	if src.LastName != nil {
		dst.LastName = *src.LastName
	}
	if src.Company != nil {
		dst.Company = *src.Company
	}
	if src.Address1 != nil {
		dst.Address1 = *src.Address1
	}
	if src.Address2 != nil {
		dst.Address2 = *src.Address2
	}
	if src.City != nil {
		dst.City = *src.City
	}
	if src.State != nil {
		dst.State = *src.State
	}
	if src.Postcode != nil {
		dst.Postcode = *src.Postcode
	}
	if src.Country != nil {
		dst.Country = *src.Country
	}
	if src.Email != nil {
		dst.Email = *src.Email
	}
	if src.Phone != nil {
		dst.Phone = *src.Phone
	}
}

// applyLineItems reconciles requested product lines against the order. An id
// matching an existing item merges into it; id zero appends a new item; an
// unknown non-zero id is rejected. Items the request omits are kept as-is.
func applyLineItems(order *domain.Order, reqs []LineItemRequest) error {
	const op = "order.map"

	for i, req := range reqs {
		var item *domain.LineItem
		if req.ID != 0 {
			for j := range order.LineItems {
				if order.LineItems[j].ID == req.ID {
					item = &order.LineItems[j]
					break
				}
			}
			if item == nil {
				return domain.NewValidationError(op, "line_items",
					fmt.Sprintf("order line item with id %d does not exist", req.ID))
			}
		} else {
			order.LineItems = append(order.LineItems, domain.LineItem{Quantity: 1})
			item = &order.LineItems[len(order.LineItems)-1]
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.ProductID != nil {
			item.ProductID = *req.ProductID
		}
		if req.VariationID != nil {
			item.VariationID = *req.VariationID
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.TaxClass != nil {
			item.TaxClass = *req.TaxClass
		}
		if req.Total != nil {
			total, err := parseAmount(op, fmt.Sprintf("line_items[%d].total", i), *req.Total)
			if err != nil {
				return err
			}
			item.Total = total
			// A line created without an explicit subtotal starts undiscounted.
			if req.ID == 0 && req.Subtotal == nil {
				item.Subtotal = total
			}
		}
		if req.Subtotal != nil {
			subtotal, err := parseAmount(op, fmt.Sprintf("line_items[%d].subtotal", i), *req.Subtotal)
			if err != nil {
				return err
			}
			item.Subtotal = subtotal
		}
		for _, m := range req.MetaData {
			upsertMeta(&item.MetaData, m)
		}
	}
	return nil
}

func applyShippingLines(order *domain.Order, reqs []ShippingLineRequest) error {
	const op = "order.map"

	for i, req := range reqs {
		var line *domain.ShippingLine
		if req.ID != 0 {
			for j := range order.ShippingLines {
				if order.ShippingLines[j].ID == req.ID {
					line = &order.ShippingLines[j]
					break
				}
			}
			if line == nil {
				return domain.NewValidationError(op, "shipping_lines",
					fmt.Sprintf("order shipping line with id %d does not exist", req.ID))
			}
		} else {
			order.ShippingLines = append(order.ShippingLines, domain.ShippingLine{})
			line = &order.ShippingLines[len(order.ShippingLines)-1]
		}

		if req.MethodTitle != nil {
			line.MethodTitle = *req.MethodTitle
		}
		if req.MethodID != nil {
			line.MethodID = *req.MethodID
		}
		if req.InstanceID != nil {
			line.InstanceID = *req.InstanceID
		}
		if req.Total != nil {
			total, err := parseAmount(op, fmt.Sprintf("shipping_lines[%d].total", i), *req.Total)
			if err != nil {
				return err
			}
			line.Total = total
		}
		for _, m := range req.MetaData {
			upsertMeta(&line.MetaData, m)
		}
	}
	return nil
}

func applyFeeLines(order *domain.Order, reqs []FeeLineRequest) error {
	const op = "order.map"

	for i, req := range reqs {
		var line *domain.FeeLine
		if req.ID != 0 {
			for j := range order.FeeLines {
				if order.FeeLines[j].ID == req.ID {
					line = &order.FeeLines[j]
					break
				}
			}
			if line == nil {
				return domain.NewValidationError(op, "fee_lines",
					fmt.Sprintf("order fee line with id %d does not exist", req.ID))
			}
		} else {
			order.FeeLines = append(order.FeeLines, domain.FeeLine{TaxStatus: "taxable"})
			line = &order.FeeLines[len(order.FeeLines)-1]
		}

		if req.Name != nil {
			line.Name = *req.Name
		}
		if req.TaxClass != nil {
			line.TaxClass = *req.TaxClass
		}
		if req.TaxStatus != nil {
			line.TaxStatus = *req.TaxStatus
		}
		if req.Total != nil {
			total, err := parseAmount(op, fmt.Sprintf("fee_lines[%d].total", i), *req.Total)
			if err != nil {
				return err
			}
			line.Total = total
		}
		for _, m := range req.MetaData {
			upsertMeta(&line.MetaData, m)
		}
	}
	return nil
}

// applyCouponLines reconciles coupon lines. A new line requires a non-empty
// code; codes are always stored normalized.
func applyCouponLines(order *domain.Order, reqs []CouponLineRequest) error {
	const op = "order.map"

	for i, req := range reqs {
		var line *domain.CouponLine
		if req.ID != 0 {
			for j := range order.CouponLines {
				if order.CouponLines[j].ID == req.ID {
					line = &order.CouponLines[j]
					break
				}
			}
			if line == nil {
				return domain.NewValidationError(op, "coupon_lines",
					fmt.Sprintf("order coupon line with id %d does not exist", req.ID))
			}
		} else {
			if req.Code == nil || domain.NormalizeCouponCode(*req.Code) == "" {
				return domain.NewValidationError(op, "coupon_lines", "coupon code is required")
			}
			order.CouponLines = append(order.CouponLines, domain.CouponLine{})
			line = &order.CouponLines[len(order.CouponLines)-1]
		}

		if req.Code != nil {
			line.Code = domain.NormalizeCouponCode(*req.Code)
		}
		if req.Discount != nil {
			discount, err := parseAmount(op, fmt.Sprintf("coupon_lines[%d].discount", i), *req.Discount)
			if err != nil {
				return err
			}
			line.Discount = discount
		}
		if req.DiscountTax != nil {
			tax, err := parseAmount(op, fmt.Sprintf("coupon_lines[%d].discount_tax", i), *req.DiscountTax)
			if err != nil {
				return err
			}
			line.DiscountTax = tax
		}
		for _, m := range req.MetaData {
			upsertMeta(&line.MetaData, m)
		}
	}
	return nil
}

func upsertMeta(list *[]domain.MetaData, m MetaDataRequest) {
	if m.ID != 0 {
		for i := range *list {
			if (*list)[i].ID == m.ID {
				(*list)[i].Key = m.Key
				(*list)[i].Value = m.Value
				return
			}
		}
	}
	*list = append(*list, domain.MetaData{ID: m.ID, Key: m.Key, Value: m.Value})
}

// parseAmount parses a monetary string from a write payload. Unlike the
// response formatter, which coerces garbage to zero, write payloads reject
// malformed amounts outright.
func parseAmount(op, field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(op, field, fmt.Sprintf("invalid monetary amount: %q", s))
	}
	return d, nil
}
