package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/njord/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func i64Ptr(i int64) *int64   { return &i }

func TestApplyOrderRequest_ScalarFields(t *testing.T) {
	order := domain.NewOrder("USD")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	req := &OrderRequest{
		Status:       strPtr("ord-on-hold"),
		Currency:     strPtr("EUR"),
		CustomerID:   i64Ptr(42),
		CustomerNote: strPtr("leave at the door"),
	}
	require.NoError(t, applyOrderRequest(order, req, now))

	require.Equal(t, domain.OrderStatusOnHold, order.Status)
	require.Equal(t, "EUR", order.Currency)
	require.Equal(t, int64(42), order.CustomerID)
	require.Equal(t, "leave at the door", order.CustomerNote)
}

func TestApplyOrderRequest_UnknownStatusRejected(t *testing.T) {
	order := domain.NewOrder("USD")

	err := applyOrderRequest(order, &OrderRequest{Status: strPtr("shipped")}, time.Now())
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))
	require.Contains(t, domain.GetValidationFields(err), "status")
}

func TestApplyOrderRequest_AddressMergeIsPartial(t *testing.T) {
	order := domain.NewOrder("USD")
	order.Billing = domain.Address{FirstName: "Ada", City: "Portland", Email: "ada@example.com"}

	req := &OrderRequest{
		Billing:  &AddressRequest{City: strPtr("Seattle")},
		Shipping: &AddressRequest{City: strPtr("Tacoma"), Email: strPtr("ship@example.com"), Phone: strPtr("555-0100")},
	}
	require.NoError(t, applyOrderRequest(order, req, time.Now()))

	require.Equal(t, "Ada", order.Billing.FirstName)
	require.Equal(t, "Seattle", order.Billing.City)
	require.Equal(t, "ada@example.com", order.Billing.Email)

	require.Equal(t, "Tacoma", order.Shipping.City)
	require.Empty(t, order.Shipping.Email)
	require.Empty(t, order.Shipping.Phone)
}

func TestApplyOrderRequest_MetaUpsert(t *testing.T) {
	order := domain.NewOrder("USD")
	order.MetaData = []domain.MetaData{{ID: 9, Key: "gift", Value: "no"}}

	req := &OrderRequest{MetaData: []MetaDataRequest{
		{ID: 9, Key: "gift", Value: "yes"},
		{Key: "source", Value: "phone"},
	}}
	require.NoError(t, applyOrderRequest(order, req, time.Now()))

	require.Len(t, order.MetaData, 2)
	require.Equal(t, "yes", order.MetaData[0].Value)
	require.Equal(t, "source", order.MetaData[1].Key)
}

func TestApplyLineItems_AppendAndUpdate(t *testing.T) {
	order := domain.NewOrder("USD")
	order.LineItems = []domain.LineItem{
		{ID: 3, Name: "Mug", Quantity: 1, Subtotal: decimal.RequireFromString("8.00"), Total: decimal.RequireFromString("8.00")},
	}

	req := &OrderRequest{LineItems: []LineItemRequest{
		{ID: 3, Quantity: intPtr(2)},
		{Name: strPtr("Poster"), ProductID: i64Ptr(77), Total: strPtr("12.50")},
	}}
	require.NoError(t, applyOrderRequest(order, req, time.Now()))

	require.Len(t, order.LineItems, 2)
	require.Equal(t, 2, order.LineItems[0].Quantity)
	require.Equal(t, "Mug", order.LineItems[0].Name)

	added := order.LineItems[1]
	require.Equal(t, "Poster", added.Name)
	require.Equal(t, int64(77), added.ProductID)
	require.Equal(t, 1, added.Quantity)
	require.True(t, added.Total.Equal(decimal.RequireFromString("12.50")))
	// Subtotal defaults to total on new lines.
	require.True(t, added.Subtotal.Equal(added.Total))
}

func TestApplyLineItems_UnknownIDRejected(t *testing.T) {
	order := domain.NewOrder("USD")

	err := applyOrderRequest(order, &OrderRequest{
		LineItems: []LineItemRequest{{ID: 999, Quantity: intPtr(1)}},
	}, time.Now())
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))
	require.Contains(t, domain.GetValidationFields(err), "line_items")
}

func TestApplyLineItems_MalformedAmountRejected(t *testing.T) {
	order := domain.NewOrder("USD")

	err := applyOrderRequest(order, &OrderRequest{
		LineItems: []LineItemRequest{{Name: strPtr("Mug"), Total: strPtr("not-a-number")}},
	}, time.Now())
	require.Error(t, err)
	require.Contains(t, domain.GetValidationFields(err), "line_items[0].total")
}

func TestApplyCouponLines_CodeRequiredAndNormalized(t *testing.T) {
	order := domain.NewOrder("USD")

	err := applyOrderRequest(order, &OrderRequest{
		CouponLines: []CouponLineRequest{{}},
	}, time.Now())
	require.Error(t, err)
	require.Contains(t, domain.GetValidationFields(err), "coupon_lines")

	order = domain.NewOrder("USD")
	require.NoError(t, applyOrderRequest(order, &OrderRequest{
		CouponLines: []CouponLineRequest{{Code: strPtr("  SPRING10 ")}},
	}, time.Now()))
	require.Len(t, order.CouponLines, 1)
	require.Equal(t, "spring10", order.CouponLines[0].Code)
}

func TestApplyCouponLines_DiscountAmounts(t *testing.T) {
	order := domain.NewOrder("USD")

	require.NoError(t, applyOrderRequest(order, &OrderRequest{
		CouponLines: []CouponLineRequest{{
			Code:        strPtr("spring10"),
			Discount:    strPtr("5.00"),
			DiscountTax: strPtr("0.40"),
		}},
	}, time.Now()))
	require.True(t, order.CouponLines[0].Discount.Equal(decimal.RequireFromString("5.00")))
	require.True(t, order.CouponLines[0].DiscountTax.Equal(decimal.RequireFromString("0.40")))

	err := applyOrderRequest(domain.NewOrder("USD"), &OrderRequest{
		CouponLines: []CouponLineRequest{{Code: strPtr("spring10"), Discount: strPtr("five")}},
	}, time.Now())
	require.Error(t, err)
	require.Contains(t, domain.GetValidationFields(err), "coupon_lines[0].discount")
}

func TestApplyShippingAndFeeLines(t *testing.T) {
	order := domain.NewOrder("USD")

	req := &OrderRequest{
		ShippingLines: []ShippingLineRequest{
			{MethodTitle: strPtr("Flat Rate"), MethodID: strPtr("flat_rate"), Total: strPtr("4.00")},
		},
		FeeLines: []FeeLineRequest{
			{Name: strPtr("Handling"), Total: strPtr("1.25")},
		},
	}
	require.NoError(t, applyOrderRequest(order, req, time.Now()))

	require.Len(t, order.ShippingLines, 1)
	require.Equal(t, "flat_rate", order.ShippingLines[0].MethodID)
	require.True(t, order.ShippingLines[0].Total.Equal(decimal.RequireFromString("4.00")))

	require.Len(t, order.FeeLines, 1)
	require.Equal(t, "taxable", order.FeeLines[0].TaxStatus)
}

func TestTouchesTotals(t *testing.T) {
	require.False(t, (&OrderRequest{CustomerNote: strPtr("hi")}).TouchesTotals())
	require.True(t, (&OrderRequest{LineItems: []LineItemRequest{}}).TouchesTotals())
	require.True(t, (&OrderRequest{Billing: &AddressRequest{}}).TouchesTotals())
}
