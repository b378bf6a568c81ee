package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/njord/internal/domain"
)

func TestNewOrderResponse_Basics(t *testing.T) {
	o := domain.NewOrder("USD")
	o.ID = 117
	o.Status = domain.OrderStatusProcessing
	o.DateCreated = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	o.DateModified = o.DateCreated
	o.Total = decimal.RequireFromString("19.995")

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2})

	require.Equal(t, int64(117), resp.ID)
	require.Equal(t, "117", resp.Number)
	require.Equal(t, "processing", resp.Status)
	require.Equal(t, "20.00", resp.Total)
	require.NotNil(t, resp.DateCreatedGMT)
	require.Equal(t, "2026-02-14T09:30:00", *resp.DateCreatedGMT)
	require.Nil(t, resp.DatePaid)
	require.Nil(t, resp.DateCompletedGMT)
}

func TestNewOrderResponse_LocalTimestampPair(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	o := domain.NewOrder("USD")
	o.DateCreated = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2, Location: loc})

	require.Equal(t, "2026-02-14T01:30:00", *resp.DateCreated)
	require.Equal(t, "2026-02-14T09:30:00", *resp.DateCreatedGMT)
}

func TestNewOrderResponse_TaxBreakdownExplodes(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{
			ID:       5,
			Name:     "Mug",
			Quantity: 1,
			Taxes: domain.TaxBreakdown{
				Total: map[int64]decimal.Decimal{12: decimal.RequireFromString("1.00")},
			},
		},
	}

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2})

	require.Len(t, resp.LineItems, 1)
	taxes := resp.LineItems[0].Taxes
	require.Len(t, taxes, 1)
	require.Equal(t, int64(12), taxes[0].ID)
	require.Equal(t, "1.00", taxes[0].Total)
	require.Equal(t, "", taxes[0].Subtotal)

	raw, err := json.Marshal(taxes)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":12,"total":"1.00","subtotal":""}]`, string(raw))
}

func TestNewOrderResponse_TaxBreakdownOrdered(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{
			Quantity: 1,
			Taxes: domain.TaxBreakdown{
				Total: map[int64]decimal.Decimal{
					9: decimal.RequireFromString("0.90"),
					2: decimal.RequireFromString("0.20"),
					5: decimal.RequireFromString("0.50"),
				},
				Subtotal: map[int64]decimal.Decimal{2: decimal.RequireFromString("0.20")},
			},
		},
	}

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2})

	taxes := resp.LineItems[0].Taxes
	require.Len(t, taxes, 3)
	require.Equal(t, int64(2), taxes[0].ID)
	require.Equal(t, "0.20", taxes[0].Subtotal)
	require.Equal(t, int64(5), taxes[1].ID)
	require.Equal(t, "", taxes[1].Subtotal)
	require.Equal(t, int64(9), taxes[2].ID)
}

func TestNewOrderResponse_UnitPrice(t *testing.T) {
	o := domain.NewOrder("USD")
	o.LineItems = []domain.LineItem{
		{Quantity: 3, Total: decimal.RequireFromString("10.00"), SKU: "MUG-01"},
		{Quantity: 0, Total: decimal.RequireFromString("10.00")},
	}

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2})

	require.Equal(t, "3.33", resp.LineItems[0].Price)
	require.Equal(t, "MUG-01", resp.LineItems[0].SKU)
	require.Equal(t, "0.00", resp.LineItems[1].Price)
}

func TestNewOrderResponse_RefundTotalsNegative(t *testing.T) {
	o := domain.NewOrder("USD")
	o.Refunds = []domain.Refund{
		{ID: 8, Reason: "damaged", Amount: decimal.RequireFromString("5.00")},
	}

	resp := NewOrderResponse(o, ResponseOptions{Precision: 2})

	require.Len(t, resp.Refunds, 1)
	require.Equal(t, "-5.00", resp.Refunds[0].Total)
}

func TestNewOrderResponse_ShippingAddressHasNoContactFields(t *testing.T) {
	o := domain.NewOrder("USD")
	o.Billing.Email = "ada@example.com"

	raw, err := json.Marshal(NewOrderResponse(o, ResponseOptions{Precision: 2}))
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))

	var shipping map[string]any
	require.NoError(t, json.Unmarshal(m["shipping"], &shipping))
	require.NotContains(t, shipping, "email")
	require.NotContains(t, shipping, "phone")

	var billing map[string]any
	require.NoError(t, json.Unmarshal(m["billing"], &billing))
	require.Equal(t, "ada@example.com", billing["email"])
}

func TestNewOrderResponse_PrecisionApplies(t *testing.T) {
	o := domain.NewOrder("JPY")
	o.Total = decimal.RequireFromString("1200.4")

	resp := NewOrderResponse(o, ResponseOptions{Precision: 0})
	require.Equal(t, "1200", resp.Total)

	resp = NewOrderResponse(o, ResponseOptions{Precision: 3})
	require.Equal(t, "1200.400", resp.Total)
}
