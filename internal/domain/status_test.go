package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected OrderStatus
	}{
		{"processing", OrderStatusProcessing},
		{"ord-processing", OrderStatusProcessing},
		{"on-hold", OrderStatusOnHold},
		{"ord-on-hold", OrderStatusOnHold},
		{"trash", OrderStatusTrash},
		{"wholesale", OrderStatus("wholesale")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseOrderStatus(tt.input))
		})
	}
}

func TestOrderStatus_Prefixed(t *testing.T) {
	require.Equal(t, "ord-pending", OrderStatusPending.Prefixed())
	require.Equal(t, "ord-on-hold", OrderStatusOnHold.Prefixed())

	// Already-prefixed input is not double-prefixed.
	require.Equal(t, "ord-completed", OrderStatus("ord-completed").Prefixed())
}

func TestOrderStatus_Known(t *testing.T) {
	for _, s := range OrderStatuses() {
		require.True(t, s.Known(), "status %q", s)
	}
	require.False(t, OrderStatus("shipped").Known())
	require.False(t, OrderStatus("").Known())
}

func TestOrderStatus_Terminal(t *testing.T) {
	require.True(t, OrderStatusCompleted.Terminal())
	require.True(t, OrderStatusRefunded.Terminal())
	require.False(t, OrderStatusPending.Terminal())
	require.False(t, OrderStatusProcessing.Terminal())
	require.False(t, OrderStatusTrash.Terminal())
}
