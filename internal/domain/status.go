package domain

import "strings"

// OrderStatus is an order lifecycle state. Statuses are namespaced with the
// "ord-" prefix in storage so they can share a status column with other
// resources; the prefix never appears in API responses.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusTrash      OrderStatus = "trash"
)

// statusPrefix namespaces order statuses in storage.
const statusPrefix = "ord-"

// OrderStatuses lists every known order status, unprefixed.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusOnHold,
		OrderStatusCompleted,
		OrderStatusCancelled,
		OrderStatusRefunded,
		OrderStatusFailed,
		OrderStatusTrash,
	}
}

// ParseOrderStatus normalizes a status token, accepting prefixed or
// unprefixed input. Unknown tokens are passed through as-is to leave room
// for custom statuses registered by extensions.
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.TrimPrefix(s, statusPrefix))
}

// Prefixed returns the namespaced storage form of the status.
func (s OrderStatus) Prefixed() string {
	if strings.HasPrefix(string(s), statusPrefix) {
		return string(s)
	}
	return statusPrefix + string(s)
}

// Known reports whether s is one of the built-in order statuses.
func (s OrderStatus) Known() bool {
	for _, known := range OrderStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is a terminal lifecycle state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return true
	}
	return false
}
