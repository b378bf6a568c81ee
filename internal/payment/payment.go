// Package payment implements the payment-completion transition for orders.
//
// Implementations: StandardCompleter, MockCompleter. Gateway integration is
// deliberately out of scope; completing payment here is a domain transition
// plus whatever side effects the wiring attaches downstream.
package payment

import (
	"context"
	"time"

	"github.com/dukerupert/njord/internal/domain"
)

// Compile-time checks.
var (
	_ domain.PaymentCompleter = (*StandardCompleter)(nil)
	_ domain.PaymentCompleter = (*MockCompleter)(nil)
)

// StandardCompleter stamps paid timestamps and advances the order status
// through the domain transition.
type StandardCompleter struct {
	now func() time.Time
}

// NewStandardCompleter creates the default payment completer.
func NewStandardCompleter() *StandardCompleter {
	return &StandardCompleter{now: time.Now}
}

// MarkPaid performs the payment-completion transition. Already-paid orders
// are left untouched.
func (c *StandardCompleter) MarkPaid(ctx context.Context, order *domain.Order) error {
	order.PaymentComplete(c.now().UTC())
	return nil
}

// MockCompleter is a test implementation that records invocations.
type MockCompleter struct {
	MarkPaidFunc func(ctx context.Context, order *domain.Order) error

	// Calls counts MarkPaid invocations.
	Calls int
}

// NewMockCompleter creates a mock that delegates to the standard completer
// unless MarkPaidFunc is set.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// MarkPaid records the call and delegates.
func (m *MockCompleter) MarkPaid(ctx context.Context, order *domain.Order) error {
	m.Calls++
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, order)
	}
	return NewStandardCompleter().MarkPaid(ctx, order)
}
