package totals

import (
	"context"

	"github.com/dukerupert/njord/internal/domain"
)

// MockCalculator is a test implementation of domain.TotalsCalculator that
// records every invocation.
type MockCalculator struct {
	CalculateTotalsFunc func(ctx context.Context, order *domain.Order, recalcFull bool) error

	// Calls records the recalcFull argument of each invocation, in order.
	Calls []bool
}

// NewMockCalculator creates a mock that delegates to the standard calculator
// unless CalculateTotalsFunc is set.
func NewMockCalculator() *MockCalculator {
	return &MockCalculator{}
}

// CalculateTotals records the call and delegates to the configured function,
// falling back to the standard calculator.
func (m *MockCalculator) CalculateTotals(ctx context.Context, order *domain.Order, recalcFull bool) error {
	m.Calls = append(m.Calls, recalcFull)
	if m.CalculateTotalsFunc != nil {
		return m.CalculateTotalsFunc(ctx, order, recalcFull)
	}
	return NewStandardCalculator().CalculateTotals(ctx, order, recalcFull)
}

// CallCount returns the number of recorded invocations.
func (m *MockCalculator) CallCount() int {
	return len(m.Calls)
}
