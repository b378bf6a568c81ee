package domain

import (
	"context"
	"time"
)

// Common resource errors.
var (
	ErrOrderNotFound    = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrCouponNotFound   = &Error{Code: ENOTFOUND, Message: "Coupon not found"}
	ErrCustomerNotFound = &Error{Code: ENOTFOUND, Message: "Customer not found"}
)

// OrderFilter is the set of collection filters accepted by order list
// requests. Zero values are no-ops; filters compose with AND semantics.
type OrderFilter struct {
	// Statuses limits results to the given statuses. The literal "any"
	// disables status filtering even if combined with other tokens.
	Statuses []string

	// Customer limits results to orders owned by a customer id.
	Customer *int64

	// Product limits results to orders containing a line item for the
	// product id.
	Product *int64

	// Search is the order search term; it wins over the generic free-text
	// parameter when both are supplied.
	Search string

	// Number matches orders whose numeric id starts with the given digits.
	Number string

	CreatedSince  *time.Time
	CreatedBefore *time.Time
	UpdatedSince  *time.Time
	UpdatedBefore *time.Time

	Page    int
	PerPage int
}

// Limit returns the page size, defaulting to 10 and capping at 100.
func (f OrderFilter) Limit() int {
	switch {
	case f.PerPage <= 0:
		return 10
	case f.PerPage > 100:
		return 100
	}
	return f.PerPage
}

// Offset returns the row offset for the requested page.
func (f OrderFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// OrderStore persists order aggregates. Implementations supply their own
// timeout and retry policy; callers treat every method as a single atomic
// operation on the aggregate.
type OrderStore interface {
	// Find loads a full order aggregate, including refund views.
	// Returns ErrOrderNotFound for unknown ids.
	Find(ctx context.Context, id int64) (*Order, error)

	// Query returns the page of matching order ids plus a best-effort
	// total count across all pages.
	Query(ctx context.Context, filter OrderFilter) (ids []int64, total int64, err error)

	// Save persists the aggregate, assigning identities to the order and
	// any new line groups or metadata entries.
	Save(ctx context.Context, order *Order) error

	// Delete removes the order. A hard delete erases the aggregate;
	// otherwise the order is moved to the trash status.
	Delete(ctx context.Context, id int64, hard bool) error
}

// TotalsCalculator recomputes an order's derived monetary totals in place
// from its line groups. recalcFull additionally re-derives per-line tax sums
// and rebuilds order-level tax lines from the per-rate breakdowns.
//
// Implementations must be idempotent: recomputing an already-consistent
// order leaves it unchanged.
type TotalsCalculator interface {
	CalculateTotals(ctx context.Context, order *Order, recalcFull bool) error
}

// PaymentCompleter performs the payment-completion transition: stamping paid
// timestamps and moving the order to a paid status. Downstream side effects
// (stock, notifications) are the implementation's concern.
type PaymentCompleter interface {
	MarkPaid(ctx context.Context, order *Order) error
}
