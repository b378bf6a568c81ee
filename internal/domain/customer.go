package domain

import (
	"context"
	"time"
)

// Customer is a registered shopper. Guests place orders with CustomerID 0
// and never appear in this resource.
type Customer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Username  string

	DateCreated  time.Time
	DateModified time.Time

	Billing  Address
	Shipping Address

	IsPayingCustomer bool

	MetaData []MetaData
}

// CustomerFilter filters customer list requests.
type CustomerFilter struct {
	// Email limits results to an exact email match.
	Email string

	// Search matches email, username and name fields.
	Search string

	Page    int
	PerPage int
}

// Limit returns the page size, defaulting to 10 and capping at 100.
func (f CustomerFilter) Limit() int {
	switch {
	case f.PerPage <= 0:
		return 10
	case f.PerPage > 100:
		return 100
	}
	return f.PerPage
}

// Offset returns the row offset for the requested page.
func (f CustomerFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// CustomerStore persists customers.
type CustomerStore interface {
	// Find loads a customer. Returns ErrCustomerNotFound for unknown ids.
	Find(ctx context.Context, id int64) (*Customer, error)

	// FindByEmail resolves an email to a customer id, or 0 when unused.
	FindByEmail(ctx context.Context, email string) (int64, error)

	Query(ctx context.Context, filter CustomerFilter) (ids []int64, total int64, err error)
	Save(ctx context.Context, customer *Customer) error

	// Delete hard-deletes the customer. Customers do not support trashing;
	// the service layer enforces the force flag.
	Delete(ctx context.Context, id int64) error
}
