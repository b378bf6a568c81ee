package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coupon discount types.
const (
	DiscountTypePercent      = "percent"
	DiscountTypeFixedCart    = "fixed_cart"
	DiscountTypeFixedProduct = "fixed_product"
)

// Coupon lifecycle states. Coupons only move between published and trash;
// a trashed coupon stays loadable by id but drops out of listings, and its
// code stays reserved.
const (
	CouponStatusPublish = "publish"
	CouponStatusTrash   = "trash"
)

// Coupon is a discount code resource. Unlike orders, a coupon requires its
// identifying code on create and the code must be unique.
type Coupon struct {
	ID           int64
	Code         string
	Status       string
	Amount       decimal.Decimal
	DiscountType string
	Description  string

	DateCreated  time.Time
	DateModified time.Time
	DateExpires  *time.Time

	UsageCount        int
	UsageLimit        *int
	UsageLimitPerUser *int

	IndividualUse bool
	FreeShipping  bool

	MinimumAmount decimal.Decimal
	MaximumAmount decimal.Decimal

	MetaData []MetaData
}

// NormalizeCouponCode canonicalizes a coupon code for storage and lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CouponFilter filters coupon list requests.
type CouponFilter struct {
	// Code limits results to an exact (normalized) code match.
	Code string

	// Search matches codes containing the given string.
	Search string

	Page    int
	PerPage int
}

// Limit returns the page size, defaulting to 10 and capping at 100.
func (f CouponFilter) Limit() int {
	switch {
	case f.PerPage <= 0:
		return 10
	case f.PerPage > 100:
		return 100
	}
	return f.PerPage
}

// Offset returns the row offset for the requested page.
func (f CouponFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit()
}

// CouponStore persists coupons.
type CouponStore interface {
	// Find loads a coupon. Returns ErrCouponNotFound for unknown ids.
	Find(ctx context.Context, id int64) (*Coupon, error)

	// FindByCode resolves a normalized code to a coupon id, or 0 when the
	// code is unused.
	FindByCode(ctx context.Context, code string) (int64, error)

	Query(ctx context.Context, filter CouponFilter) (ids []int64, total int64, err error)
	Save(ctx context.Context, coupon *Coupon) error

	// Delete removes the coupon. A hard delete erases the row; otherwise
	// the coupon is moved to the trash status.
	Delete(ctx context.Context, id int64, hard bool) error
}
