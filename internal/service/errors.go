package service

import (
	"github.com/dukerupert/njord/internal/domain"
)

// Order-related errors
var (
	ErrOrderNotFound = domain.ErrOrderNotFound
)

// Coupon-related errors
var (
	ErrCouponNotFound      = domain.ErrCouponNotFound
	ErrEmptyCouponCode     = domain.Errorf(domain.EINVALID, "", "The coupon code cannot be empty")
	ErrDuplicateCouponCode = domain.Errorf(domain.ECONFLICT, "", "The coupon code already exists")
)

// Customer-related errors
var (
	ErrCustomerNotFound    = domain.ErrCustomerNotFound
	ErrDuplicateEmail      = domain.Errorf(domain.ECONFLICT, "", "An account is already registered with this email address")
	ErrTrashingUnsupported = &domain.Error{
		Code:    domain.ENOTIMPL,
		Message: "Customers do not support trashing",
	}
)
