package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/njord/internal/domain"
)

// CouponRequest is the write payload for coupon create and update calls.
// Unlike orders, the identifying code is required on create.
type CouponRequest struct {
	Code         *string `json:"code"`
	Amount       *string `json:"amount"`
	DiscountType *string `json:"discount_type" validate:"omitempty,oneof=percent fixed_cart fixed_product"`
	Description  *string `json:"description"`

	DateExpires *time.Time `json:"date_expires"`

	UsageLimit        *int `json:"usage_limit" validate:"omitempty,gte=0"`
	UsageLimitPerUser *int `json:"usage_limit_per_user" validate:"omitempty,gte=0"`

	IndividualUse *bool `json:"individual_use"`
	FreeShipping  *bool `json:"free_shipping"`

	MinimumAmount *string `json:"minimum_amount"`
	MaximumAmount *string `json:"maximum_amount"`

	MetaData []MetaDataRequest `json:"meta_data" validate:"omitempty,dive"`
}

// CouponService provides business logic for coupon operations.
type CouponService interface {
	Create(ctx context.Context, req *CouponRequest) (*domain.Coupon, error)
	Update(ctx context.Context, id int64, req *CouponRequest) (*domain.Coupon, error)
	Get(ctx context.Context, id int64) (*domain.Coupon, error)
	List(ctx context.Context, filter domain.CouponFilter) ([]*domain.Coupon, int64, error)

	// Delete trashes the coupon, or erases it when force is set. The
	// returned coupon is the pre-deletion representation.
	Delete(ctx context.Context, id int64, force bool) (*domain.Coupon, error)
}

type couponService struct {
	store  domain.CouponStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewCouponService creates a new CouponService instance.
func NewCouponService(logger zerolog.Logger, store domain.CouponStore) (CouponService, error) {
	if store == nil {
		return nil, errors.New("coupon store is required")
	}
	return &couponService{
		store:  store,
		logger: logger.With().Str("component", "coupon_service").Logger(),
		now:    time.Now,
	}, nil
}

func (s *couponService) Create(ctx context.Context, req *CouponRequest) (*domain.Coupon, error) {
	now := s.now().UTC()

	if req.Code == nil || domain.NormalizeCouponCode(*req.Code) == "" {
		return nil, ErrEmptyCouponCode
	}
	code := domain.NormalizeCouponCode(*req.Code)

	existing, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "coupon.create", "failed to check coupon code")
	}
	if existing != 0 {
		return nil, ErrDuplicateCouponCode
	}

	coupon := &domain.Coupon{
		Code:         code,
		Status:       domain.CouponStatusPublish,
		DiscountType: domain.DiscountTypeFixedCart,
		DateCreated:  now,
	}
	if err := applyCouponRequest(coupon, req, now); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, coupon); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "coupon.create", "failed to save coupon")
	}

	s.logger.Info().Int64("coupon_id", coupon.ID).Str("code", coupon.Code).Msg("coupon created")
	return coupon, nil
}

func (s *couponService) Update(ctx context.Context, id int64, req *CouponRequest) (*domain.Coupon, error) {
	coupon, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := domain.NormalizeCouponCode(*req.Code)
		if code == "" {
			return nil, ErrEmptyCouponCode
		}
		if code != coupon.Code {
			existing, err := s.store.FindByCode(ctx, code)
			if err != nil {
				return nil, domain.WrapError(err, domain.EINTERNAL, "coupon.update", "failed to check coupon code")
			}
			if existing != 0 && existing != id {
				return nil, ErrDuplicateCouponCode
			}
		}
	}

	if err := applyCouponRequest(coupon, req, s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, coupon); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "coupon.update", "failed to save coupon")
	}
	return coupon, nil
}

func (s *couponService) Get(ctx context.Context, id int64) (*domain.Coupon, error) {
	return s.store.Find(ctx, id)
}

func (s *couponService) List(ctx context.Context, filter domain.CouponFilter) ([]*domain.Coupon, int64, error) {
	filter.Code = domain.NormalizeCouponCode(filter.Code)

	ids, total, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	coupons := make([]*domain.Coupon, 0, len(ids))
	for _, id := range ids {
		coupon, err := s.store.Find(ctx, id)
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				continue
			}
			return nil, 0, err
		}
		coupons = append(coupons, coupon)
	}
	return coupons, total, nil
}

func (s *couponService) Delete(ctx context.Context, id int64, force bool) (*domain.Coupon, error) {
	const op = "coupon.delete"

	coupon, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id, force); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to delete coupon")
	}
	if !force {
		coupon.Status = domain.CouponStatusTrash
	}
	return coupon, nil
}

// applyCouponRequest merges supplied request fields into the coupon.
func applyCouponRequest(coupon *domain.Coupon, req *CouponRequest, now time.Time) error {
	const op = "coupon.map"

	if req.Code != nil {
		coupon.Code = domain.NormalizeCouponCode(*req.Code)
	}
	if req.Amount != nil {
		amount, err := parseAmount(op, "amount", *req.Amount)
		if err != nil {
			return err
		}
		coupon.Amount = amount
	}
	if req.DiscountType != nil {
		switch *req.DiscountType {
		case domain.DiscountTypePercent, domain.DiscountTypeFixedCart, domain.DiscountTypeFixedProduct:
			coupon.DiscountType = *req.DiscountType
		default:
			return domain.NewValidationError(op, "discount_type",
				fmt.Sprintf("invalid discount type: %s", *req.DiscountType))
		}
	}
	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.DateExpires != nil {
		t := req.DateExpires.UTC()
		coupon.DateExpires = &t
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = req.UsageLimit
	}
	if req.UsageLimitPerUser != nil {
		coupon.UsageLimitPerUser = req.UsageLimitPerUser
	}
	if req.IndividualUse != nil {
		coupon.IndividualUse = *req.IndividualUse
	}
	if req.FreeShipping != nil {
		coupon.FreeShipping = *req.FreeShipping
	}
	if req.MinimumAmount != nil {
		amount, err := parseAmount(op, "minimum_amount", *req.MinimumAmount)
		if err != nil {
			return err
		}
		coupon.MinimumAmount = amount
	}
	if req.MaximumAmount != nil {
		amount, err := parseAmount(op, "maximum_amount", *req.MaximumAmount)
		if err != nil {
			return err
		}
		coupon.MaximumAmount = amount
	}
	for _, m := range req.MetaData {
		upsertMeta(&coupon.MetaData, m)
	}

	if coupon.MinimumAmount.GreaterThan(decimal.Zero) &&
		coupon.MaximumAmount.GreaterThan(decimal.Zero) &&
		coupon.MinimumAmount.GreaterThan(coupon.MaximumAmount) {
		return domain.NewValidationError(op, "minimum_amount", "minimum amount exceeds maximum amount")
	}

	coupon.DateModified = now
	return nil
}
