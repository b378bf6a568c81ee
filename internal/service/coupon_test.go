package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/njord/internal/domain"
)

type mockCouponStore struct {
	coupons map[int64]*domain.Coupon
	nextID  int64
}

func newMockCouponStore() *mockCouponStore {
	return &mockCouponStore{coupons: map[int64]*domain.Coupon{}, nextID: 1}
}

func (m *mockCouponStore) Find(ctx context.Context, id int64) (*domain.Coupon, error) {
	c, ok := m.coupons[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCouponStore) FindByCode(ctx context.Context, code string) (int64, error) {
	for id, c := range m.coupons {
		if c.Code == code {
			return id, nil
		}
	}
	return 0, nil
}

func (m *mockCouponStore) Query(ctx context.Context, filter domain.CouponFilter) ([]int64, int64, error) {
	ids := make([]int64, 0, len(m.coupons))
	for id, c := range m.coupons {
		if c.Status == domain.CouponStatusTrash {
			continue
		}
		if filter.Code != "" && c.Code != filter.Code {
			continue
		}
		ids = append(ids, id)
	}
	return ids, int64(len(ids)), nil
}

func (m *mockCouponStore) Save(ctx context.Context, coupon *domain.Coupon) error {
	if coupon.ID == 0 {
		coupon.ID = m.nextID
		m.nextID++
	}
	cp := *coupon
	m.coupons[coupon.ID] = &cp
	return nil
}

func (m *mockCouponStore) Delete(ctx context.Context, id int64, hard bool) error {
	c, ok := m.coupons[id]
	if !ok {
		return domain.ErrCouponNotFound
	}
	if hard {
		delete(m.coupons, id)
	} else {
		c.Status = domain.CouponStatusTrash
	}
	return nil
}

func newTestCouponService(t *testing.T, store domain.CouponStore) CouponService {
	t.Helper()
	svc, err := NewCouponService(zerolog.Nop(), store)
	require.NoError(t, err)
	return svc
}

func TestCouponService_CreateRequiresCode(t *testing.T) {
	svc := newTestCouponService(t, newMockCouponStore())

	_, err := svc.Create(context.Background(), &CouponRequest{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyCouponCode) || domain.IsCode(err, domain.EINVALID))

	_, err = svc.Create(context.Background(), &CouponRequest{Code: strPtr("   ")})
	require.Error(t, err)
}

func TestCouponService_CreateNormalizesCode(t *testing.T) {
	svc := newTestCouponService(t, newMockCouponStore())

	coupon, err := svc.Create(context.Background(), &CouponRequest{
		Code:   strPtr("  SPRING10 "),
		Amount: strPtr("10.00"),
	})
	require.NoError(t, err)
	require.Equal(t, "spring10", coupon.Code)
	require.Equal(t, domain.DiscountTypeFixedCart, coupon.DiscountType)
}

func TestCouponService_DuplicateCodeConflicts(t *testing.T) {
	store := newMockCouponStore()
	svc := newTestCouponService(t, store)

	_, err := svc.Create(context.Background(), &CouponRequest{Code: strPtr("spring10")})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CouponRequest{Code: strPtr("SPRING10")})
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.ECONFLICT))
}

func TestCouponService_UpdateKeepingOwnCode(t *testing.T) {
	store := newMockCouponStore()
	svc := newTestCouponService(t, store)

	coupon, err := svc.Create(context.Background(), &CouponRequest{Code: strPtr("spring10")})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), coupon.ID, &CouponRequest{
		Code:        strPtr("spring10"),
		Description: strPtr("spring sale"),
	})
	require.NoError(t, err)
	require.Equal(t, "spring sale", updated.Description)
}

func TestCouponService_InvalidAmountRejected(t *testing.T) {
	svc := newTestCouponService(t, newMockCouponStore())

	_, err := svc.Create(context.Background(), &CouponRequest{
		Code:   strPtr("spring10"),
		Amount: strPtr("ten"),
	})
	require.Error(t, err)
	require.Contains(t, domain.GetValidationFields(err), "amount")
}

func TestCouponService_MinimumAboveMaximumRejected(t *testing.T) {
	svc := newTestCouponService(t, newMockCouponStore())

	_, err := svc.Create(context.Background(), &CouponRequest{
		Code:          strPtr("spring10"),
		MinimumAmount: strPtr("50.00"),
		MaximumAmount: strPtr("20.00"),
	})
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))
}

func TestCouponService_DeleteWithoutForceTrashes(t *testing.T) {
	store := newMockCouponStore()
	svc := newTestCouponService(t, store)

	coupon, err := svc.Create(context.Background(), &CouponRequest{Code: strPtr("spring10")})
	require.NoError(t, err)
	require.Equal(t, domain.CouponStatusPublish, coupon.Status)

	trashed, err := svc.Delete(context.Background(), coupon.ID, false)
	require.NoError(t, err)
	require.Equal(t, domain.CouponStatusTrash, trashed.Status)

	// The trashed coupon is still loadable by id but out of listings.
	_, err = svc.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	coupons, total, err := svc.List(context.Background(), domain.CouponFilter{})
	require.NoError(t, err)
	require.Empty(t, coupons)
	require.Zero(t, total)
}

func TestCouponService_DeleteWithForceErases(t *testing.T) {
	store := newMockCouponStore()
	svc := newTestCouponService(t, store)

	coupon, err := svc.Create(context.Background(), &CouponRequest{Code: strPtr("spring10")})
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), coupon.ID, true)
	require.NoError(t, err)
	require.Equal(t, coupon.ID, deleted.ID)

	_, err = svc.Get(context.Background(), coupon.ID)
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.ENOTFOUND))
}
