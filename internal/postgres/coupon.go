package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/njord/internal/domain"
)

// CouponStore implements domain.CouponStore using PostgreSQL.
type CouponStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CouponStore implements domain.CouponStore.
var _ domain.CouponStore = (*CouponStore)(nil)

// NewCouponStore creates a new PostgreSQL-backed coupon store.
func NewCouponStore(pool *pgxpool.Pool) *CouponStore {
	return &CouponStore{pool: pool}
}

const couponColumns = `id, code, status, amount::text, discount_type, description,
	date_created, date_modified, date_expires,
	usage_count, usage_limit, usage_limit_per_user,
	individual_use, free_shipping,
	minimum_amount::text, maximum_amount::text, meta_data`

func (s *CouponStore) Find(ctx context.Context, id int64) (*domain.Coupon, error) {
	const op = "postgres.coupon.find"

	var (
		c       domain.Coupon
		amounts [3]string
		meta    []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id).Scan(
		&c.ID, &c.Code, &c.Status, &amounts[0], &c.DiscountType, &c.Description,
		&c.DateCreated, &c.DateModified, &c.DateExpires,
		&c.UsageCount, &c.UsageLimit, &c.UsageLimitPerUser,
		&c.IndividualUse, &c.FreeShipping,
		&amounts[1], &amounts[2], &meta,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, op, "failed to load coupon")
	}

	c.Amount = parseStoredDecimal(amounts[0])
	c.MinimumAmount = parseStoredDecimal(amounts[1])
	c.MaximumAmount = parseStoredDecimal(amounts[2])

	var metaPayloads []metaPayload
	if err := json.Unmarshal(meta, &metaPayloads); err != nil {
		return nil, domain.Internal(err, op, "failed to decode coupon metadata")
	}
	c.MetaData = metaPayloadsTo(metaPayloads)

	return &c, nil
}

func (s *CouponStore) FindByCode(ctx context.Context, code string) (int64, error) {
	const op = "postgres.coupon.find_by_code"

	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM coupons WHERE code = $1`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, domain.Internal(err, op, "failed to look up coupon code")
	}
	return id, nil
}

func (s *CouponStore) Query(ctx context.Context, filter domain.CouponFilter) ([]int64, int64, error) {
	const op = "postgres.coupon.query"

	// Trashed coupons never appear in listings.
	where := " WHERE status <> $1"
	args := []any{domain.CouponStatusTrash}
	switch {
	case filter.Code != "":
		where += " AND code = $2"
		args = append(args, filter.Code)
	case filter.Search != "":
		where += " AND code LIKE $2"
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count coupons")
	}

	limitPos := len(args) + 1
	args = append(args, filter.Limit(), filter.Offset())
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM coupons`+where+
			` ORDER BY date_created DESC, id DESC`+
			` LIMIT $`+strconv.Itoa(limitPos)+` OFFSET $`+strconv.Itoa(limitPos+1),
		args...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query coupons")
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to scan coupon ids")
	}
	return ids, total, nil
}

func (s *CouponStore) Save(ctx context.Context, coupon *domain.Coupon) error {
	const op = "postgres.coupon.save"

	meta, err := json.Marshal(metaPayloadsFrom(coupon.MetaData))
	if err != nil {
		return domain.Internal(err, op, "failed to encode coupon metadata")
	}

	args := []any{
		coupon.Code, coupon.Status, coupon.Amount.String(), coupon.DiscountType, coupon.Description,
		coupon.DateCreated, coupon.DateModified, coupon.DateExpires,
		coupon.UsageCount, coupon.UsageLimit, coupon.UsageLimitPerUser,
		coupon.IndividualUse, coupon.FreeShipping,
		coupon.MinimumAmount.String(), coupon.MaximumAmount.String(), meta,
	}

	if coupon.ID == 0 {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO coupons (
				code, status, amount, discount_type, description,
				date_created, date_modified, date_expires,
				usage_count, usage_limit, usage_limit_per_user,
				individual_use, free_shipping,
				minimum_amount, maximum_amount, meta_data
			) VALUES (
				$1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14::numeric, $15::numeric, $16
			) RETURNING id`, args...).Scan(&coupon.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to insert coupon")
		}
		return nil
	}

	args = append(args, coupon.ID)
	tag, err := s.pool.Exec(ctx, `
		UPDATE coupons SET
			code = $1, status = $2, amount = $3::numeric, discount_type = $4, description = $5,
			date_created = $6, date_modified = $7, date_expires = $8,
			usage_count = $9, usage_limit = $10, usage_limit_per_user = $11,
			individual_use = $12, free_shipping = $13,
			minimum_amount = $14::numeric, maximum_amount = $15::numeric, meta_data = $16
		WHERE id = $17`, args...)
	if err != nil {
		return domain.Internal(err, op, "failed to update coupon")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// Delete erases the coupon on a hard delete, or moves it to the trash
// status otherwise.
func (s *CouponStore) Delete(ctx context.Context, id int64, hard bool) error {
	const op = "postgres.coupon.delete"

	if hard {
		tag, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
		if err != nil {
			return domain.Internal(err, op, "failed to delete coupon")
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrCouponNotFound
		}
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE coupons SET status = $1, date_modified = now() WHERE id = $2`,
		domain.CouponStatusTrash, id)
	if err != nil {
		return domain.Internal(err, op, "failed to trash coupon")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}
