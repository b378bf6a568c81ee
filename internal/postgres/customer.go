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

// CustomerStore implements domain.CustomerStore using PostgreSQL.
type CustomerStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CustomerStore implements domain.CustomerStore.
var _ domain.CustomerStore = (*CustomerStore)(nil)

// NewCustomerStore creates a new PostgreSQL-backed customer store.
func NewCustomerStore(pool *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

const customerColumns = `id, email, first_name, last_name, username,
	date_created, date_modified, billing, shipping, is_paying_customer, meta_data`

func (s *CustomerStore) Find(ctx context.Context, id int64) (*domain.Customer, error) {
	const op = "postgres.customer.find"

	var (
		c        domain.Customer
		billing  []byte
		shipping []byte
		meta     []byte
	)
	err := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id).Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Username,
		&c.DateCreated, &c.DateModified, &billing, &shipping, &c.IsPayingCustomer, &meta,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, domain.Internal(err, op, "failed to load customer")
	}

	var billingPayload addressPayload
	if err := json.Unmarshal(billing, &billingPayload); err != nil {
		return nil, domain.Internal(err, op, "failed to decode billing address")
	}
	c.Billing = billingPayload.toAddress()

	var shippingPayload addressPayload
	if err := json.Unmarshal(shipping, &shippingPayload); err != nil {
		return nil, domain.Internal(err, op, "failed to decode shipping address")
	}
	c.Shipping = shippingPayload.toAddress()

	var metaPayloads []metaPayload
	if err := json.Unmarshal(meta, &metaPayloads); err != nil {
		return nil, domain.Internal(err, op, "failed to decode customer metadata")
	}
	c.MetaData = metaPayloadsTo(metaPayloads)

	return &c, nil
}

func (s *CustomerStore) FindByEmail(ctx context.Context, email string) (int64, error) {
	const op = "postgres.customer.find_by_email"

	var id int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM customers WHERE email = $1`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, domain.Internal(err, op, "failed to look up customer email")
	}
	return id, nil
}

func (s *CustomerStore) Query(ctx context.Context, filter domain.CustomerFilter) ([]int64, int64, error) {
	const op = "postgres.customer.query"

	where := ""
	args := []any{}
	switch {
	case filter.Email != "":
		where = " WHERE email = $1"
		args = append(args, filter.Email)
	case filter.Search != "":
		where = ` WHERE email ILIKE $1 OR username ILIKE $1
			OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count customers")
	}

	limitPos := len(args) + 1
	args = append(args, filter.Limit(), filter.Offset())
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM customers`+where+
			` ORDER BY date_created DESC, id DESC`+
			` LIMIT $`+strconv.Itoa(limitPos)+` OFFSET $`+strconv.Itoa(limitPos+1),
		args...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query customers")
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to scan customer ids")
	}
	return ids, total, nil
}

func (s *CustomerStore) Save(ctx context.Context, customer *domain.Customer) error {
	const op = "postgres.customer.save"

	billing, err := json.Marshal(addressPayloadFrom(customer.Billing))
	if err != nil {
		return domain.Internal(err, op, "failed to encode billing address")
	}
	shipping, err := json.Marshal(addressPayloadFrom(customer.Shipping))
	if err != nil {
		return domain.Internal(err, op, "failed to encode shipping address")
	}
	meta, err := json.Marshal(metaPayloadsFrom(customer.MetaData))
	if err != nil {
		return domain.Internal(err, op, "failed to encode customer metadata")
	}

	args := []any{
		customer.Email, customer.FirstName, customer.LastName, customer.Username,
		customer.DateCreated, customer.DateModified,
		billing, shipping, customer.IsPayingCustomer, meta,
	}

	if customer.ID == 0 {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO customers (
				email, first_name, last_name, username,
				date_created, date_modified, billing, shipping,
				is_paying_customer, meta_data
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`, args...).Scan(&customer.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to insert customer")
		}
		return nil
	}

	args = append(args, customer.ID)
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers SET
			email = $1, first_name = $2, last_name = $3, username = $4,
			date_created = $5, date_modified = $6, billing = $7, shipping = $8,
			is_paying_customer = $9, meta_data = $10
		WHERE id = $11`, args...)
	if err != nil {
		return domain.Internal(err, op, "failed to update customer")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (s *CustomerStore) Delete(ctx context.Context, id int64) error {
	const op = "postgres.customer.delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete customer")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
