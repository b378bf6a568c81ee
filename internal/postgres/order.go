package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/njord/internal/domain"
)

// Line group discriminants in the order_items table.
const (
	itemTypeLineItem = "line_item"
	itemTypeTax      = "tax"
	itemTypeShipping = "shipping"
	itemTypeFee      = "fee"
	itemTypeCoupon   = "coupon"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that OrderStore implements domain.OrderStore.
var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, parent_id, order_key, created_via, status, currency,
	prices_include_tax, date_created, date_modified, date_paid, date_completed,
	discount_total::text, discount_tax::text, shipping_total::text, shipping_tax::text,
	cart_tax::text, total::text, total_tax::text,
	customer_id, customer_ip, customer_user_agent, customer_note,
	billing, shipping, meta_data`

// Find loads the full order aggregate, including line groups and refund views.
func (s *OrderStore) Find(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "postgres.order.find"

	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}

	if err := s.loadItems(ctx, order); err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	if err := s.loadRefunds(ctx, order); err != nil {
		return nil, domain.Internal(err, op, "failed to load order refunds")
	}
	return order, nil
}

// Query returns the matching page of order ids plus a best-effort total.
// Worst case it issues two queries: the page query, then a count query when
// the page is full and the total cannot be derived from the page itself.
func (s *OrderStore) Query(ctx context.Context, filter domain.OrderFilter) ([]int64, int64, error) {
	const op = "postgres.order.query"

	in := orderQueryInput{Filter: filter}

	if filter.Product != nil {
		ids, err := s.orderIDsForProduct(ctx, *filter.Product)
		if err != nil {
			return nil, 0, domain.Internal(err, op, "failed to resolve product filter")
		}
		in.CandidateIDs = ids
		in.HasCandidates = true
	}
	if filter.Search != "" {
		ids, err := s.searchOrderIDs(ctx, filter.Search)
		if err != nil {
			return nil, 0, domain.Internal(err, op, "failed to resolve order search")
		}
		if in.HasCandidates {
			in.CandidateIDs = intersect(in.CandidateIDs, ids)
		} else {
			in.CandidateIDs = ids
			in.HasCandidates = true
		}
	}

	q := buildOrderQuery(in)

	rows, err := s.pool.Query(ctx, q.PageSQL, q.PageArgs...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query orders")
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to scan order ids")
	}

	if total, ok := pageTotal(filter.Offset(), len(ids), filter.Limit()); ok {
		return ids, total, nil
	}

	var total int64
	if err := s.pool.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count orders")
	}
	return ids, total, nil
}

// Save persists the aggregate in one transaction, assigning identities to
// the order, new line groups and new metadata entries. Line groups absent
// from the aggregate are removed; the aggregate always holds the full set.
func (s *OrderStore) Save(ctx context.Context, order *domain.Order) error {
	const op = "postgres.order.save"

	assignMetaIDs(order)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := s.saveOrderRow(ctx, tx, order); err != nil {
		return domain.Internal(err, op, "failed to save order")
	}
	if err := s.saveItems(ctx, tx, order); err != nil {
		return domain.Internal(err, op, "failed to save order items")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit order")
	}
	return nil
}

// Delete erases the aggregate on a hard delete, or moves the order to the
// trash status otherwise.
func (s *OrderStore) Delete(ctx context.Context, id int64, hard bool) error {
	const op = "postgres.order.delete"

	if hard {
		tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return domain.Internal(err, op, "failed to delete order")
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1, date_modified = now() WHERE id = $2`,
		domain.OrderStatusTrash.Prefixed(), id)
	if err != nil {
		return domain.Internal(err, op, "failed to trash order")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (s *OrderStore) saveOrderRow(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	billing, err := json.Marshal(addressPayloadFrom(order.Billing))
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(addressPayloadFrom(order.Shipping))
	if err != nil {
		return err
	}
	meta, err := json.Marshal(metaPayloadsFrom(order.MetaData))
	if err != nil {
		return err
	}

	args := []any{
		order.ParentID, order.OrderKey, order.CreatedVia, order.Status.Prefixed(), order.Currency,
		order.PricesIncludeTax, order.DateCreated, order.DateModified, order.DatePaid, order.DateCompleted,
		order.DiscountTotal.String(), order.DiscountTax.String(),
		order.ShippingTotal.String(), order.ShippingTax.String(),
		order.CartTax.String(), order.Total.String(), order.TotalTax.String(),
		order.CustomerID, order.CustomerIP, order.CustomerUserAgent, order.CustomerNote,
		billing, shipping, meta,
	}

	if order.ID == 0 {
		return tx.QueryRow(ctx, `
			INSERT INTO orders (
				parent_id, order_key, created_via, status, currency,
				prices_include_tax, date_created, date_modified, date_paid, date_completed,
				discount_total, discount_tax, shipping_total, shipping_tax,
				cart_tax, total, total_tax,
				customer_id, customer_ip, customer_user_agent, customer_note,
				billing, shipping, meta_data
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11::numeric, $12::numeric, $13::numeric, $14::numeric,
				$15::numeric, $16::numeric, $17::numeric,
				$18, $19, $20, $21, $22, $23, $24
			) RETURNING id`, args...).Scan(&order.ID)
	}

	args = append(args, order.ID)
	tag, err := tx.Exec(ctx, `
		UPDATE orders SET
			parent_id = $1, order_key = $2, created_via = $3, status = $4, currency = $5,
			prices_include_tax = $6, date_created = $7, date_modified = $8,
			date_paid = $9, date_completed = $10,
			discount_total = $11::numeric, discount_tax = $12::numeric,
			shipping_total = $13::numeric, shipping_tax = $14::numeric,
			cart_tax = $15::numeric, total = $16::numeric, total_tax = $17::numeric,
			customer_id = $18, customer_ip = $19, customer_user_agent = $20, customer_note = $21,
			billing = $22, shipping = $23, meta_data = $24
		WHERE id = $25`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// saveItems upserts every line group row and prunes rows no longer present
// in the aggregate.
func (s *OrderStore) saveItems(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	kept := make([]int64, 0,
		len(order.LineItems)+len(order.TaxLines)+len(order.ShippingLines)+
			len(order.FeeLines)+len(order.CouponLines))

	upsert := func(id *int64, itemType string, productID int64, payload itemPayload) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if *id == 0 {
			if err := tx.QueryRow(ctx, `
				INSERT INTO order_items (order_id, item_type, product_id, payload)
				VALUES ($1, $2, $3, $4) RETURNING id`,
				order.ID, itemType, productID, data).Scan(id); err != nil {
				return err
			}
		} else {
			if _, err := tx.Exec(ctx, `
				UPDATE order_items SET product_id = $1, payload = $2
				WHERE id = $3 AND order_id = $4`,
				productID, data, *id, order.ID); err != nil {
				return err
			}
		}
		kept = append(kept, *id)
		return nil
	}

	for i := range order.LineItems {
		li := &order.LineItems[i]
		if err := upsert(&li.ID, itemTypeLineItem, li.ProductID, lineItemPayload(li)); err != nil {
			return err
		}
	}
	for i := range order.TaxLines {
		tl := &order.TaxLines[i]
		if err := upsert(&tl.ID, itemTypeTax, 0, taxLinePayload(tl)); err != nil {
			return err
		}
	}
	for i := range order.ShippingLines {
		sl := &order.ShippingLines[i]
		if err := upsert(&sl.ID, itemTypeShipping, 0, shippingLinePayload(sl)); err != nil {
			return err
		}
	}
	for i := range order.FeeLines {
		fl := &order.FeeLines[i]
		if err := upsert(&fl.ID, itemTypeFee, 0, feeLinePayload(fl)); err != nil {
			return err
		}
	}
	for i := range order.CouponLines {
		cl := &order.CouponLines[i]
		if err := upsert(&cl.ID, itemTypeCoupon, 0, couponLinePayload(cl)); err != nil {
			return err
		}
	}

	_, err := tx.Exec(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND id <> ALL($2)`,
		order.ID, kept)
	return err
}

func (s *OrderStore) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_type, product_id, payload
		FROM order_items WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			itemType  string
			productID int64
			data      []byte
		)
		if err := rows.Scan(&id, &itemType, &productID, &data); err != nil {
			return err
		}
		var payload itemPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("order %d item %d: %w", order.ID, id, err)
		}

		switch itemType {
		case itemTypeLineItem:
			order.LineItems = append(order.LineItems, payload.toLineItem(id, productID))
		case itemTypeTax:
			order.TaxLines = append(order.TaxLines, payload.toTaxLine(id))
		case itemTypeShipping:
			order.ShippingLines = append(order.ShippingLines, payload.toShippingLine(id))
		case itemTypeFee:
			order.FeeLines = append(order.FeeLines, payload.toFeeLine(id))
		case itemTypeCoupon:
			order.CouponLines = append(order.CouponLines, payload.toCouponLine(id))
		default:
			return fmt.Errorf("order %d item %d: unknown item type %q", order.ID, id, itemType)
		}
	}
	return rows.Err()
}

func (s *OrderStore) loadRefunds(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, reason, amount::text
		FROM order_refunds WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			refund domain.Refund
			amount string
		)
		if err := rows.Scan(&refund.ID, &refund.Reason, &amount); err != nil {
			return err
		}
		refund.Amount = parseStoredDecimal(amount)
		order.Refunds = append(order.Refunds, refund)
	}
	return rows.Err()
}

// orderIDsForProduct resolves the product filter to the set of orders that
// contain a line item for the product.
func (s *OrderStore) orderIDsForProduct(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT order_id FROM order_items
		WHERE item_type = $1 AND product_id = $2`, itemTypeLineItem, productID)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// searchOrderIDs resolves a free-text search against the order id and the
// billing contact fields, returning a bounded candidate set.
func (s *OrderStore) searchOrderIDs(ctx context.Context, term string) ([]int64, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM orders
		WHERE CAST(id AS TEXT) LIKE $1
		   OR billing->>'email' ILIKE $1
		   OR billing->>'first_name' ILIKE $1
		   OR billing->>'last_name' ILIKE $1
		ORDER BY id DESC
		LIMIT 100`, pattern)
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		status   string
		amounts  [7]string
		billing  []byte
		shipping []byte
		meta     []byte
	)
	err := row.Scan(
		&o.ID, &o.ParentID, &o.OrderKey, &o.CreatedVia, &status, &o.Currency,
		&o.PricesIncludeTax, &o.DateCreated, &o.DateModified, &o.DatePaid, &o.DateCompleted,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
		&o.CustomerID, &o.CustomerIP, &o.CustomerUserAgent, &o.CustomerNote,
		&billing, &shipping, &meta,
	)
	if err != nil {
		return nil, err
	}

	o.Status = domain.ParseOrderStatus(status)
	o.DiscountTotal = parseStoredDecimal(amounts[0])
	o.DiscountTax = parseStoredDecimal(amounts[1])
	o.ShippingTotal = parseStoredDecimal(amounts[2])
	o.ShippingTax = parseStoredDecimal(amounts[3])
	o.CartTax = parseStoredDecimal(amounts[4])
	o.Total = parseStoredDecimal(amounts[5])
	o.TotalTax = parseStoredDecimal(amounts[6])

	var billingPayload addressPayload
	if err := json.Unmarshal(billing, &billingPayload); err != nil {
		return nil, err
	}
	o.Billing = billingPayload.toAddress()

	var shippingPayload addressPayload
	if err := json.Unmarshal(shipping, &shippingPayload); err != nil {
		return nil, err
	}
	o.Shipping = shippingPayload.toAddress()

	var metaPayloads []metaPayload
	if err := json.Unmarshal(meta, &metaPayloads); err != nil {
		return nil, err
	}
	o.MetaData = metaPayloadsTo(metaPayloads)

	return &o, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// assignMetaIDs gives new metadata entries identities unique within the
// order, counting up from the current maximum.
func assignMetaIDs(order *domain.Order) {
	var next int64
	bump := func(entries []domain.MetaData) {
		for _, m := range entries {
			if m.ID > next {
				next = m.ID
			}
		}
	}
	bump(order.MetaData)
	for _, li := range order.LineItems {
		bump(li.MetaData)
	}
	for _, tl := range order.TaxLines {
		bump(tl.MetaData)
	}
	for _, sl := range order.ShippingLines {
		bump(sl.MetaData)
	}
	for _, fl := range order.FeeLines {
		bump(fl.MetaData)
	}
	for _, cl := range order.CouponLines {
		bump(cl.MetaData)
	}

	assign := func(entries []domain.MetaData) {
		for i := range entries {
			if entries[i].ID == 0 {
				next++
				entries[i].ID = next
			}
		}
	}
	assign(order.MetaData)
	for i := range order.LineItems {
		assign(order.LineItems[i].MetaData)
	}
	for i := range order.TaxLines {
		assign(order.TaxLines[i].MetaData)
	}
	for i := range order.ShippingLines {
		assign(order.ShippingLines[i].MetaData)
	}
	for i := range order.FeeLines {
		assign(order.FeeLines[i].MetaData)
	}
	for i := range order.CouponLines {
		assign(order.CouponLines[i].MetaData)
	}
}

func intersect(a, b []int64) []int64 {
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	out := []int64{}
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func parseStoredDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
