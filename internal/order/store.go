package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// ErrNotFound indicates the order does not exist.
var ErrNotFound = errors.New("order not found")

// PGStore persists orders, items and the status history in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const orderColumns = `
id, status, fulfillment_status, payment_status, currency, voucher_code,
pricing_subtotal, pricing_tax, pricing_discount, pricing_shipping,
pricing_total, total_paid, due, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o        Order
		voucher  pgtype.Text
		subtotal pgtype.Numeric
		tax      pgtype.Numeric
		discount pgtype.Numeric
		shipping pgtype.Numeric
		total    pgtype.Numeric
		paid     pgtype.Numeric
		due      pgtype.Numeric
	)
	err := row.Scan(
		&o.ID, &o.Status, &o.FulfillmentStatus, &o.PaymentStatus, &o.Currency, &voucher,
		&subtotal, &tax, &discount, &shipping, &total, &paid, &due,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	if voucher.Valid {
		code := voucher.String
		o.VoucherCode = &code
	}
	for _, pair := range []struct {
		src pgtype.Numeric
		dst *decimal.Decimal
	}{
		{subtotal, &o.Subtotal},
		{tax, &o.Tax},
		{discount, &o.Discount},
		{shipping, &o.Shipping},
		{total, &o.Total},
		{paid, &o.TotalPaid},
		{due, &o.Due},
	} {
		d, err := common.NumericToDecimal(pair.src)
		if err != nil {
			return Order{}, err
		}
		*pair.dst = d
	}
	return o, nil
}

// Get loads one order by id.
func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// List returns a page of orders, newest first, and the total count.
func (s *PGStore) List(ctx context.Context, limit, offset int32) ([]Order, int64, error) {
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders := make([]Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// ListItems returns the priced lines of an order.
func (s *PGStore) ListItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, order_id, product_id, variant_id, title, unit_price, original_price, qty, line_total
FROM order_items
WHERE order_id = $1
ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var (
			it       Item
			variant  pgtype.UUID
			unit     pgtype.Numeric
			original pgtype.Numeric
			total    pgtype.Numeric
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &variant, &it.Title, &unit, &original, &it.Qty, &total); err != nil {
			return nil, err
		}
		if variant.Valid {
			v := uuid.UUID(variant.Bytes)
			it.VariantID = &v
		}
		if it.UnitPrice, err = common.NumericToDecimal(unit); err != nil {
			return nil, err
		}
		if it.OriginalPrice, err = common.NumericToDecimal(original); err != nil {
			return nil, err
		}
		if it.Total, err = common.NumericToDecimal(total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ChangeStatus transitions the order and appends a history entry in one
// transaction. The row is locked so concurrent transitions serialize.
func (s *PGStore) ChangeStatus(ctx context.Context, id uuid.UUID, to Status, note string) (StatusChange, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return StatusChange{}, err
	}
	defer tx.Rollback(ctx)

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusChange{}, ErrNotFound
	}
	if err != nil {
		return StatusChange{}, err
	}
	if err := CanTransition(from, to); err != nil {
		return StatusChange{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, to); err != nil {
		return StatusChange{}, err
	}
	change := StatusChange{ID: uuid.New(), OrderID: id, From: from, To: to, Note: note}
	err = tx.QueryRow(ctx, `
INSERT INTO order_status_history (id, order_id, from_status, to_status, note, changed_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING changed_at`,
		change.ID, id, from, to, note).Scan(&change.ChangedAt)
	if err != nil {
		return StatusChange{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return StatusChange{}, err
	}
	return change, nil
}

// SetFulfillment sets the fulfillment axis without touching order status.
func (s *PGStore) SetFulfillment(ctx context.Context, id uuid.UUID, fs FulfillmentStatus) error {
	tag, err := s.Pool.Exec(ctx,
		`UPDATE orders SET fulfillment_status = $2, updated_at = now() WHERE id = $1`, id, fs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns the status change log for an order, oldest first.
func (s *PGStore) History(ctx context.Context, orderID uuid.UUID) ([]StatusChange, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT id, order_id, from_status, to_status, note, changed_at
FROM order_status_history
WHERE order_id = $1
ORDER BY changed_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var changes []StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.From, &c.To, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
