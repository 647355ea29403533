package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type PgOrderRepo struct{ db *sql.DB }

func NewPgOrderRepo(db *sql.DB) *PgOrderRepo { return &PgOrderRepo{db: db} }

var _ usecase.OrderRepo = (*PgOrderRepo)(nil)

// Create inserts the order header and all line items in one transaction so
// a header with zero line items can never survive a partial failure.
func (r *PgOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id, user_id, address_id, total, payment_method, status, processor_ref, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, nullUUID(o.UserID), nullUUID(o.AddressID), o.Total, o.PaymentMethod,
		o.Status, nullString(o.ProcessorRef), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, subtotal, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

const orderColumns = `id, user_id, address_id, total, payment_method, status, processor_ref, created_at, updated_at`

func (r *PgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.hydrate(ctx, row)
}

func (r *PgOrderRepo) GetByProcessorRef(ctx context.Context, ref string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE processor_ref = $1`, ref)
	return r.hydrate(ctx, row)
}

func (r *PgOrderRepo) hydrate(ctx context.Context, row *sql.Row) (*entity.Order, error) {
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PgOrderRepo) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
FROM order_items i
JOIN products p ON p.id = i.product_id
WHERE i.order_id = $1
ORDER BY i.created_at`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// UpdateStatusIf applies a conditional transition keyed on the current
// status. Two concurrent webhook deliveries for the same order serialize
// here: only one sees an affected row.
func (r *PgOrderRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []entity.Status, to entity.Status, upd usecase.StatusUpdate) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("no source statuses for transition to %s", to)
	}

	args := []any{to, nullString(upd.ProcessorRef), nullString(string(upd.PaymentMethod)), id}
	placeholders := make([]string, 0, len(from))
	for _, s := range from {
		args = append(args, s)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = $1,
    processor_ref = COALESCE($2, processor_ref),
    payment_method = COALESCE($3, payment_method),
    updated_at = now()
WHERE id = $4 AND status IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 means not found or status mismatch; both are no-ops here.
	return rows > 0, nil
}

func (r *PgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, abandonedAfter time.Duration) ([]entity.Order, error) {
	cutoff := time.Now().Add(-abandonedAfter)
	rows, err := r.db.QueryContext(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1
  AND (status <> $2 OR created_at > $3)
ORDER BY created_at DESC`,
		userID, entity.StatusInitiated, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o      entity.Order
		user   uuid.NullUUID
		addr   uuid.NullUUID
		ref    sql.NullString
		method sql.NullString
	)
	err := row.Scan(&o.ID, &user, &addr, &o.Total, &method, &o.Status, &ref, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if user.Valid {
		o.UserID = &user.UUID
	}
	if addr.Valid {
		o.AddressID = &addr.UUID
	}
	o.ProcessorRef = ref.String
	o.PaymentMethod = entity.PaymentMethod(method.String)
	return &o, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
