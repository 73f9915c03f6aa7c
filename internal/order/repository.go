package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"furnimart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, status OrderStatus) error
	SetPaymentStatus(ctx context.Context, id uint, status PaymentStatus, paidAt *time.Time) error

	// UpdatePaymentIfPending conditionally writes the payment sub-document
	// only while the current status is Pending. Returns whether the write
	// applied; a false result means another delivery got there first.
	UpdatePaymentIfPending(ctx context.Context, orderID, transactionID string, status PaymentStatus, paidAt *time.Time) (bool, error)

	SetStockAllocated(ctx context.Context, id uint, allocated bool) error

	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	SearchByPhone(ctx context.Context, phone string) ([]Order, error)
	SearchByCustomerName(ctx context.Context, name string) ([]Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, order_id, user_id, total_amount,
	ship_full_name, ship_street, ship_phone, ship_note,
	order_status, payment_method,
	payment_transaction_id, payment_status, payment_date,
	tracking_number, stock_allocated, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var (
		o      Order
		txnID  sql.NullString
		paidAt sql.NullTime
		track  sql.NullString
		note   sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.Total,
		&o.Address.FullName, &o.Address.Street, &o.Address.PhoneNumber, &note,
		&o.Status, &o.Method,
		&txnID, &o.Payment.PaymentStatus, &paidAt,
		&track, &o.StockAllocated, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Address.Note = note.String
	o.Payment.TransactionID = txnID.String
	if paidAt.Valid {
		o.Payment.PaymentDate = &paidAt.Time
	}
	o.Tracking = track.String
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_id, user_id, total_amount,
			ship_full_name, ship_street, ship_phone, ship_note,
			order_status, payment_method, payment_status, stock_allocated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
		RETURNING id, created_at, updated_at`,
		o.OrderID, o.UserID, o.Total,
		o.Address.FullName, o.Address.Street, o.Address.PhoneNumber, o.Address.Note,
		o.Status, o.Method, o.Payment.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity, image)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			o.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.Image,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		item.OrderID = o.ID
	}

	return tx.Commit()
}

func (r *repository) fetchItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uint]*Order, len(orders))
	ids := make([]interface{}, 0, len(orders))
	placeholders := ""
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
		ids = append(ids, orders[i].ID)
		if i > 0 {
			placeholders += ","
		}
		placeholders += placeholder(i + 1)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, image
		FROM order_items
		WHERE order_id IN (`+placeholders+`)
		ORDER BY id`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		var image sql.NullString
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name,
			&it.Price, &it.Quantity, &image); err != nil {
			return err
		}
		it.Image = image.String
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Order, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	list := []Order{*o}
	if err := r.fetchItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET order_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id uint, status PaymentStatus, paidAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2, payment_date = $3, updated_at = NOW()
		WHERE id = $1`, id, status, paidAt)
	return err
}

func (r *repository) UpdatePaymentIfPending(ctx context.Context, orderID, transactionID string, status PaymentStatus, paidAt *time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_transaction_id = $2,
		    payment_status = $3,
		    payment_date = $4,
		    updated_at = NOW()
		WHERE order_id = $1 AND payment_status = $5`,
		orderID, transactionID, status, paidAt, PaymentPending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if n == 0 {
		logger.FromCtx(ctx).Info("payment update skipped, status no longer pending",
			zap.String("order_id", orderID),
			zap.String("new_status", string(status)),
		)
	}
	return n == 1, nil
}

func (r *repository) SetStockAllocated(ctx context.Context, id uint, allocated bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET stock_allocated = $2, updated_at = NOW() WHERE id = $1`,
		id, allocated)
	return err
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.fetchItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *repository) SearchByPhone(ctx context.Context, phone string) ([]Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE ship_phone = $1 ORDER BY created_at DESC`,
		phone)
}

func (r *repository) SearchByCustomerName(ctx context.Context, name string) ([]Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE ship_full_name ILIKE '%' || $1 || '%' ORDER BY created_at DESC`,
		name)
}
