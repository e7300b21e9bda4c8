package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodzz/internal/cart"
	"foodzz/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context, status string) ([]Order, error)
	GetByID(ctx context.Context, id int) (*Order, error)
	UpdateStatus(ctx context.Context, id int, from, to Status) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, customer_name, customer_email, phone, delivery_address, payment_method,
	subtotal, tax, delivery_fee, total, status, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Email,
		&o.Phone,
		&o.Address,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.Tax,
		&o.DeliveryFee,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
	)
	return o, err
}

// Create inserts the order and its lines in one transaction and fills in
// the generated id and timestamp.
func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}
	defer tx.Rollback()

	// 1️⃣ Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_name, customer_email, phone, delivery_address, payment_method,
			subtotal, tax, delivery_fee, total, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at
	`,
		o.Name,
		o.Email,
		o.Phone,
		o.Address,
		o.PaymentMethod,
		o.Subtotal,
		o.Tax,
		o.DeliveryFee,
		o.Total,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	// 2️⃣ Insert order items
	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, food_id, name, price, quantity, image)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			o.ID,
			item.ItemID,
			item.Name,
			item.Price,
			item.Quantity,
			item.Image,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.Int("food_id", item.ItemID), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
		}
	}

	// 3️⃣ Commit
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, status string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if status != "" && status != StatusAll {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return r.queryOrders(ctx, query, args...)
}

func (r *repository) GetByID(ctx context.Context, id int) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []int{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = make([]cart.Line, 0)
	}
	return &o, nil
}

// UpdateStatus moves an order from one status to the next. The update is
// conditional on the current status so a concurrent change is detected
// rather than overwritten.
func (r *repository) UpdateStatus(ctx context.Context, id int, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedUpdateStatus, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedUpdateStatus, err)
	}
	if affected > 0 {
		return nil
	}

	var current Status
	err = r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedUpdateStatus, err)
	}
	return fmt.Errorf("%w: order is %s", ErrStaleStatus, current)
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	st := Stats{OrdersByStatus: make(map[Status]int)}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders`,
	).Scan(&st.TotalOrders, &st.TotalRevenue)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrFailedGetStats, err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrFailedGetStats, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("%w: %w", ErrFailedGetStats, err)
		}
		st.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrFailedGetStats, err)
	}

	recent, err := r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`,
		RecentOrdersLimit,
	)
	if err != nil {
		return Stats{}, err
	}
	st.RecentOrders = recent
	st.TotalRevenue = st.TotalRevenue.Round(2)
	return st, nil
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedListOrders, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedListOrders, err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedListOrders, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = make([]cart.Line, 0)
		}
	}
	return orders, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []int) (map[int][]cart.Line, error) {
	ids64 := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids64 = append(ids64, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, food_id, name, price, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(ids64))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedListOrders, err)
	}
	defer rows.Close()

	out := make(map[int][]cart.Line)
	for rows.Next() {
		var (
			orderID int
			line    cart.Line
			image   sql.NullString
		)
		if err := rows.Scan(&orderID, &line.ItemID, &line.Name, &line.Price, &line.Quantity, &image); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFailedListOrders, err)
		}
		line.Image = image.String
		out[orderID] = append(out[orderID], line)
	}
	return out, rows.Err()
}
