package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cafe-checkout/cafe-svc/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		business_id TEXT NOT NULL,
		subtotal NUMERIC NOT NULL,
		tax NUMERIC NOT NULL,
		total NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		payment_type TEXT NOT NULL DEFAULT '',
		payment_chain_id INTEGER NOT NULL DEFAULT 0,
		payment_currency TEXT NOT NULL DEFAULT '',
		payment_amount NUMERIC NOT NULL DEFAULT 0,
		payment_address TEXT NOT NULL DEFAULT '',
		uri TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		tx_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS orders_business_created_idx ON orders (business_id, created_at DESC);
	CREATE TABLE IF NOT EXISTS order_items (
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		PRIMARY KEY (order_id, item_id)
	);
`

const orderColumns = `id, business_id, subtotal, tax, total, currency,
	payment_type, payment_chain_id, payment_currency, payment_amount, payment_address,
	uri, status, tx_hash, created_at`

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// CreateOrder stores the order and its lines in one transaction and fills in
// CreatedAt.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var payment domain.PaymentRequest
	if order.Payment != nil {
		payment = *order.Payment
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, business_id, subtotal, tax, total, currency,
			payment_type, payment_chain_id, payment_currency, payment_amount, payment_address,
			uri, status, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`, order.ID, order.BusinessID, order.Checkout.Subtotal, order.Checkout.Tax, order.Checkout.Total,
		order.Checkout.Currency, order.PaymentMethod.Type, order.PaymentMethod.ChainID,
		payment.Currency, payment.Amount, payment.Address, order.URI, string(order.Status), order.TxHash).
		Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, name, description, price, image, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, order.ID, item.ID, item.Name, item.Description, item.Price, item.Image, item.Quantity); err != nil {
			return fmt.Errorf("insert order item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) ListOrders(ctx context.Context, businessID string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE business_id = $1
		ORDER BY created_at DESC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	index := map[string]int{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	itemRows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, item_id, name, description, price, image, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, item_id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ID, &item.Name, &item.Description, &item.Price, &item.Image, &item.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT item_id, name, description, price, image, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY item_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Image, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return &order, rows.Err()
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, txHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, tx_hash = $2
		WHERE id = $3
	`, string(status), txHash, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order   domain.Order
		status  string
		payment domain.PaymentRequest
	)
	err := row.Scan(&order.ID, &order.BusinessID,
		&order.Checkout.Subtotal, &order.Checkout.Tax, &order.Checkout.Total, &order.Checkout.Currency,
		&order.PaymentMethod.Type, &order.PaymentMethod.ChainID,
		&payment.Currency, &payment.Amount, &payment.Address,
		&order.URI, &status, &order.TxHash, &order.CreatedAt)
	if err != nil {
		return order, err
	}
	order.Status = domain.OrderStatus(status)
	order.PaymentMethod.Currency = payment.Currency
	if payment.Currency != "" {
		payment.ChainID = order.PaymentMethod.ChainID
		order.Payment = &payment
	}
	return order, nil
}
