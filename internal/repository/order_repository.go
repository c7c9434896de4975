package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexiq/storefront-api/internal/domain"
)

// OrderRepository persists orders and the payments that settle them.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	MarkPaid(ctx context.Context, payment *domain.Payment) (*domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, email, paid, transaction_id, details, created_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (id, email, paid, details)
        VALUES ($1, $2, FALSE, $3)
        RETURNING created_at`

	raw, err := marshalDocument(order.Details)
	if err != nil {
		return err
	}
	order.ID = newID()
	order.Paid = false
	order.TransactionID = nil
	return r.pool.QueryRow(ctx, query, order.ID, order.Email, raw).Scan(&order.CreatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE email=$1 ORDER BY created_at`
	return r.list(ctx, query, email)
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at`
	return r.list(ctx, query)
}

// MarkPaid records the payment and flags its order as paid in one transaction.
// An order already paid under the same transaction id is matched but not
// modified, and no second payment is recorded.
func (r *orderRepository) MarkPaid(ctx context.Context, payment *domain.Payment) (*domain.UpdateResult, error) {
	if !validID(payment.OrderID) {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}

	result := &domain.UpdateResult{Acknowledged: true}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			paid          bool
			transactionID *string
		)
		err := tx.QueryRow(ctx,
			`SELECT paid, transaction_id FROM orders WHERE id = $1 FOR UPDATE`,
			payment.OrderID,
		).Scan(&paid, &transactionID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		result.MatchedCount = 1
		if paid && transactionID != nil && *transactionID == payment.TransactionID {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE orders SET paid = TRUE, transaction_id = $1 WHERE id = $2`,
			payment.TransactionID, payment.OrderID); err != nil {
			return err
		}

		payment.ID = newID()
		if err := tx.QueryRow(ctx, `
            INSERT INTO payments (id, order_id, email, transaction_id, amount)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING created_at`,
			payment.ID, payment.OrderID, payment.Email, payment.TransactionID, payment.Amount,
		).Scan(&payment.CreatedAt); err != nil {
			return err
		}
		result.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order   domain.Order
		details []byte
	)
	if err := row.Scan(
		&order.ID,
		&order.Email,
		&order.Paid,
		&order.TransactionID,
		&details,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}
	doc, err := unmarshalDocument(details)
	if err != nil {
		return nil, err
	}
	order.Details = doc
	return &order, nil
}
