package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexiq/storefront-api/internal/domain"
)

// PaymentRepository reads settled payments. Writes happen through OrderRepository.MarkPaid.
type PaymentRepository interface {
	ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a Postgres-backed implementation.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error) {
	const query = `
        SELECT id, order_id, email, transaction_id, amount::float8, created_at
        FROM payments WHERE email=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Email, &p.TransactionID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
