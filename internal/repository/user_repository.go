package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexiq/storefront-api/internal/domain"
)

// UserRepository defines persistence access for storefront accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, email string, profile domain.Document) (*domain.UpsertResult, error)
	UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (*domain.DeleteResult, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, role, profile, created_at, updated_at`

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`

	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Upsert merges profile into the record keyed by email, creating it when absent.
// A merge that changes nothing reports matched but not modified.
func (r *userRepository) Upsert(ctx context.Context, email string, profile domain.Document) (*domain.UpsertResult, error) {
	const query = `
        INSERT INTO users (id, email, profile)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE
            SET profile = users.profile || EXCLUDED.profile, updated_at = NOW()
            WHERE users.profile IS DISTINCT FROM users.profile || EXCLUDED.profile
        RETURNING id, (xmax = 0) AS inserted`

	raw, err := marshalDocument(profile)
	if err != nil {
		return nil, err
	}

	var (
		id       string
		inserted bool
	)
	err = r.pool.QueryRow(ctx, query, newID(), email, raw).Scan(&id, &inserted)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return &domain.UpsertResult{Acknowledged: true, MatchedCount: 1}, nil
	case err != nil:
		return nil, err
	case inserted:
		return &domain.UpsertResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	default:
		return &domain.UpsertResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
}

func (r *userRepository) UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.UpdateResult, error) {
	const query = `
        UPDATE users u SET role = $1::text, updated_at = NOW()
        FROM (SELECT id, role FROM users WHERE email = $2 FOR UPDATE) prev
        WHERE u.id = prev.id
        RETURNING prev.role IS DISTINCT FROM $1::text`

	var changed bool
	err := r.pool.QueryRow(ctx, query, string(role), email).Scan(&changed)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return nil, err
	}
	result := &domain.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		result.ModifiedCount = 1
	}
	return result, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	if !validID(id) {
		return &domain.DeleteResult{Acknowledged: true}, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: cmd.RowsAffected()}, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user    domain.User
		role    *string
		profile []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&role,
		&profile,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.ParseRole(role)

	doc, err := unmarshalDocument(profile)
	if err != nil {
		return nil, err
	}
	user.Profile = doc
	return &user, nil
}
