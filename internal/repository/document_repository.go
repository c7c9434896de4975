package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexiq/storefront-api/internal/domain"
)

// Collection names a table of schemaless documents.
type Collection string

const (
	CollectionProducts Collection = "products"
	CollectionReviews  Collection = "reviews"
)

// DocumentRepository stores JSON documents that this layer does not interpret.
type DocumentRepository interface {
	List(ctx context.Context) ([]domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	Insert(ctx context.Context, doc domain.Document) (string, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type documentRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewDocumentRepository returns a Postgres-backed collection. Only the
// declared collections are accepted because the name is part of the SQL.
func NewDocumentRepository(pool *pgxpool.Pool, collection Collection) (DocumentRepository, error) {
	switch collection {
	case CollectionProducts, CollectionReviews:
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return &documentRepository{pool: pool, table: string(collection)}, nil
}

func (r *documentRepository) List(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`SELECT id, data FROM %s ORDER BY created_at`, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) Get(ctx context.Context, id string) (domain.Document, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`SELECT id, data FROM %s WHERE id=$1`, r.table)
	return scanDocument(r.pool.QueryRow(ctx, query, id))
}

func (r *documentRepository) Insert(ctx context.Context, doc domain.Document) (string, error) {
	raw, err := marshalDocument(doc.Without(domain.DocumentIDKey))
	if err != nil {
		return "", err
	}

	id := newID()
	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2)`, r.table)
	if _, err := r.pool.Exec(ctx, query, id, raw); err != nil {
		return "", err
	}
	return id, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, r.table)
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil, err
	}
	doc[domain.DocumentIDKey] = id
	return doc, nil
}
