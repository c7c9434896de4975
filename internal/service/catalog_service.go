package service

import (
	"context"

	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/repository"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// CatalogService serves products and reviews. Documents are stored as sent.
type CatalogService struct {
	products repository.DocumentRepository
	reviews  repository.DocumentRepository
}

// NewCatalogService builds the service.
func NewCatalogService(products, reviews repository.DocumentRepository) *CatalogService {
	return &CatalogService{products: products, reviews: reviews}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.StoreError("product", err)
	}
	return docs, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("product", err)
	}
	return doc, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, doc domain.Document) (*domain.InsertResult, error) {
	if len(doc) == 0 {
		return nil, apperrors.NewValidationError("product document is empty", nil)
	}
	id, err := s.products.Insert(ctx, doc)
	if err != nil {
		return nil, apperrors.StoreError("product", err)
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (*domain.DeleteResult, error) {
	n, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("product", err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (s *CatalogService) ListReviews(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.reviews.List(ctx)
	if err != nil {
		return nil, apperrors.StoreError("review", err)
	}
	return docs, nil
}

// AddReview stores a review attributed to author, overriding any email in doc.
func (s *CatalogService) AddReview(ctx context.Context, author string, doc domain.Document) (*domain.InsertResult, error) {
	if len(doc) == 0 {
		return nil, apperrors.NewValidationError("review document is empty", nil)
	}
	review := doc.Clone()
	review["email"] = author
	id, err := s.reviews.Insert(ctx, review)
	if err != nil {
		return nil, apperrors.StoreError("review", err)
	}
	return &domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}
