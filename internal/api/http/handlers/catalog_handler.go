package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
)

// CatalogService is what the product and review routes need.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Document, error)
	GetProduct(ctx context.Context, id string) (domain.Document, error)
	AddProduct(ctx context.Context, doc domain.Document) (*domain.InsertResult, error)
	DeleteProduct(ctx context.Context, id string) (*domain.DeleteResult, error)
	ListReviews(ctx context.Context) ([]domain.Document, error)
	AddReview(ctx context.Context, author string, doc domain.Document) (*domain.InsertResult, error)
}

// CatalogHandler serves products and reviews.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts GET /product.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	docs, err := h.catalog.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// GetProduct GET /product/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	doc, err := h.catalog.GetProduct(c.UserContext(), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// AddProduct POST /product.
func (h *CatalogHandler) AddProduct(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.AddProduct(c.UserContext(), doc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DeleteProduct DELETE /product/:id.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	result, err := h.catalog.DeleteProduct(c.UserContext(), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// ListReviews GET /review.
func (h *CatalogHandler) ListReviews(c *fiber.Ctx) error {
	docs, err := h.catalog.ListReviews(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// AddReview POST /review.
func (h *CatalogHandler) AddReview(c *fiber.Ctx) error {
	doc, err := parseDocument(c)
	if err != nil {
		return err
	}
	result, err := h.catalog.AddReview(c.UserContext(), auth.SubjectEmail(c), doc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
