package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/api/dto"
	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
)

// UserService is what the user routes need from the account layer.
type UserService interface {
	SignIn(ctx context.Context, email string, profile domain.Document) (*domain.UpsertResult, *domain.Identity, error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	PromoteToAdmin(ctx context.Context, actor, email string) (*domain.UpdateResult, error)
	DeleteUser(ctx context.Context, actor, id string) (*domain.DeleteResult, error)
	IsAdmin(ctx context.Context, subject, email string) (bool, error)
}

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// SignIn handles PUT /user/:email.
func (h *UsersHandler) SignIn(c *fiber.Ctx) error {
	profile, err := parseDocument(c)
	if err != nil {
		return err
	}
	result, identity, err := h.users.SignIn(c.UserContext(), pathParam(c, "email"), profile)
	if err != nil {
		return err
	}
	return c.JSON(dto.SignInResponse{Result: result, Token: identity.Token})
}

// Get handles GET /user/:email.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), pathParam(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// List handles GET /user.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Promote handles PUT /user/admin/:email.
func (h *UsersHandler) Promote(c *fiber.Ctx) error {
	result, err := h.users.PromoteToAdmin(c.UserContext(), auth.SubjectEmail(c), pathParam(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// AdminStatus handles GET /user/admin/:email.
func (h *UsersHandler) AdminStatus(c *fiber.Ctx) error {
	admin, err := h.users.IsAdmin(c.UserContext(), auth.SubjectEmail(c), pathParam(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(dto.AdminStatusResponse{Admin: admin})
}

// Delete handles DELETE /user/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	result, err := h.users.DeleteUser(c.UserContext(), auth.SubjectEmail(c), pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
