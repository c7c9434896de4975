package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/domain"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

const claimsKey = "auth_claims"

const (
	msgUnauthorized = "unauthorized access"
	msgForbidden    = "forbidden access"
)

// UserFinder is the only store capability the gate needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Check is one stage of the gate. A nil result lets the request continue.
type Check func(c *fiber.Ctx) error

// Gate validates bearer tokens and enforces role requirements per route.
type Gate struct {
	tokens *TokenManager
	users  UserFinder
}

// NewGate constructs a gate.
func NewGate(tokens *TokenManager, users UserFinder) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Require runs checks in order and stops at the first failure.
func (g *Gate) Require(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, check := range checks {
			if err := check(c); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

// Authenticated requires a valid, unexpired bearer token and stores its claims.
func (g *Gate) Authenticated() Check {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.NewUnauthorized(msgUnauthorized)
		}

		_, token, found := strings.Cut(authHeader, " ")
		if !found {
			return apperrors.NewForbidden(msgForbidden)
		}

		claims, err := g.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			return apperrors.NewForbidden(msgForbidden)
		}

		c.Locals(claimsKey, claims)
		return nil
	}
}

// ClaimsFromContext retrieves the authenticated claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// SubjectEmail returns the authenticated email or an empty string.
func SubjectEmail(c *fiber.Ctx) string {
	if claims, ok := ClaimsFromContext(c); ok {
		return claims.Email
	}
	return ""
}
