package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// Admin requires the authenticated subject to hold the admin role at request time.
// The role is looked up on every call; it is never read from the token.
func (g *Gate) Admin() Check {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(msgUnauthorized)
		}

		user, err := g.users.FindByEmail(c.UserContext(), claims.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden(msgForbidden)
			}
			return apperrors.NewUpstreamError(err)
		}
		if !user.IsAdmin() {
			return apperrors.NewForbidden(msgForbidden)
		}
		return nil
	}
}

// Member is a gate for any authenticated caller.
func (g *Gate) Member() fiber.Handler {
	return g.Require(g.Authenticated())
}

// AdminOnly is a gate for authenticated callers holding the admin role.
func (g *Gate) AdminOnly() fiber.Handler {
	return g.Require(g.Authenticated(), g.Admin())
}
