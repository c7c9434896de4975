package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/nexiq/storefront-api/internal/domain"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// parseDocument decodes the body as a JSON object. An empty body is an empty document.
func parseDocument(c *fiber.Ctx) (domain.Document, error) {
	doc := domain.Document{}
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return doc, nil
	}
	if err := c.App().Config().JSONDecoder(body, &doc); err != nil {
		return nil, apperrors.NewValidationError("body must be a JSON object", nil)
	}
	return doc, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// pathParam returns an owned copy of the unescaped route parameter. Params
// alias the request buffer, and the value may outlive the handler in a
// queued event.
func pathParam(c *fiber.Ctx, name string) string {
	raw := utils.CopyString(c.Params(name))
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
