package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexiq/storefront-api/internal/api/http/handlers"
	"github.com/nexiq/storefront-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UsersHandler
	Catalog     *handlers.CatalogHandler
	Orders      *handlers.OrdersHandler
	Payments    *handlers.PaymentsHandler
	Gate        *auth.Gate
	Metrics     fiber.Handler
	Idempotency fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	member := cfg.Gate.Member()
	admin := cfg.Gate.AdminOnly()

	app.Get("/", cfg.Health.Banner)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Get("/product", cfg.Catalog.ListProducts)
	app.Get("/product/:id", cfg.Catalog.GetProduct)
	app.Post("/product", admin, cfg.Catalog.AddProduct)
	app.Delete("/product/:id", admin, cfg.Catalog.DeleteProduct)

	app.Get("/review", cfg.Catalog.ListReviews)
	app.Post("/review", member, cfg.Catalog.AddReview)

	app.Get("/user", admin, cfg.Users.List)
	app.Get("/user/admin/:email", member, cfg.Users.AdminStatus)
	app.Put("/user/admin/:email", admin, cfg.Users.Promote)
	app.Get("/user/:email", member, cfg.Users.Get)
	app.Put("/user/:email", cfg.Users.SignIn)
	app.Delete("/user/:id", admin, cfg.Users.Delete)

	app.Get("/order", member, cfg.Orders.Mine)
	app.Post("/order", member, cfg.Orders.Place)
	app.Get("/orders", admin, cfg.Orders.All)
	app.Get("/order/:id", member, cfg.Orders.Get)
	app.Patch("/order/:id", member, cfg.Orders.Pay)
	app.Delete("/order/:id", admin, cfg.Orders.Delete)

	app.Get("/payment", member, cfg.Orders.Payments)

	intent := []fiber.Handler{member}
	if cfg.Idempotency != nil {
		intent = append(intent, cfg.Idempotency)
	}
	intent = append(intent, cfg.Payments.CreateIntent)
	app.Post("/create-payment-intent", intent...)
}
