package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "tambour/internal/log"
)

// Routes registers the whole API surface on app. Everything lives under
// /api/v1; the ledger endpoints are bearer-guarded, storefront reads
// are public, cart and checkout take an optional token.
func Routes(app *fiber.App, deps *Deps) {
	api := app.Group("/api/v1")

	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false, "message": "too many attempts, try again later",
			})
		},
	})
	api.Post("/auth/login", loginLimiter, deps.AuthHandler.Login)
	api.Get("/auth/me", RequireToken(deps.Auth), deps.AuthHandler.Me)

	// Stock ledger, POS and warehouse clients only.
	products := api.Group("/products", RequireToken(deps.Auth))
	products.Get("/:identifier", deps.ProductAPIHandler.Get)
	products.Patch("/:identifier", deps.ProductAPIHandler.Patch)
	products.Post("/:identifier/declare-sale", deps.ProductAPIHandler.DeclareSale)
	products.Post("/:identifier/release", deps.ProductAPIHandler.Release)

	// Catalog, public.
	catalog := api.Group("/catalog")
	catalog.Get("/latest", deps.CatalogHandler.Latest)
	catalog.Get("/featured", deps.CatalogHandler.Featured)
	catalog.Get("/search", deps.CatalogHandler.Search)
	catalog.Get("/categories", deps.CatalogHandler.Categories)
	catalog.Get("/skin-types", deps.CatalogHandler.SkinTypes)
	catalog.Get("/diameters", deps.CatalogHandler.Diameters)
	catalog.Get("/products/:slug", deps.CatalogHandler.Product)

	// Cart works with or without a token; anonymous visitors are keyed
	// by the session cart cookie.
	cart := api.Group("/cart", OptionalAuth(deps.Auth))
	cart.Get("/", deps.CartHandler.View)
	cart.Post("/items", deps.CartHandler.Add)
	cart.Delete("/items/:productId", deps.CartHandler.Remove)

	orders := api.Group("/orders", RequireToken(deps.Auth))
	orders.Post("/", deps.OrderHandler.Place)
	orders.Get("/", deps.OrderHandler.History)
	orders.Get("/:id", deps.OrderHandler.Get)
	orders.Post("/:id/pay", deps.OrderHandler.Pay)
	orders.Post("/:id/deliver", RequireAdmin(), deps.OrderHandler.Deliver)

	articles := api.Group("/articles")
	articles.Get("/", deps.ArticleHandler.List)
	articles.Get("/:id", deps.ArticleHandler.Get)
	articles.Post("/:id/comments", RequireToken(deps.Auth), deps.ArticleHandler.AddComment)

	admin := api.Group("/admin", RequireToken(deps.Auth), RequireAdmin())
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Patch("/products/:id/stock", deps.AdminHandler.UpdateStock)
	admin.Post("/products/:id/drum-spec", deps.AdminHandler.AttachDrumSpec)
	admin.Post("/products/:id/other-spec", deps.AdminHandler.AttachOtherSpec)
	admin.Post("/skin-types", deps.AdminHandler.CreateSkinType)
	admin.Put("/skin-types/:id", deps.AdminHandler.UpdateSkinType)
	admin.Delete("/skin-types/:id", deps.AdminHandler.DeleteSkinType)
	admin.Post("/diameters", deps.AdminHandler.CreateDiameter)
	admin.Put("/diameters/:id", deps.AdminHandler.UpdateDiameter)
	admin.Delete("/diameters/:id", deps.AdminHandler.DeleteDiameter)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Delete("/orders/:id", deps.AdminHandler.DeleteOrder)
	admin.Post("/categories", deps.AdminHandler.CreateCategory)
	admin.Post("/articles", deps.ArticleHandler.Create)
	admin.Put("/articles/:id", deps.ArticleHandler.Update)
	admin.Delete("/articles/:id", deps.ArticleHandler.Delete)
	admin.Post("/articles/:id/sections", deps.ArticleHandler.AddSection)
	admin.Put("/articles/sections/:sectionId", deps.ArticleHandler.UpdateSection)
	admin.Delete("/articles/sections/:sectionId", deps.ArticleHandler.DeleteSection)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
