package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex/internal/application/dto"
)

// HealthChecker estado del ledger para /health.
type HealthChecker interface {
	Head(ctx context.Context) (int64, error)
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inventory *InventoryHandler
	Products  *ProductHandler
	Warehouse *WarehouseHandler
	Events    *EventsHandler
	Health    HealthChecker
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		out := dto.HealthResponse{Status: "ok"}
		if deps.Health != nil {
			head, err := deps.Health.Head(c.UserContext())
			if err != nil {
				out.Status = "degraded"
				return c.Status(fiber.StatusServiceUnavailable).JSON(out)
			}
			out.LastMovementID = head
		}
		return c.JSON(out)
	})

	api := app.Group("/api")

	api.Get("/warehouses", deps.Warehouse.List)
	api.Get("/warehouses/:id", deps.Warehouse.Get)

	products := api.Group("/products")
	products.Post("/", deps.Products.Create)
	products.Get("/:id", deps.Products.GetByID)
	products.Post("/:id/variants", deps.Products.AddVariant)

	variants := api.Group("/variants")
	variants.Patch("/:id", deps.Products.UpdateVariant)
	variants.Delete("/:id", deps.Products.DeleteVariant)

	inv := api.Group("/inventory")
	inv.Post("/movements", deps.Inventory.RegisterMovement)
	inv.Get("/snapshot", deps.Inventory.Snapshot)
	inv.Get("/valuation", deps.Inventory.Valuation)
	inv.Get("/replenishment-list", deps.Inventory.GetReplenishmentList)
	inv.Get("/variants/:id", deps.Inventory.GetVariant)
	inv.Get("/variants/:id/kardex", deps.Inventory.Kardex)
	inv.Get("/variants/:id/kardex.pdf", deps.Inventory.KardexPDF)
	if deps.Events != nil {
		inv.Get("/events", deps.Events.Stream)
	}

	inv.Post("/rebuild", deps.Inventory.Rebuild)
}
