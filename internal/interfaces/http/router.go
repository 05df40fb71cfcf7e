package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger-api/internal/application/auth"
	"github.com/jhoicas/inventario-ledger-api/internal/application/dto"
	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/pkg/idempotency"
	"github.com/jhoicas/inventario-ledger-api/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	ProductUC        *usecase.ProductUseCase
	CategoryUC       *usecase.CategoryUseCase
	SupplierUC       *usecase.SupplierUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Ledger           *inventory.LedgerUseCase
	StockReports     *inventory.StockReportUseCase
	JWTSecret        string
	Logger           *logger.Logger

	// Idempotency nil desactiva Idempotency-Key en las escrituras de inventario.
	Idempotency idempotency.Backend
	// HealthCheck opcional: verifica el almacenamiento en GET /health.
	HealthCheck func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", healthHandler(deps.HealthCheck))

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	canWrite := RequireRole(entity.RoleAdmin, entity.RoleWarehouseKeeper)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Categories
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := protected.Group("/categories")
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Post("/", canWrite, categoryHandler.Create)
	categories.Put("/:id", canWrite, categoryHandler.Update)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Suppliers
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/search", supplierHandler.Search)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Post("/", canWrite, supplierHandler.Create)
	suppliers.Put("/:id", canWrite, supplierHandler.Update)
	suppliers.Delete("/:id", adminOnly, supplierHandler.Delete)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", canWrite, productHandler.Create)
	products.Put("/:id", canWrite, productHandler.Update)
	products.Patch("/:id/stock", canWrite, productHandler.UpdateStock)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Ledger, deps.StockReports)
	invGroup := protected.Group("/inventory")
	var idem fiber.Handler
	if deps.Idempotency != nil {
		idem = idempotency.Middleware(deps.Idempotency, idempotency.KeyByUser(GetUserID), log)
	}
	write := func(h fiber.Handler) []fiber.Handler {
		if idem == nil {
			return []fiber.Handler{canWrite, h}
		}
		return []fiber.Handler{canWrite, idem, h}
	}
	invGroup.Post("/movements", write(inventoryHandler.RegisterMovement)...)
	invGroup.Post("/adjust", write(inventoryHandler.AdjustStock)...)
	invGroup.Post("/batch-entry", write(inventoryHandler.BatchEntry)...)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Get("/products/:id/movements", inventoryHandler.ProductHistory)
	invGroup.Get("/products/:id/reconcile", inventoryHandler.Reconcile)
	invGroup.Get("/alerts/low-stock", inventoryHandler.LowStockAlerts)
	invGroup.Get("/alerts/low-stock/pdf", inventoryHandler.LowStockPDF)
	invGroup.Get("/stats", inventoryHandler.Stats)
	invGroup.Get("/check-stock/:product_id", inventoryHandler.CheckStock)
}

// healthHandler godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /health [get]
func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "almacenamiento no disponible"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
