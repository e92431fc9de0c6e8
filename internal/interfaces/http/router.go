package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/setsco-serial-api/internal/application/custody"
	"github.com/jhoicas/setsco-serial-api/internal/application/ledger"
	"github.com/jhoicas/setsco-serial-api/internal/application/production"
	"github.com/jhoicas/setsco-serial-api/internal/application/returns"
	"github.com/jhoicas/setsco-serial-api/internal/application/safetystock"
	"github.com/jhoicas/setsco-serial-api/internal/application/serial"
	"github.com/jhoicas/setsco-serial-api/internal/application/shipment"
	"github.com/jhoicas/setsco-serial-api/internal/application/usecase"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	Registry    *serial.Registry
	Ledger      *ledger.Ledger
	Custody     *custody.Service
	Production  *production.Service
	Shipments   *shipment.Service
	Returns     *returns.Service
	Monitor     *safetystock.Monitor
	CategoryUC  *usecase.CategoryUseCase
	SettingsUC  *usecase.DistributionSettingsUseCase
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil desactiva /metrics
	JWTSecret   string
	JWTIssuer   string
	SwaggerFile string // vacío o inexistente desactiva /docs
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
	}

	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			// Swagger UI en local: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "SETSCO Serial API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleProduccion)
	adminOnly := RequireRole(jwt.RoleAdmin)
	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	producer := RequireRole(jwt.RoleAdmin, jwt.RoleProduccion)

	// Categorías
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", adminOnly, categoryHandler.Create)
	categories.Get("/", anyRole, categoryHandler.List)
	categories.Get("/:id", anyRole, categoryHandler.GetByID)
	categories.Put("/:id", adminOnly, categoryHandler.Update)
	categories.Get("/:id/available", anyRole, categoryHandler.Available)

	// Seriales
	serials := api.Group("/serials")
	serialHandler := NewSerialHandler(deps.Registry, deps.Ledger)
	serials.Post("/", warehouse, serialHandler.Create)
	serials.Get("/", anyRole, serialHandler.List)
	serials.Post("/range", warehouse, serialHandler.CreateRange)
	serials.Post("/purchased", warehouse, serialHandler.MarkPurchased)
	serials.Post("/void", producer, serialHandler.Void)
	serials.Post("/scrap", warehouse, serialHandler.Scrap)
	serials.Get("/:id", anyRole, serialHandler.GetByID)
	serials.Get("/:id/history", anyRole, serialHandler.History)
	serials.Post("/:id/transition", warehouse, serialHandler.Transition)
	serials.Post("/:id/link", warehouse, serialHandler.Link)
	serials.Post("/:id/archive", adminOnly, serialHandler.Archive)

	// Custodia entre empresas
	custodyGroup := api.Group("/custody", warehouse)
	custodyHandler := NewCustodyHandler(deps.Custody)
	custodyGroup.Post("/assign", custodyHandler.Assign)
	custodyGroup.Post("/receive", custodyHandler.Receive)
	custodyGroup.Post("/reverse", custodyHandler.Reverse)

	// Producción
	prod := api.Group("/production", producer)
	productionHandler := NewProductionHandler(deps.Production)
	prod.Post("/confirmed", productionHandler.Confirmed)
	prod.Post("/completed", productionHandler.Completed)
	prod.Post("/split", productionHandler.Split)
	prod.Post("/:id/assign", productionHandler.Assign)

	// Envíos y devoluciones
	shipmentHandler := NewShipmentHandler(deps.Shipments, deps.Returns, deps.Ledger)
	shipments := api.Group("/shipments", warehouse)
	shipments.Post("/validated", shipmentHandler.Validated)
	shipments.Post("/:picking_id/backfill", shipmentHandler.Backfill)
	api.Post("/returns", warehouse, shipmentHandler.Return)

	// Stock de seguridad
	safetyHandler := NewSafetyStockHandler(deps.Monitor)
	api.Post("/safety-stock/scan", adminOnly, safetyHandler.Scan)

	// Certificados CoC
	settings := api.Group("/distribution-settings")
	settingsHandler := NewDistributionSettingsHandler(deps.SettingsUC)
	settings.Post("/", adminOnly, settingsHandler.Create)
	settings.Get("/active", anyRole, settingsHandler.GetActive)
}
