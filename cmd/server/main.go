package main

import (
	"strings"

	"trazzio-backend/internal/assignment"
	"trazzio-backend/internal/audit"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/balance"
	"trazzio-backend/internal/company"
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/dashboard"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/inventory"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/reports"
	"trazzio-backend/internal/settlement"
	"trazzio-backend/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("Error inesperado")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Auth público
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protegido
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin y trabajador comparten varias rutas; el guard de rol va por ruta y
	// la autorización fina (rendir solo lo propio) va dentro del servicio.
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Empresas
	protected.Get("/companies", adminOnly, company.ListCompaniesHandler())
	protected.Post("/companies", adminOnly, company.CreateCompanyHandler())
	protected.Put("/companies/:id", adminOnly, company.UpdateCompanyHandler())
	protected.Delete("/companies/:id", adminOnly, company.DeleteCompanyHandler())

	// Productos
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Post("/products", adminOnly, inventory.CreateProductHandler())
	protected.Put("/products/:id", adminOnly, inventory.UpdateProductHandler())
	protected.Delete("/products/:id", adminOnly, inventory.DeleteProductHandler())

	// Ingresos de stock
	protected.Post("/stock-entries", adminOnly, inventory.CreateStockEntryHandler())
	protected.Get("/stock-entries", adminOnly, inventory.ListStockEntriesHandler())

	// Trabajadores
	protected.Get("/workers", adminOnly, worker.ListWorkersHandler())
	protected.Post("/workers", adminOnly, worker.CreateWorkerHandler())
	protected.Put("/workers/:id", adminOnly, worker.UpdateWorkerHandler())
	protected.Delete("/workers/:id", adminOnly, worker.DeleteWorkerHandler())

	// Asignaciones
	protected.Post("/assignments", adminOnly, assignment.CreateHandler())
	protected.Get("/assignments", assignment.ListTodayHandler(cfg))
	protected.Get("/assignments/pending", assignment.ListPendingHandler(cfg))
	protected.Delete("/assignments/:id", adminOnly, assignment.DeleteHandler())

	// Rendiciones
	protected.Post("/settlements", settlement.SettleHandler())
	protected.Get("/settlements", adminOnly, settlement.ListHandler(cfg))
	protected.Patch("/settlements/:id", adminOnly, settlement.AdjustHandler())

	// Pagos y saldos
	protected.Get("/payments", balance.GetBalancesHandler())
	protected.Post("/payments", adminOnly, balance.CreatePaymentHandler())

	// Reportes y dashboard
	protected.Get("/reports", adminOnly, reports.ReportHandler(cfg))
	protected.Get("/reports/merma", adminOnly, reports.MermaReportHandler(cfg))
	protected.Get("/dashboard", adminOnly, dashboard.DashboardHandler(cfg))

	// Auditoría
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler())

	logrus.Infof("Servidor escuchando en el puerto %s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.WithError(err).Fatal("El servidor se detuvo")
	}
}
