package FiberConfig

import (
	"time"

	"Flotilla/AI"
	"Flotilla/Controllers"
	"Flotilla/Models"
	"Flotilla/Notifications"
	"Flotilla/config"
	"Flotilla/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

// New builds the fiber application with every route and middleware wired.
func New(db *gorm.DB, cfg config.Config, notifier *Notifications.Notifier) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Flotilla",
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Receipt photos
	app.Static("/uploads", cfg.Uploads.Dir, fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	SetupRoutes(app, db, cfg, notifier)
	return app
}

// SetupRoutes registers the API surface. Admin-only groups use
// Verify(RoleAdmin); the rest just require a valid session.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg config.Config, notifier *Notifications.Notifier) {
	auth := middleware.NewAuth(db, cfg.JWT.Secret)
	aiClient := AI.NewClient(cfg.AI.BaseURL)

	authHandler := Controllers.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	driverHandler := Controllers.NewDriverHandler(db)
	vehicleHandler := Controllers.NewVehicleHandler(db)
	tripHandler := Controllers.NewTripHandler(db)
	expenseHandler := Controllers.NewExpenseHandler(db, cfg.Uploads.Dir)
	notificationHandler := Controllers.NewNotificationHandler(db, notifier)
	dashboardHandler := Controllers.NewDashboardHandler(db, aiClient)
	reportHandler := Controllers.NewReportHandler(db)

	api := app.Group("/api")

	// Session
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)
	api.Get("/usuario", auth.Verify(""), authHandler.Me)

	// Drivers
	drivers := api.Group("/conductores", auth.Verify(Models.RoleAdmin))
	drivers.Post("/", driverHandler.Create)
	drivers.Get("/", driverHandler.List)

	// Vehicles
	vehicles := api.Group("/vehiculos", auth.Verify(""))
	vehicles.Get("/", vehicleHandler.List)
	vehicles.Post("/", auth.Verify(Models.RoleAdmin), vehicleHandler.Create)
	vehicles.Get("/:vehiculoId", vehicleHandler.Get)
	vehicles.Patch("/:vehiculoId/asignar-conductor", auth.Verify(Models.RoleAdmin), vehicleHandler.AssignDriver)
	vehicles.Patch("/:vehiculoId/estado", auth.Verify(Models.RoleAdmin), vehicleHandler.UpdateState)

	api.Get("/documentos", auth.Verify(Models.RoleAdmin), vehicleHandler.Documents)

	// Trips
	trips := api.Group("/viajes", auth.Verify(""))
	trips.Post("/", tripHandler.Start)
	trips.Patch("/", tripHandler.Finish)
	trips.Get("/", tripHandler.List)
	trips.Get("/activo", tripHandler.Active)
	trips.Get("/:viajeId", tripHandler.Get)
	trips.Post("/:viajeId/finalizar", tripHandler.QuickFinish)
	trips.Get("/:viajeId/gastos", expenseHandler.ListByTrip)
	trips.Post("/:viajeId/prediccion", auth.Verify(Models.RoleAdmin), dashboardHandler.Predict)

	// Expenses
	expenses := api.Group("/gastos", auth.Verify(""))
	expenses.Post("/", expenseHandler.Create)
	expenses.Post("/comprobante", expenseHandler.UploadReceipt)

	// Notifications
	notifications := api.Group("/notificaciones", auth.Verify(""))
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:notificacionId/leido", notificationHandler.MarkRead)
	notifications.Post("/", auth.Verify(Models.RoleAdmin), notificationHandler.Create)
	notifications.Post("/verificar-documentos", auth.Verify(Models.RoleAdmin), notificationHandler.CheckDocuments)

	api.Post("/fcm/token", auth.Verify(""), notificationHandler.RegisterFCMToken)

	// Dashboard
	dashboard := api.Group("/dashboard", auth.Verify(Models.RoleAdmin))
	dashboard.Get("/metricas", dashboardHandler.Metrics)
	dashboard.Get("/costos", dashboardHandler.Costs)
	dashboard.Get("/eficiencia", dashboardHandler.Efficiency)
	dashboard.Get("/anomalias", dashboardHandler.Anomalies)

	api.Post("/ia/simular", auth.Verify(Models.RoleAdmin), dashboardHandler.Simulate)
	api.Get("/reportes/viajes", auth.Verify(Models.RoleAdmin), reportHandler.TripsReport)
}
