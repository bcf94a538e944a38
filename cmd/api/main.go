package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-stock-ledger/internal/handler"
	"go-stock-ledger/internal/middleware"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/database"
	"go-stock-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env (.env is optional; deployments inject the environment)
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Env:   os.Getenv("APP_ENV"),
		Level: os.Getenv("LOG_LEVEL"),
	})

	// 2. Setup database
	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.Supplier{}, &model.Product{}, &model.Location{},
		&model.Stock{}, &model.Transaction{},
		&model.User{}, &model.Role{}, &model.Notification{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto migration failed")
	}

	// 3. Seed default roles and admin user
	seedRolesAndAdmin(db, log)

	// 4. Setup websocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency injection (wiring layers)
	productRepo := repository.NewProductRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	stockRepo := repository.NewStockRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	ledgerRunner := repository.NewLedgerTxRunner(db)

	alertService := service.NewAlertService(userRepo, notificationRepo, wsHub, log)
	movementService := service.NewMovementService(
		ledgerRunner, stockRepo, txRepo, productRepo, locationRepo, alertService, wsHub, log)
	stockService := service.NewStockService(stockRepo, productRepo)
	catalogService := service.NewCatalogService(productRepo, supplierRepo, locationRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	userService := service.NewUserService(userRepo, roleRepo)

	movementHandler := handler.NewMovementHandler(movementService)
	stockHandler := handler.NewStockHandler(stockService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stock Ledger v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// All routes require an authenticated principal.
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Movement ledger
	protected.Post("/movements", movementHandler.RecordMovement)
	protected.Get("/movements", movementHandler.GetMovements)
	protected.Get("/movements/:id", movementHandler.GetMovement)

	// Stock surface
	protected.Get("/stocks", stockHandler.GetStocks)
	protected.Get("/stocks/breakdown", stockHandler.GetBreakdown)
	protected.Put("/stocks/:id/min-level",
		middleware.RequireRole(model.RoleAdmin, model.RoleManager), stockHandler.UpdateMinLevel)

	// Catalog (admin-gated writes)
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequireRole(model.RoleAdmin), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireRole(model.RoleAdmin), catalogHandler.UpdateProduct)

	protected.Get("/suppliers", catalogHandler.GetSuppliers)
	protected.Post("/suppliers", middleware.RequireRole(model.RoleAdmin), catalogHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequireRole(model.RoleAdmin), catalogHandler.UpdateSupplier)

	protected.Get("/locations", catalogHandler.GetLocations)
	protected.Post("/locations", middleware.RequireRole(model.RoleAdmin), catalogHandler.CreateLocation)

	// Notification inbox
	protected.Get("/notifications", notificationHandler.GetMyNotifications)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)

	// User management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequireRole(model.RoleAdmin), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequireRole(model.RoleAdmin), userHandler.UpdateUser)

	// Roles
	protected.Get("/roles", func(c *fiber.Ctx) error {
		roles, err := roleRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
		}
		return c.JSON(roles)
	})

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

// seedRolesAndAdmin creates the default roles and a bootstrap admin user if
// they don't exist yet.
func seedRolesAndAdmin(db *gorm.DB, log zerolog.Logger) {
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warn().Err(err).Msg("failed to seed roles")
	}

	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
		if err != nil {
			log.Warn().Err(err).Msg("admin role missing, skipping admin seed")
			return
		}

		admin := &model.User{
			Email:    "admin@example.com",
			FullName: "Administrator",
			RoleID:   &adminRole.ID,
			IsActive: true,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := userRepo.Create(admin); err != nil {
			log.Warn().Err(err).Msg("failed to create admin user")
		} else {
			log.Info().Str("email", admin.Email).Msg("admin user created")
		}
	}
}
