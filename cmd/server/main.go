package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civictrack/backend/internal/config"
	"github.com/civictrack/backend/internal/database"
	"github.com/civictrack/backend/internal/handlers"
	"github.com/civictrack/backend/internal/middleware"
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/repository"
	"github.com/civictrack/backend/internal/services"
	"github.com/civictrack/backend/internal/storage"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.Seed(db); err != nil {
		log.Printf("Warning: Failed to seed database: %v", err)
	}

	redisClient, err := database.ConnectRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer database.CloseRedis(redisClient)

	minioStorage, err := storage.NewMinIOStorage(&cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpireHour)
	sessionStore := database.NewSessionStore(redisClient)
	nameCache := database.NewNameCache(redisClient, time.Duration(cfg.MasterData.CacheTTLMinutes)*time.Minute)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	wardRepo := repository.NewWardRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)

	// Initialize services
	slaEngine := workflow.NewSLAEngine(
		cfg.SLA.CriticalHours,
		cfg.SLA.HighHours,
		cfg.SLA.MediumHours,
		cfg.SLA.LowHours,
		cfg.SLA.WarningHours,
	)
	userService := services.NewUserService(userRepo, jwtManager, sessionStore, cfg)
	evidenceService := services.NewEvidenceService(complaintRepo, minioStorage)
	complaintService := services.NewComplaintService(complaintRepo, userRepo, wardRepo, departmentRepo, slaEngine, evidenceService)
	registryClient := services.NewHTTPRegistryClient(&cfg.MasterData)
	masterDataService := services.NewMasterDataService(registryClient, nameCache)

	// Start the SLA breach sweep
	slaMonitor := services.NewSLAMonitor(complaintRepo, slaEngine, time.Duration(cfg.SLA.MonitorIntervalMinutes)*time.Minute)
	ctx := context.Background()
	slaMonitor.Start(ctx)
	defer slaMonitor.Stop()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	complaintHandler := handlers.NewComplaintHandler(complaintService, evidenceService)
	masterDataHandler := handlers.NewMasterDataHandler(wardRepo, departmentRepo, masterDataService)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	app := fiber.New(fiber.Config{
		AppName:      "CivicTrack Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health routes
	v1.Get("/health", healthHandler.Health)
	v1.Get("/ready", healthHandler.Ready)

	// Auth routes
	auth := v1.Group("/auth")
	auth.Post("/register", userHandler.Register)
	auth.Post("/login", userHandler.Login)
	auth.Post("/logout", authMiddleware.Authenticate(), userHandler.Logout)

	// User routes
	users := v1.Group("/users")
	users.Get("/me", authMiddleware.Authenticate(), userHandler.GetProfile)

	// Master data routes
	masterdata := v1.Group("/masterdata", authMiddleware.Authenticate())
	masterdata.Get("/wards", masterDataHandler.ListWards)
	masterdata.Get("/departments", masterDataHandler.ListDepartments)
	masterdata.Get("/wards/:id/name", masterDataHandler.ResolveWard)
	masterdata.Get("/departments/:id/name", masterDataHandler.ResolveDepartment)
	masterdata.Post("/refresh", authMiddleware.RequireRole(models.RoleAdmin), masterDataHandler.Refresh)

	// Complaint routes
	complaints := v1.Group("/complaints", authMiddleware.Authenticate())
	complaints.Post("/", authMiddleware.RequireRole(models.RoleCitizen, models.RoleAdmin), complaintHandler.CreateComplaint)
	complaints.Get("/", complaintHandler.ListComplaints)
	complaints.Get("/stats", complaintHandler.GetStats)
	complaints.Get("/:id", complaintHandler.GetComplaint)
	complaints.Get("/:id/history", complaintHandler.GetHistory)
	complaints.Post("/:id/actions/:action", complaintHandler.DispatchAction)
	complaints.Post("/:id/evidence", complaintHandler.UploadEvidence)
	complaints.Get("/:id/evidence", complaintHandler.ListEvidence)
	complaints.Post("/:id/feedback", authMiddleware.RequireRole(models.RoleCitizen), complaintHandler.SubmitFeedback)

	// Admin routes
	admin := v1.Group("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", userHandler.ListUsers)
	admin.Post("/users", userHandler.CreateOfficer)
	admin.Put("/users/:id/activation", userHandler.SetActivation)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
