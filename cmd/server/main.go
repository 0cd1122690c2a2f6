package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Radennn1/tutoring-backend/internal/config"
	"github.com/Radennn1/tutoring-backend/internal/database"
	"github.com/Radennn1/tutoring-backend/internal/identity"
	"github.com/Radennn1/tutoring-backend/internal/routes"
	"github.com/Radennn1/tutoring-backend/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracing, err := telemetry.Setup(ctx, "tutoring-api", cfg.OtelEndpoint, cfg.OtelEnabled)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	// 2. Open the store
	var svc *routes.Services
	var closeStore func()
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := database.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		svc = routes.NewSQLiteServices(cfg, db)
		closeStore = func() { _ = db.Close() }
	default:
		pool, err := database.ConnectPostgres(ctx, cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		svc = routes.NewPostgresServices(cfg, pool)
		closeStore = pool.Close
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	if err := routes.RegisterRoutes(app, cfg, svc, identity.NewJWTVerifier(cfg.JWTSecret)); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	reconcilerDone := make(chan struct{})
	go func() {
		svc.Hub.Run(workersCtx)
		close(hubDone)
	}()
	go func() {
		svc.Reconciler.Run(workersCtx)
		close(reconcilerDone)
	}()

	// 4. Start Server
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down")
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	stopWorkers()
	<-reconcilerDone
	<-hubDone
	closeStore()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
}
