package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloudsync/core/config"
	"cloudsync/core/loader"
	"cloudsync/core/logger"
	"cloudsync/core/middleware/auth"
	"cloudsync/core/middleware/rayid"
	"cloudsync/core/scheduler"
	cloudSync "cloudsync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "cloudsync/docs/swagger"
)

// @title Cloud Sync API
// @version 1.0
// @description Schedules multi-cloud resource sync jobs and previews field-map translations.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync scheduler and HTTP server",
	Long:  `Schedules a sync job per resource type and cloud, then serves the job and mapping API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 3. Wire database, field map, clouds and sync jobs
		sched := scheduler.New(logg, cfg.Sync.RunOnStart)
		svc, err := bootstrap(ctx, cfg, logg, prometheus.DefaultRegisterer, sched)
		if err != nil {
			logg.Fatal("Failed to initialize services", zap.Error(err))
		}
		if err := svc.service.RegisterJobs(); err != nil {
			logg.Fatal("Failed to register sync jobs", zap.Error(err))
		}
		sched.Start(ctx)

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(cloudSync.NewFeature(svc.service))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Probes (Public)
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "clouds": svc.registry.Names()})
		})
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		// 3.5 Swagger Documentation (Public)
		mountDocs(app)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/health", "/metrics"}}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not set, the API is unauthenticated")
		}

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()), zap.Strings("features", mgr.Names()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		sched.Stop()
	},
}

// mountDocs serves the generated API documentation under /swagger.
func mountDocs(app fiber.Router) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}

func init() {
	RootCmd.AddCommand(startCmd)
}
