package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tramitesplus/cuadre-api/internal/config"
	"github.com/tramitesplus/cuadre-api/internal/database"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/handlers"
	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/tramitesplus/cuadre-api/internal/middleware"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/utils"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.Debug().Msg(".env file not found, using system environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info().Msg("connected to database")

	queries := db.New(pool)

	// Initialize services
	broadcaster := services.NewBroadcaster(32, log)

	ledger := services.NewLedger(queries, broadcaster, cfg.AutosaveDelay, log)
	cuadre := services.NewCuadreService(ledger, queries, broadcaster, log)
	boletas := services.NewBoletaService(queries, broadcaster, log)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info().Msg("lookup cache enabled")
	}
	lookups := services.NewLookupService(queries, services.NewRedisCache(redisClient), cfg.LookupCacheTTL, broadcaster, log)

	var (
		reportStore services.ReportStore
		archive     handlers.StatementArchive
	)
	if cfg.StorageEnabled() {
		storage, err := services.NewStorageService(ctx, cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			return err
		}
		reportStore, archive = storage, storage
		log.Info().Str("bucket", cfg.S3Bucket).Msg("report storage enabled")
	}
	reports := services.NewReportPublisher(reportStore, log)

	parser := services.NewStatementParser(log)
	uploads := services.NewUploadValidator(services.DefaultMaxUploadBytes)

	// Initialize handlers
	transactionHandler := handlers.NewTransactionHandler(ledger)
	cuadreHandler := handlers.NewCuadreHandler(cuadre, parser, uploads, archive)
	lookupHandler := handlers.NewLookupHandler(lookups)
	boletaHandler := handlers.NewBoletaHandler(boletas)
	broadcastHandler := handlers.NewBroadcastHandler(broadcaster)
	soatHandler := handlers.NewSoatHandler()
	exportHandler := handlers.NewExportHandler(ledger, cuadre, reports)

	app := fiber.New(fiber.Config{
		AppName:      "cuadre-api",
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    services.DefaultMaxUploadBytes + 1<<20,
	})

	// Apply global middleware
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoint (public)
	app.Get("/health", func(c fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cuadre-api",
			"clients": broadcaster.Count(),
		})
	})

	api := app.Group("/api")
	if cfg.AuthEnabled {
		api.Use(middleware.ClerkAuth(cfg.ClerkSecretKey))
	}

	// Transaction routes
	api.Get("/transactions", transactionHandler.GetTransactions)
	api.Post("/transactions", transactionHandler.CreateTransaction)
	api.Put("/transactions", transactionHandler.SaveTransactions)
	api.Delete("/transactions", transactionHandler.DeleteTransactions)
	api.Get("/transactions/summary", transactionHandler.GetSummary)
	api.Get("/transactions/edits", transactionHandler.GetEdits)
	api.Post("/transactions/edits", transactionHandler.ApplyEdits)
	api.Post("/transactions/edits/flush", transactionHandler.FlushEdits)
	api.Post("/transactions/recalculate", transactionHandler.Recalculate)
	api.Get("/transactions/export", exportHandler.DownloadLedger)
	api.Post("/transactions/export", exportHandler.PublishLedger)
	api.Get("/transactions/:id", transactionHandler.GetTransaction)

	// Cuadre routes
	api.Get("/cuadre", cuadreHandler.GetCuadre)
	api.Post("/cuadre", cuadreHandler.UpsertCuadre)
	api.Put("/cuadre", cuadreHandler.UpsertCuadres)
	api.Delete("/cuadre", cuadreHandler.DeleteCuadre)
	api.Post("/cuadre/import", cuadreHandler.ImportStatement)
	api.Get("/cuadre/export", exportHandler.DownloadCuadre)
	api.Post("/cuadre/export", exportHandler.PublishCuadre)

	// Boleta payments
	api.Get("/boleta-payments", boletaHandler.GetBoletaPayments)
	api.Post("/boleta-payments", boletaHandler.CreateBoletaPayment)
	api.Delete("/boleta-payments/:id", boletaHandler.DeleteBoletaPayment)

	// SOAT table
	api.Get("/soat/tipos", soatHandler.GetTipos)
	api.Get("/soat/precio", soatHandler.GetPrecio)

	// Live updates
	api.Get("/broadcast", broadcastHandler.Stream)
	api.Post("/broadcast", broadcastHandler.Publish)

	lookupHandler.RegisterRoutes(api)

	if cfg.RecalcInterval > 0 {
		go ledger.RunRecalculation(ctx, cfg.RecalcInterval)
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("cuadre API listening")
		listenErr <- app.Listen(fmt.Sprintf(":%d", cfg.Port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Streams only end once their subscriptions close.
	broadcaster.Close()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := ledger.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush pending edits")
	}
	return nil
}
