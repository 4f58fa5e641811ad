package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tickettoken/mint-gateway/internal/api/handler"
	"github.com/tickettoken/mint-gateway/internal/api/router"
	"github.com/tickettoken/mint-gateway/internal/config"
	"github.com/tickettoken/mint-gateway/internal/metrics"
	"github.com/tickettoken/mint-gateway/internal/mint"
	"github.com/tickettoken/mint-gateway/shared/logger"
	"github.com/tickettoken/mint-gateway/shared/postgresql"
	"github.com/tickettoken/mint-gateway/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("GATEWAY_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/gateway/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
	})

	appLogger.Info("Starting mint gateway",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client (health probe only)
	dbClient, err := postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// The RabbitMQ client connects lazily on the first publish.
	rabbitClient := rabbitmq.NewClient(&rabbitmq.Config{
		URL:       cfg.RabbitMQ.URL,
		Heartbeat: cfg.RabbitMQ.Heartbeat,
	}, appLogger)

	gatewayMetrics := metrics.New()

	tracker := mint.NewTracker(&mint.TrackerConfig{
		Logger:          appLogger,
		CompletionDelay: cfg.Mint.CompletionDelay,
		OnFinish: func(job mint.Job) {
			switch job.Status {
			case mint.StatusCompleted:
				gatewayMetrics.JobsCompleted.Inc()
			case mint.StatusFailed:
				gatewayMetrics.JobsFailed.Inc()
			}
		},
	})

	estimator := mint.NewEstimator(&mint.EstimatorConfig{
		FeePerTicket:    cfg.Mint.FeePerTicket,
		FeePerTicketUSD: cfg.Mint.FeePerTicketUSD,
		Network:         cfg.Mint.Network,
		Congestion:      cfg.Mint.Congestion,
	})

	// Set Gin mode based on environment
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := router.SetupRouter(&handler.Dependencies{
		Logger:    appLogger,
		DBClient:  dbClient,
		Publisher: rabbitClient,
		Tracker:   tracker,
		Estimator: estimator,
		Metrics:   gatewayMetrics,
		MintQueue: cfg.RabbitMQ.MintQueue,
	}, &router.Options{
		RateLimiter: router.NewRateLimiter(
			cfg.RateLimit.RPS,
			cfg.RateLimit.Burst,
			cfg.RateLimit.IdleTTL,
		),
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Mint gateway is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)

	if err := rabbitClient.Close(); err != nil {
		appLogger.Error("Failed to close RabbitMQ client",
			slog.Any("error", err),
		)
	}
	if err := dbClient.Close(); err != nil {
		appLogger.Error("Failed to close database client",
			slog.Any("error", err),
		)
	}

	if shutdownErr != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", shutdownErr),
		)
		return shutdownErr
	}

	appLogger.Info("Server shutdown complete")
	return nil
}
