package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/fleetops-maintenance-service/config"
	"github.com/fekuna/fleetops-maintenance-service/internal/middleware"
	"github.com/fekuna/fleetops-maintenance-service/pkg/broker"
	"github.com/fekuna/fleetops-maintenance-service/pkg/cache"
	"github.com/fekuna/fleetops-maintenance-service/pkg/logger"
	"github.com/fekuna/fleetops-maintenance-service/pkg/postgres"

	billingH "github.com/fekuna/fleetops-maintenance-service/internal/billing/handler"
	billingRepoPkg "github.com/fekuna/fleetops-maintenance-service/internal/billing/repository"
	billingUCPkg "github.com/fekuna/fleetops-maintenance-service/internal/billing/usecase"

	invH "github.com/fekuna/fleetops-maintenance-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/fleetops-maintenance-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/fleetops-maintenance-service/internal/inventory/usecase"

	maintH "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/handler"
	maintListenerPkg "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/listener"
	maintRepoPkg "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/repository"
	maintUCPkg "github.com/fekuna/fleetops-maintenance-service/internal/maintenance/usecase"

	woH "github.com/fekuna/fleetops-maintenance-service/internal/workorder/handler"
	woRepoPkg "github.com/fekuna/fleetops-maintenance-service/internal/workorder/repository"
	woUCPkg "github.com/fekuna/fleetops-maintenance-service/internal/workorder/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.New(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	txManager := postgres.NewTxManager(db)

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize Repositories
	maintRepo := maintRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	woRepo := woRepoPkg.NewPGRepository(db)
	billingRepo := billingRepoPkg.NewPGRepository(db)

	// 7. Initialize UseCases
	maintUC := maintUCPkg.NewMaintenanceUseCase(maintRepo, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	woUC := woUCPkg.NewWorkOrderUseCase(woRepo, invUC, maintUC, txManager, appLogger)
	billingUC := billingUCPkg.NewBillingUseCase(billingRepo, woUC, maintUC, invUC, txManager, appLogger)

	// 7.5 Initialize Listeners
	odometerListener := maintListenerPkg.NewOdometerListener(kafkaConsumer, maintUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go odometerListener.Start(ctx)

	// 8. Initialize Handlers
	mux := http.NewServeMux()
	maintH.NewMaintenanceHandler(maintUC, appLogger).Register(mux)
	invH.NewInventoryHandler(invUC, appLogger).Register(mux)
	woH.NewWorkOrderHandler(woUC, appLogger).Register(mux)
	billingH.NewBillingHandler(billingUC, appLogger).Register(mux)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.SecretKey, appLogger)

	// 9. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:         port,
		Handler:      authMW.Authenticate(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
