package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/gartstein/jobboard/internal/jobboard/config"
	"github.com/gartstein/jobboard/internal/jobboard/controller"
	"github.com/gartstein/jobboard/internal/jobboard/db"
	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/gartstein/jobboard/internal/jobboard/handlers"
	"github.com/gartstein/jobboard/internal/jobboard/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// eventProducer is what main needs from either Kafka producer variant.
type eventProducer interface {
	controller.EventProducer
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger := initLogger(cfg.LogLevel)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := db.Connect(ctx, initDatabase(cfg), cfg.DBConnectTimeout, logger.Named("db"))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	producer := initProducer(cfg, logger)
	defer producer.Close()

	m := metrics.New()
	jobSvc := controller.NewJobService(repo, producer, m, logger)

	// Create handlers
	jobHandler := handlers.NewJobHandler(jobSvc, logger)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, logger)

	// Create server
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterRoutes(jobHandler, authenticator, m, repo); err != nil {
		logger.Fatal("Failed to register routes", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}

// initLogger builds a production logger at the configured level, falling
// back to info for an unknown level.
func initLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// initDatabase maps the service config onto the database config.
func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

func initProducer(cfg *config.Config, logger *zap.Logger) eventProducer {
	if !cfg.KafkaEnabled() {
		logger.Info("no Kafka brokers configured, events are discarded")
		return events.NopProducer{}
	}

	producer, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	return producer
}
