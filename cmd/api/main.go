package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	database "newsletter/internal/adapter/database/postgres"
	api "newsletter/internal/adapter/http"
	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"
	"newsletter/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	settings, err := config.Load("")

	if err != nil {
		log.Fatal("Failed to read configuration:", err)
	}

	appLogger, err := logger.New(logger.OptionsFromSettings(settings.Telemetry.ServiceName, settings.Log))

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer appLogger.Sync()

	appLogger.ReplaceGlobals()

	if settings.Application.Environment == config.EnvironmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	tel, err := telemetry.NewContainer(ctx, telemetry.ConfigFromSettings(settings), appLogger)

	if err != nil {
		appLogger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	if settings.Application.MigrateOnStart {
		if err := database.RunMigrations(settings.Database, appLogger); err != nil {
			appLogger.Fatal("Failed to migrate the database", zap.Error(err))
		}
	}

	db, err := database.NewDB(ctx, settings.Database)

	if err != nil {
		appLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	listener, err := net.Listen("tcp", settings.Application.Address())

	if err != nil {
		appLogger.Fatal("Failed to bind address", zap.String("addr", settings.Application.Address()), zap.Error(err))
	}

	server, err := api.NewServer(listener, db, appLogger,
		api.WithServiceName(settings.Telemetry.ServiceName),
		api.WithMetrics(tel.AppMetrics),
		api.WithTimeouts(settings.Application.ReadTimeout, settings.Application.WriteTimeout),
		api.WithRequestTimeout(settings.Application.RequestTimeout),
	)

	if err != nil {
		appLogger.Fatal("Failed to build server", zap.Error(err))
	}

	serverErr := make(chan error, 1)

	go func() {
		serverErr <- server.Run()
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		appLogger.Info("Shutting down gracefully...")
	case err := <-serverErr:
		if err != nil {
			appLogger.Error("Server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Telemetry shutdown failed", zap.Error(err))
	}

	db.Close()
}
