// @title Job board API
// @version 1.0
// @description Users, companies, jobs and applications.
// @BasePath /
// @securityDefinitions.apikey token
// @in header
// @name token
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/logger"
	"jobboard-backend/internal/server"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	slog.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exiting")
	done <- true
}

func main() {
	cfg := config.Load()
	log := logger.New("jobboard-api", cfg.LogLevel)
	slog.SetDefault(log)

	db, err := database.GetMainDB(cfg.Database)
	if err != nil {
		log.Error("database failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.SeedAdmin(cfg.Admin, cfg.HashCost); err != nil {
		log.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := server.NewMyServer(ctx, cfg, db, log)
	if err != nil {
		log.Error("server failed to initialize", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	apiServer := s.NewServer()
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, done)

	log.Info("listening", "addr", apiServer.Addr)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server error", "error", err)
		os.Exit(1)
	}

	<-done
}
