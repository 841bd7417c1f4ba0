package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/mailer"
	"jobboard-backend/internal/storage"
)

// MyServer holds the dependencies shared by every route handler
type MyServer struct {
	Config    config.Config
	DB        *database.DBinstanceStruct
	Tokens    *auth.TokenCodec
	Blacklist auth.JwtBlacklistStore
	Storage   storage.StorageClient
	Mailer    mailer.Mailer

	closers []func() error
}

// NewMyServer wires the token denylist, resume storage and mailer. Redis and
// Google Cloud Storage are used when configured, otherwise in-process
// and local disk fallbacks.
func NewMyServer(ctx context.Context, cfg config.Config, db *database.DBinstanceStruct, logger *slog.Logger) (*MyServer, error) {
	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET must be set")
	}

	s := &MyServer{
		Config: cfg,
		DB:     db,
		Tokens: auth.NewTokenCodec(cfg.Token),
		Mailer: mailer.New(cfg.SMTP, logger),
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.Blacklist = auth.NewRedisBlacklistStore(client)
		s.closers = append(s.closers, client.Close)
		logger.Info("token denylist backed by redis", "addr", cfg.Redis.Addr)
	} else {
		s.Blacklist = auth.NewInMemoryBlacklistStore(ctx, time.Minute)
	}

	if cfg.GCSBucket != "" {
		gcs, err := storage.NewCloudStorageClient(ctx, cfg.GCSBucket)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Storage = gcs
		s.closers = append(s.closers, gcs.Close)
		logger.Info("resumes stored in cloud storage", "bucket", cfg.GCSBucket)
	} else {
		local, err := storage.NewLocalStorage(cfg.UploadDir)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Storage = local
	}

	return s, nil
}

// NewServer construct new http.Server serving the route table
func (s *MyServer) NewServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Close releases the redis and storage clients.
func (s *MyServer) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			slog.Error("failed to close client", "error", err)
		}
	}
	s.closers = nil
}
