package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	httpHandlers "github.com/kaificial/likes-service/internal/adapters/http/handlers"
	httpMiddleware "github.com/kaificial/likes-service/internal/adapters/http/middleware"
	"github.com/kaificial/likes-service/internal/adapters/stats"
	memorystorage "github.com/kaificial/likes-service/internal/adapters/storage/memory"
	postgresstorage "github.com/kaificial/likes-service/internal/adapters/storage/postgres"
	redisstorage "github.com/kaificial/likes-service/internal/adapters/storage/redis"
	"github.com/kaificial/likes-service/internal/config"
	"github.com/kaificial/likes-service/internal/core/ports"
	"github.com/kaificial/likes-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	storage, closeStorage, err := initStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer closeStorage()

	limiter, err := services.NewSlidingWindowLimiter(storage, cfg.RateLimiter.Rule)
	if err != nil {
		log.Fatalf("failed to create limiter: %v", err)
	}

	statsStore, closeStats, err := initStats(cfg.Stats, cfg.Storage.Redis)
	if err != nil {
		log.Fatalf("failed to init stats: %v", err)
	}
	defer closeStats()

	service, err := services.NewLikeService(storage, limiter, statsStore, services.Config{LikeTTL: cfg.Likes.TTL})
	if err != nil {
		log.Fatalf("failed to create like service: %v", err)
	}

	h := httpHandlers.NewLikesHandler(service)

	r := chi.NewRouter()
	r.Use(httpMiddleware.ClientIdentity)
	r.Get("/api/likes", h.GetLikes)
	r.Post("/api/likes", h.PostLike)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("likes service listening on :%s (storage=%s)", cfg.Server.Port, cfg.Storage.Type)
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func initStorage(cfg config.StorageConfig) (ports.Storage, func(), error) {
	switch cfg.Type {
	case "redis":
		storage, err := redisstorage.New(redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				log.Printf("failed to close redis storage: %v", err)
			}
		}, nil
	case "postgres":
		storage, err := postgresstorage.New(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := storage.EnsureSchema(schemaCtx); err != nil {
			_ = storage.Close()
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				log.Printf("failed to close postgres storage: %v", err)
			}
		}, nil
	case "memory":
		return memorystorage.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// initStats monta o registro de analytics quando habilitado. Usa um cliente
// Redis próprio, separado do storage, como best-effort.
func initStats(cfg config.StatsConfig, redisCfg config.RedisConfig) (ports.StatsStore, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisCfg.Host, redisCfg.Port),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis stats ping failed: %w", err)
	}

	store := stats.NewRedisStatsStore(client, stats.WithPrefix(cfg.Prefix), stats.WithTTL(cfg.TTL))
	return store, func() {
		if err := client.Close(); err != nil {
			log.Printf("failed to close stats client: %v", err)
		}
	}, nil
}
