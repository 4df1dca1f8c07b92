package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pointplay-backend/internal/config"
	"pointplay-backend/internal/handlers"
	"pointplay-backend/internal/logger"
	"pointplay-backend/internal/services"
	"pointplay-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	level := logger.DEBUG
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		level = logger.INFO
	}
	logger.Setup(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, limiter, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer kv.Close()

	hub := handlers.NewWebSocketHub()
	go hub.Run()
	defer hub.Stop()

	sessions := services.NewSessionManager(kv, hub)
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sessions.CleanupIdle(cfg.SessionIdleTimeout)
			case <-ctx.Done():
				return
			}
		}
	}()

	router := handlers.NewRouter(handlers.RouterDeps{
		Sessions:      sessions,
		JWT:           jwtService,
		Hub:           hub,
		Limiter:       limiter,
		PlayRateLimit: cfg.PlayRateLimit,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown: %v", err)
		}
	}()

	logger.Info("Server starting on port %s with %s store", cfg.Port, cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server: %v", err)
	}
	logger.Info("Server stopped")
}

// openStore picks the durable store. Redis also backs rate limiting; the
// other backends fall back to an in-process limiter.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, store.RateLimiter, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, store.NewMemoryStore(), nil

	default:
		s := store.NewMemoryStore()
		return s, s, nil
	}
}
