package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomiwa-ade/demicredit/internal/cache"
	"github.com/tomiwa-ade/demicredit/internal/config"
	"github.com/tomiwa-ade/demicredit/internal/handler"
	"github.com/tomiwa-ade/demicredit/internal/logging"
	"github.com/tomiwa-ade/demicredit/internal/middleware"
	"github.com/tomiwa-ade/demicredit/internal/repository"
	"github.com/tomiwa-ade/demicredit/internal/service"
	"github.com/tomiwa-ade/demicredit/internal/service/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("demicredit-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	users := repository.NewUserRepository(db)
	accounts := repository.NewAccountRepository(db)
	transactions := repository.NewTransactionRepository(db)

	guard := cache.NewTransferGuard(rdb, time.Duration(cfg.TransferGuardTTLS)*time.Second)
	limiter := cache.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, time.Duration(cfg.LoginLockoutTTLS)*time.Second)
	balances := cache.NewBalanceCache(rdb, time.Duration(cfg.BalanceCacheTTLS)*time.Second)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour
	userService := service.NewUserService(users, accounts, balances, db, cfg.JWTSecret, jwtExpiry)
	transferService := transfer.NewService(users, accounts, transactions, guard, balances, db)

	userHandler := handler.NewUserHandler(userService, limiter)
	transferHandler := handler.NewTransferHandler(transferService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authenticated := middleware.Auth(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/signup", userHandler.Signup)
	mux.HandleFunc("POST /api/v1/users/login", userHandler.Login)
	mux.Handle("GET /api/v1/users/me", authenticated(http.HandlerFunc(userHandler.Me)))
	mux.Handle("GET /api/v1/users/{username}", authenticated(http.HandlerFunc(userHandler.GetByUsername)))
	mux.Handle("POST /api/v1/transfers", authenticated(http.HandlerFunc(transferHandler.Create)))
	mux.Handle("GET /api/v1/transfers", authenticated(http.HandlerFunc(transferHandler.List)))
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
