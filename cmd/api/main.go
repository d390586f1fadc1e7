package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/campusconnect/campus-api/internal/config"
	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/settlement"
	"github.com/campusconnect/campus-api/internal/domain/trade"
	"github.com/campusconnect/campus-api/internal/domain/wallet"
	"github.com/campusconnect/campus-api/internal/middleware"
	"github.com/campusconnect/campus-api/internal/pkg/database"
	"github.com/campusconnect/campus-api/internal/pkg/jwt"
	"github.com/campusconnect/campus-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Campus Connect API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	walletRepo := wallet.NewRepository(db)
	orderRepo := order.NewRepository(db)
	tradeRepo := trade.NewRepository(db)
	settlementRepo := settlement.NewRepository(db, walletRepo, orderRepo, tradeRepo)

	// ---------- Services ----------
	walletService := wallet.NewService(walletRepo)
	engine := settlement.NewEngine(settlementRepo)
	runner := settlement.NewRunner(orderRepo, tradeRepo, engine)
	notifier := settlement.NewNotifier(rdb)

	// ---------- Handlers ----------
	walletHandler := wallet.NewHandler(walletService, notifier)
	settlementHandler := settlement.NewHandler(runner, engine, orderRepo, tradeRepo)

	authMw := middleware.Auth(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Mount("/wallets", walletHandler.Routes(authMw, middleware.RequireAdmin))
		r.Mount("/settlements", settlementHandler.Routes(authMw, middleware.RequireAdmin))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Campus Connect API stopped")
}
