package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/campusconnect/campus-api/internal/config"
	"github.com/campusconnect/campus-api/internal/domain/order"
	"github.com/campusconnect/campus-api/internal/domain/settlement"
	"github.com/campusconnect/campus-api/internal/domain/trade"
	"github.com/campusconnect/campus-api/internal/domain/wallet"
	"github.com/campusconnect/campus-api/internal/pkg/database"
	"github.com/campusconnect/campus-api/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Dur("interval", cfg.SettlementInterval).
		Msg("Starting settlement-worker")

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

	walletRepo := wallet.NewRepository(db)
	orderRepo := order.NewRepository(db)
	tradeRepo := trade.NewRepository(db)
	settlementRepo := settlement.NewRepository(db, walletRepo, orderRepo, tradeRepo)

	engine := settlement.NewEngine(settlementRepo)
	runner := settlement.NewRunner(orderRepo, tradeRepo, engine)

	worker := settlement.NewWorker(runner, rdb, cfg.SettlementInterval)
	worker.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	worker.Stop()
	log.Info().Msg("settlement-worker stopped")
}
