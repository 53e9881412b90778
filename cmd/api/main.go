package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-service/internal/client"
	"storefront-service/internal/config"
	"storefront-service/internal/repository"
	"storefront-service/internal/server"
	"storefront-service/internal/service"
	"storefront-service/internal/sse"
)

const promoSweepInterval = time.Hour

func newLogger(cfg *config.Log) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	loggerCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		loggerCfg = zap.NewDevelopmentConfig()
	}
	loggerCfg.Level = level

	return loggerCfg.Build()
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitDBClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	paymobClient := client.NewPaymobClient(&cfg.Paymob)

	orderRepo := repository.NewOrderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	promoRepo := repository.NewPromoCodeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	bus := sse.NewBus(logger)

	promoService := service.NewPromoService(promoRepo, logger)
	checkoutService := service.NewCheckoutService(db, catalogRepo, orderRepo, promoService, paymobClient, bus, logger)
	purchaseService := service.NewPurchaseService(catalogRepo, purchaseRepo, paymobClient, logger)
	reconcileService := service.NewReconcileService(orderRepo, purchaseRepo, paymobClient, bus, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bus.Run(ctx)

	// background sweep; reads also correct expiry lazily
	go func() {
		ticker := time.NewTicker(promoSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := promoService.ExpireOverdue(ctx); err != nil {
					logger.Error("promo sweep failed", zap.Error(err))
				}
			}
		}
	}()

	srv := server.NewServer(checkoutService, reconcileService, promoService, purchaseService, bus, cfg.Auth.JWTSecret, logger)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")
	cancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
