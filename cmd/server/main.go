package main

import (
	"log/slog"
	"os"

	"github.com/XquisitoAI/xquisito-backend/internal/auth"
	"github.com/XquisitoAI/xquisito-backend/internal/config"
	"github.com/XquisitoAI/xquisito-backend/internal/events"
	"github.com/XquisitoAI/xquisito-backend/internal/gateway"
	"github.com/XquisitoAI/xquisito-backend/internal/server"
	"github.com/XquisitoAI/xquisito-backend/internal/service"
	"github.com/XquisitoAI/xquisito-backend/internal/storage/sqlite"
	"github.com/XquisitoAI/xquisito-backend/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	// Payment gateway: the real provider when configured, otherwise the
	// in-memory fake that confirms everything (local development only).
	var gw gateway.Gateway
	if cfg.GatewayURL != "" {
		gw = gateway.NewHTTP(cfg.GatewayURL, cfg.GatewayAPIKey)
		slog.Info("payment gateway configured", "url", cfg.GatewayURL)
	} else {
		gw = gateway.NewFake()
		slog.Warn("no payment gateway configured, using the in-memory fake")
	}

	// Event publishing is optional; without a broker it is a no-op.
	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQ(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			slog.Warn("failed to connect to RabbitMQ, events disabled", "error", err)
		} else {
			publisher = rabbit
			defer rabbit.Close()
			slog.Info("event publishing enabled", "exchange", cfg.EventsExchange)
		}
	}

	tables := service.NewTableService(store, gw, publisher, cfg.Currency)
	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionDuration)
	router := server.New(tables, tokens).Router()

	addr := ":" + cfg.Port
	slog.Info("server starting", "address", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
