package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/api"
	"github.com/trogers1052/networth-tracker/internal/config"
	"github.com/trogers1052/networth-tracker/internal/currency"
	"github.com/trogers1052/networth-tracker/internal/database"
	"github.com/trogers1052/networth-tracker/internal/feed"
	"github.com/trogers1052/networth-tracker/internal/holdings"
	"github.com/trogers1052/networth-tracker/internal/kafka"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/networth"
	"github.com/trogers1052/networth-tracker/internal/quotes"
	"github.com/trogers1052/networth-tracker/internal/refresh"
	"github.com/trogers1052/networth-tracker/internal/report"
	"github.com/trogers1052/networth-tracker/internal/snapshot"
	"github.com/trogers1052/networth-tracker/internal/valuation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// 2. Quote gateway, with the Redis cache when configured
	var cache quotes.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := quotes.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
		log.WithField("addr", cfg.Redis.Addr).Info("Quote cache enabled")
	}
	gateway := quotes.NewGateway(cfg.Upstream, cfg.Valuation.CryptoQuoteCurrency, cache, cfg.Redis.QuoteTTL, log.WithField("component", "quotes"))

	// 3. Valuation pipeline
	valuer := valuation.NewValuer(gateway, cfg.Valuation.CryptoQuoteCurrency, cfg.Valuation.Concurrency, log.WithField("component", "valuation"))
	aggregator := networth.NewAggregator(currency.NewNormalizer(gateway), cfg.Valuation.ReportingCurrency,
		cfg.Valuation.Palette, cfg.Valuation.Concurrency, log.WithField("component", "networth"))

	// 4. Change feed. With Kafka every write goes through the topic and each instance
	// relays it to its own hub; without it the hub is told directly.
	hub := feed.NewHub()
	var notifier holdings.Notifier = hub
	var publisher snapshot.Publisher

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		notifier = producer
		publisher = producer

		groupID := cfg.Kafka.GroupID + "-" + uuid.NewString()[:8]
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, hub, log.WithField("component", "kafka"))
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("Kafka consumer stopped")
			}
		}()
		log.WithFields(logrus.Fields{
			"brokers":  cfg.Kafka.Brokers,
			"topic":    cfg.Kafka.Topic,
			"group_id": groupID,
		}).Info("Kafka events enabled")
	}

	holdingService := holdings.NewService(db, gateway, notifier, log.WithField("component", "holdings"))
	builder := report.NewBuilder(holdingService, valuer, aggregator, log.WithField("component", "report"))
	recorder := snapshot.NewRecorder(db, publisher, cfg.Valuation.SnapshotLocation, log.WithField("component", "snapshot"))

	manager := refresh.NewManager(ctx, builder, hub, cfg.Valuation.RefreshInterval, log.WithField("component", "refresh"))
	defer manager.Close()

	// 5. HTTP server
	handler := api.NewHandler(gateway, holdingService, builder, recorder, manager, log.WithField("component", "api"))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
		os.Exit(1)
	}
	log.Info("HTTP server stopped")
}
