package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/menu"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/receipts"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/fjod/go_cart/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Service: "storefront", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	backendCfg := backend.DefaultConfig(cfg.BackendURL)
	backendCfg.Timeout = cfg.BackendTimeout
	client := backend.NewClient(backendCfg, log.Named("backend"))

	// Menu cache (optional)
	var menuCache cache.MenuCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unavailable, menu cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			menuCache = cache.NewRedisCache(rdb, cfg.BackendURL, cfg.MenuCacheTTL)
			log.Info("menu cache enabled", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
	}
	menuService := menu.NewService(client, menuCache, log.Named("menu"))

	serverMetrics := metrics.NewServerMetrics("gateway")
	notifiers := []order.Notifier{serverMetrics}

	// Order receipts (optional)
	var receiptRepo receipts.Repository
	if cfg.MongoURI != "" {
		db, err := receipts.ConnectMongoDB(ctx, receipts.MongoOptions{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    cfg.MongoMaxPoolSize,
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		}()

		receiptRepo = receipts.NewMongoRepository(db)
		if err := receipts.EnsureIndexes(ctx, receiptRepo); err != nil {
			log.Fatal("failed to create receipt indexes", zap.Error(err))
		}
		notifiers = append(notifiers, receipts.NewRecorder(receiptRepo))
		log.Info("order receipts enabled", zap.String("database", cfg.MongoDBName))
	}

	// Order events (optional)
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		publisher := events.NewKafkaPublisher(brokers...)
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		log.Info("order events enabled", zap.Strings("brokers", brokers), zap.String("topic", events.TopicOrdersPlaced))
	}

	submitterLog := log.Named("order")
	registry := session.NewRegistry(cfg.SessionTTL, session.CleanupInterval, func(id string) *order.Submitter {
		return order.NewSubmitter(id, client, submitterLog, notifiers...)
	})
	defer registry.Close()

	api := h.NewRouter(h.RouterDeps{
		Sessions:       registry,
		Menu:           menuService,
		Receipts:       receiptRepo,
		Metrics:        serverMetrics,
		Log:            log.Named("http"),
		RequestTimeout: cfg.RequestTimeout,
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Compress(5))
	r.Mount("/", api)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + cfg.BackendTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting",
			zap.Int("port", cfg.HTTPPort),
			zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited")
}
