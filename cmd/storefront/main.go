package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/itanishqshelar/Flashfits-AI/internal/analytics"
	"github.com/itanishqshelar/Flashfits-AI/internal/cartstore"
	"github.com/itanishqshelar/Flashfits-AI/internal/catalog"
	"github.com/itanishqshelar/Flashfits-AI/internal/clients"
	"github.com/itanishqshelar/Flashfits-AI/internal/config"
	"github.com/itanishqshelar/Flashfits-AI/internal/db"
	"github.com/itanishqshelar/Flashfits-AI/internal/events"
	httpapi "github.com/itanishqshelar/Flashfits-AI/internal/http"
	"github.com/itanishqshelar/Flashfits-AI/internal/logging"
	"github.com/itanishqshelar/Flashfits-AI/internal/mirror"
	"github.com/itanishqshelar/Flashfits-AI/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		_, _ = os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open pool", zap.Error(err))
	}
	defer pool.Close()

	var sinks mirror.Multi
	if cfg.HasSink(config.SinkHTTP) {
		api, err := clients.NewClient("cart-api", cfg.CartAPIURL, &http.Client{Timeout: cfg.UpstreamTimeout})
		if err != nil {
			logger.Fatal("create cart api client", zap.Error(err))
		}
		sinks = append(sinks, clients.NewCartAPIClient(api))
	}
	if cfg.HasSink(config.SinkAMQP) {
		conn, err := events.Dial(cfg.RabbitMQURL, 10, logger)
		if err != nil {
			logger.Fatal("dial rabbitmq", zap.Error(err))
		}
		defer conn.Close()

		publisher, err := events.NewPublisher(conn, events.NewSequenceRepository(database), events.PublisherOptions{})
		if err != nil {
			logger.Fatal("create publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("publisher close", zap.Error(err))
			}
		}()
		sinks = append(sinks, publisher)
	}
	logger.Info("mirror sinks configured", zap.Strings("sinks", cfg.MirrorSinks))

	dispatcher := mirror.NewDispatcher(sinks, cfg.MirrorTimeout, logger.Named("mirror"))
	sessions := session.NewRegistry(dispatcher, logger.Named("session"))
	go pruneSessions(ctx, sessions, cfg.SessionIdleTTL)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Sessions:         sessions,
		Catalog:          catalog.NewPostgresRepository(pool),
		SavedCarts:       cartstore.NewRepository(database),
		Analytics:        analytics.NewRepository(database),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown", zap.Error(err))
	}
	// late handlers may still add items; their mirror calls are dropped
	dispatcher.Close()
}

func pruneSessions(ctx context.Context, sessions *session.Registry, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Prune(ttl)
		}
	}
}
