package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/recommendation-console/internal/api/http"
	"github.com/spec-kit/recommendation-console/internal/api/http/handlers"
	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/config"
	"github.com/spec-kit/recommendation-console/internal/events"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/persistence"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
	"github.com/spec-kit/recommendation-console/internal/worker"
)

func main() {
	envFile := pflag.String("env-file", "", "path to a .env file (default: ./.env if present)")
	pflag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open token storage", zap.Error(err))
	}
	defer storage.Close() //nolint:errcheck

	store, err := session.NewStore(ctx, storage)
	if err != nil {
		logger.Fatal("failed to read stored session", zap.Error(err))
	}
	sess := session.New(store, events.NewInMemoryDispatcher(), logger)

	metrics := observability.NewMetrics()
	board := service.NewRecommendationBoard()
	stopWatcher := worker.StartSessionWatcher(sess, board, metrics, logger)
	defer stopWatcher()

	client := &http.Client{Timeout: cfg.Backend.Timeout()}
	authService := service.NewAuthService(cfg.Backend.LoginURL, client, cfg.Backend.Timeout(), logger)
	catalog := service.NewCatalogService(cfg.Backend.GraphQLURL, client, cfg.Backend.Timeout(), sess, logger)

	engine, err := views.New()
	if err != nil {
		logger.Fatal("failed to parse views", zap.Error(err))
	}
	app := httptransport.NewApp(cfg.App.Name, engine)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	gate := httptransport.NewConsoleGate()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Session:    sess,
		Gate:       gate,
		Metrics:    metrics,
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Driver, storage, metrics),
		Login:      handlers.NewLoginHandler(authService, metrics, logger, httptransport.RootPath, httptransport.LoginPath),
		Home:       handlers.NewHomeHandler(gate, catalog, board, logger),
		SessionAPI: handlers.NewSessionHandler(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("console listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("console stopped with error", zap.Error(err))
	}
}
