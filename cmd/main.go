package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"storefront-catalog-service/internal/api"
	"storefront-catalog-service/internal/catalog"
	"storefront-catalog-service/internal/config"
	"storefront-catalog-service/internal/logging"
	"storefront-catalog-service/internal/notify"
	"storefront-catalog-service/internal/session"
	"storefront-catalog-service/internal/store"
)

const (
	defaultAppName = "StorefrontCatalogService" // App name for logger
	sessionSweep   = time.Minute
)

// itemStore is the store as main sees it: queried by the API, closed on shutdown.
type itemStore interface {
	store.ItemStorer
	Close() error
}

// nopCloser adapts stores without resources to itemStore.
type nopCloser struct {
	store.ItemStorer
}

func (nopCloser) Close() error { return nil }

func main() {
	if err := godotenv.Load(); err != nil {
		// The application can still proceed if environment variables are set in other ways.
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel, defaultAppName)
	if err != nil {
		log.Fatalf("FATAL: Error building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger.Info("configuration loaded",
		zap.String("app_env", cfg.AppEnv),
		zap.String("log_level", cfg.LogLevel),
		zap.String("item_source", cfg.ItemSource),
		zap.String("catalog_variant", cfg.Catalog.Variant),
	)

	// --- Item Source ---
	items, err := openItemStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open item source", zap.Error(err))
	}

	// --- Catalog Engine & Loader ---
	engine := catalog.NewEngine(cfg.Catalog.EngineOptions())
	metrics := api.NewMetrics()
	health := api.NewHealthReporter(logger)
	loader := catalog.NewLoader(items, engine, logger,
		catalog.WithRetries(cfg.Loader.Retries, cfg.Loader.RetryDelay),
		catalog.WithObserver(metrics.ObserveLoad),
		catalog.WithObserver(health.ObserveLoad),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The servers start while the first load runs; queries answer 503 until it lands.
	go func() {
		if _, err := loader.Reload(ctx); err != nil {
			logger.Error("initial catalog load failed; POST /api/v1/catalog/reload to retry", zap.Error(err))
		}
	}()

	// --- Sessions ---
	sessions := session.NewManager(engine, notify.NewLogNotifier(logger), logger, cfg.SessionTTL)
	go sessions.Run(ctx, sessionSweep)

	// --- Setup & Start HTTP Server ---
	httpAPIHandler := api.NewHTTPHandler(loader, items, sessions, metrics, logger)
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	httpRouter.Handle("/metrics", metrics.Handler())
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := api.NewGRPCServer(health)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal("gRPC server Serve error", zap.Error(err))
		}
		logger.Info("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, cancel, httpServer, grpcServer, health, items, shutdownComplete)

	<-shutdownComplete // Block until graceful shutdown is complete
	logger.Info("service shutdown sequence finished")
}

func openItemStore(cfg *config.Config, logger *zap.Logger) (itemStore, error) {
	if cfg.ItemSource != config.SourcePostgres {
		logger.Info("reading items from file", zap.String("path", cfg.ItemFile))
		return nopCloser{store.NewFileStore(cfg.ItemFile, logger)}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database connection established", zap.String("host", cfg.Postgres.Host), zap.String("db", cfg.Postgres.DBName))
	return store.NewPostgresStore(db, logger), nil
}

func setupBaseMiddleware(router *chi.Mux, logger *zap.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger) // Chi's request logger
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second)) // Default timeout for requests
	logger.Debug("base HTTP middleware registered")
}

func waitForShutdown(
	logger *zap.Logger,
	stopBackground context.CancelFunc,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	health *api.HealthReporter,
	items itemStore,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete) // Ensure channel is closed when function exits

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))

	// Stops the session janitor and any in-flight catalog load.
	stopBackground()
	health.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done(): // If context times out before gRPC stops
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}

	if err := items.Close(); err != nil {
		logger.Warn("error closing item source", zap.Error(err))
	}

	logger.Info("graceful shutdown sequence completed")
}
