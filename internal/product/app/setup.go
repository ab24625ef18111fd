// Package app wires the catalog service together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/platform/bootstrap"
	"github.com/abgdnv/catalog/internal/platform/messaging"
	"github.com/abgdnv/catalog/internal/platform/server"
	"github.com/abgdnv/catalog/internal/product/analysis"
	"github.com/abgdnv/catalog/internal/product/metrics"
	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/abgdnv/catalog/internal/product/seed"
	"github.com/abgdnv/catalog/internal/product/service"
	"github.com/abgdnv/catalog/internal/product/store"
	"github.com/abgdnv/catalog/internal/product/transport/rest"
	"github.com/abgdnv/catalog/internal/product/vision"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName names the service in config prefixes, traces and health checks.
const ServiceName = "catalog"

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	// Dispatcher is nil when analysis is disabled.
	Dispatcher *analysis.Dispatcher
	Extractor  *vision.Extractor
	Health     *health.Server
	Logger     *slog.Logger
}

// SetupDependencies builds the service graph around st.
func SetupDependencies(st store.ProductStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	st.Subscribe(func(products []model.Product) {
		metrics.CatalogSize.Set(float64(len(products)))
	})

	deps := &Dependencies{
		Store:  st,
		Health: health.NewServer(),
		Logger: logger,
	}

	var dispatcher service.AnalysisDispatcher
	if cfg.Analysis.Enabled {
		client := analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Resilience, newHTTPClient(0), logger)
		deps.Dispatcher = analysis.NewDispatcher(client, cfg.Analysis.Timeout, logger)
		dispatcher = deps.Dispatcher
	}
	deps.ProductService = service.NewService(st, dispatcher, publisher, logger)
	deps.Extractor = vision.NewExtractor(vision.Config{
		URL:    cfg.LLM.URL,
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	}, newHTTPClient(cfg.LLM.Timeout), logger)
	return deps
}

// newHTTPClient creates a traced HTTP client. Callers bound requests with
// contexts; timeout is an outer limit, zero for none.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// SetupStore creates the product store. With the database enabled it applies
// migrations, loads the stored catalog and returns a mirror that must be run
// to persist later changes; otherwise the mirror is nil.
func SetupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, *store.Mirror, func(), error) {
	if !cfg.Database.Enabled {
		var initial []model.Product
		if cfg.Catalog.Seed {
			initial = seed.Products()
		}
		return store.NewInMemoryStore(initial), nil, func() {}, nil
	}

	if err := store.Migrate(cfg.Database.URL); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")

	mirror := store.NewMirror(dbPool, cfg.Database.Timeout, logger)
	initial, err := mirror.Load(ctx)
	if err != nil {
		dbPool.Close()
		return nil, nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(initial) == 0 && cfg.Catalog.Seed {
		logger.Info("Stored catalog is empty, seeding demo products")
		initial = seed.Products()
	}
	st := store.NewInMemoryStore(initial)
	st.Subscribe(mirror.Listen)
	return st, mirror, dbPool.Close, nil
}

// SetupHttpHandler initializes the routes and middleware of the catalog.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	return newHttpHandler(deps, cfg, nil)
}

// newHttpHandler builds the router; closing done ends open event streams.
func newHttpHandler(deps *Dependencies, cfg *config.Config, done <-chan struct{}) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cfg, done)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config, done <-chan struct{}) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Extractor, rest.Options{
		MaxUploadBytes:  cfg.HTTPServer.MaxUploadBytes,
		StreamDebounce:  cfg.Catalog.Debounce,
		StreamKeepAlive: cfg.Catalog.KeepAlive,
		Done:            done,
	}, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}
}

// SetupHttpServer creates and configures the HTTP server of the catalog.
// Shutdown ends open event streams, which would otherwise hold it until its deadline.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	streamsDone := make(chan struct{})
	mux := newHttpHandler(deps, cfg, streamsDone)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	srv := server.NewHTTPServer(httpCfg, ServiceName, mux)
	srv.RegisterOnShutdown(sync.OnceFunc(func() { close(streamsDone) }))
	return srv
}

// SetupGrpcServer creates the gRPC server exposing the health service, serving
// for both the whole server and the catalog service name.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	deps.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	deps.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health))
}
