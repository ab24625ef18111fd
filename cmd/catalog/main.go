// Package main runs the product catalog service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/platform/bootstrap"
	"github.com/abgdnv/catalog/internal/platform/config/configloader"
	"github.com/abgdnv/catalog/internal/platform/telemetry"
	"github.com/abgdnv/catalog/internal/product/app"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, builds the catalog and serves HTTP, gRPC and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](app.ServiceName, config.Defaults())
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, app.ServiceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	st, mirror, closeStore, err := app.SetupStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := app.SetupPublisher(ctx, cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer closePublisher()

	deps := app.SetupDependencies(st, publisher, cfg, logger)
	if deps.Dispatcher != nil {
		// analyses in flight finish before the publisher and store are released
		defer deps.Dispatcher.Wait()
	}
	logger.Info("Catalog ready", "products", st.Count())

	httpServer, pprofServer, grpcServer := setupServers(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	// the mirror stops only after the HTTP server has drained, so changes made
	// by requests finishing during shutdown are still persisted
	mirrorCtx, stopMirror := context.WithCancel(context.Background())
	defer stopMirror()
	if mirror != nil {
		g.Go(func() error {
			return mirror.Run(mirrorCtx)
		})
	}

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		return shutdownHTTPServer(httpServer, cfg.Shutdown.Timeout, stopMirror)
	})

	if cfg.GRPC.Enabled {
		// Start the gRPC server
		g.Go(func() error {
			grpcAddr := ":" + cfg.GRPC.Port
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on gRPC port: %w", err)
			}
			logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
			return grpcServer.Serve(lis)
		})
		// gracefully shutdown gRPC server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down gRPC server...")
			deps.Health.Shutdown()
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				logger.Info("gRPC server stopped gracefully.")
				return nil
			case <-time.After(cfg.Shutdown.Timeout):
				logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
				grpcServer.Stop()
				return fmt.Errorf("grpc server graceful stop timed out")
			}
		})
	}

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// shutdownHTTPServer drains srv within timeout and then calls after, whether or
// not the drain completed.
func shutdownHTTPServer(srv *http.Server, timeout time.Duration, after func()) error {
	defer after()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupServers builds the HTTP, pprof and gRPC servers.
func setupServers(deps *app.Dependencies, cfg *config.Config) (*http.Server, *http.Server, *grpc.Server) {
	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}
	return httpServer, pprofServer, grpcServer
}
