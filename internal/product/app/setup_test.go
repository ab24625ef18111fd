package app

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/config"
	"github.com/abgdnv/catalog/internal/platform/config/configloader"
	"github.com/abgdnv/catalog/internal/platform/messaging"
	"github.com/abgdnv/catalog/internal/product/metrics"
	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := configloader.Load[*config.Config](ServiceName, config.Defaults())
	require.NoError(t, err)
	return cfg
}

func Test_SetupStore_InMemory(t *testing.T) {
	testCases := []struct {
		name          string
		seed          bool
		expectedCount int
	}{
		{name: "seeded", seed: true, expectedCount: 12},
		{name: "empty", seed: false, expectedCount: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := loadTestConfig(t)
			cfg.Catalog.Seed = tc.seed

			// when
			st, mirror, closeFn, err := SetupStore(context.Background(), cfg, slog.New(slog.DiscardHandler))

			// then
			require.NoError(t, err)
			defer closeFn()
			assert.Nil(t, mirror)
			assert.Equal(t, tc.expectedCount, st.Count())
		})
	}
}

func Test_SetupPublisher_None(t *testing.T) {
	// given
	cfg := loadTestConfig(t)

	// when
	publisher, closeFn, err := SetupPublisher(context.Background(), cfg.Events, slog.New(slog.DiscardHandler))

	// then
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, messaging.NoopPublisher{}, publisher)
}

func Test_SetupDependencies(t *testing.T) {
	// given
	cfg := loadTestConfig(t)
	cfg.Analysis.Enabled = false
	st, _, closeFn, err := SetupStore(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeFn()

	// when
	deps := SetupDependencies(st, messaging.NoopPublisher{}, cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, st.Add(model.Product{Reference: "NEW-1"}))

	// then
	assert.Nil(t, deps.Dispatcher)
	assert.False(t, deps.Extractor.Enabled())
	assert.Equal(t, float64(13), testutil.ToFloat64(metrics.CatalogSize))
}

func Test_SetupHttpHandler_Routes(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{name: "health", path: "/healthz", expectedCode: http.StatusOK},
		{name: "metrics", path: "/metrics", expectedCode: http.StatusOK},
		{name: "products", path: "/api/products", expectedCode: http.StatusOK},
		{name: "analyze without model", path: "/api/products/analyze", expectedCode: http.StatusServiceUnavailable},
	}

	cfg := loadTestConfig(t)
	st, _, closeFn, err := SetupStore(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeFn()
	deps := SetupDependencies(st, nil, cfg, slog.New(slog.DiscardHandler))
	handler := SetupHttpHandler(deps, cfg)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			method := http.MethodGet
			if tc.path == "/api/products/analyze" {
				method = http.MethodPost
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, httptest.NewRequest(method, tc.path, nil))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}

func Test_SetupHttpServer_ShutdownEndsStreams(t *testing.T) {
	// given
	cfg := loadTestConfig(t)
	st, _, closeFn, err := SetupStore(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeFn()
	deps := SetupDependencies(st, nil, cfg, slog.New(slog.DiscardHandler))
	srv := SetupHttpServer(deps, cfg)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(lis) }()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+lis.Addr().String()+"/api/products/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	require.True(t, sc.Scan())
	require.Equal(t, "event: snapshot", sc.Text())

	// when
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	err = srv.Shutdown(ctx)

	// then
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.Is(<-served, http.ErrServerClosed))
}
