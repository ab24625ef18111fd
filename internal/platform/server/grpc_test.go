package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func Test_NewGRPCServer_Health(t *testing.T) {
	testCases := []struct {
		name     string
		status   healthpb.HealthCheckResponse_ServingStatus
		expected healthpb.HealthCheckResponse_ServingStatus
	}{
		{
			name:     "Success - serving",
			status:   healthpb.HealthCheckResponse_SERVING,
			expected: healthpb.HealthCheckResponse_SERVING,
		},
		{
			name:     "Success - not serving",
			status:   healthpb.HealthCheckResponse_NOT_SERVING,
			expected: healthpb.HealthCheckResponse_NOT_SERVING,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			lis := bufconn.Listen(1024 * 1024)
			hs := health.NewServer()
			hs.SetServingStatus("catalog", tc.status)
			srv := NewGRPCServer(true, HealthRegistration(hs))
			go func() { _ = srv.Serve(lis) }()
			t.Cleanup(srv.Stop)

			conn, err := grpc.NewClient("passthrough:///bufnet",
				grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
					return lis.DialContext(ctx)
				}),
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })

			// when
			resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "catalog"})

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resp.GetStatus())
		})
	}
}
