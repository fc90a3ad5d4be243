package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/cfg"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*GRPCServer, healthpb.HealthClient) {
	t.Helper()

	srv := NewGRPCServer(&cfg.GRPCConfig{Port: "0", NetworkMode: "tcp"}, logger.NewTestLogger(t))
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	return res.GetStatus()
}

func TestGRPCServer_HealthFollowsProbe(t *testing.T) {
	srv, client := startServer(t)
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))

	var failing atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.MonitorHealth(ctx, func(context.Context) error {
		if failing.Load() {
			return errors.New("database unavailable")
		}
		return nil
	}, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	failing.Store(true)
	assert.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)
}

func TestGRPCServer_StopFlipsHealth(t *testing.T) {
	srv, client := startServer(t)

	srv.setServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client))

	srv.health.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))

	require.NoError(t, srv.Stop(context.Background()))
}
