package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/gartstein/jobboard/internal/jobboard/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func TestServer_RegisterRoutes(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50061, 8061, logger)

	h := NewJobHandler(&MockJobController{}, logger)
	err := s.RegisterRoutes(h, auth.NewAuthenticator("secret", logger), metrics.New(), stubPinger{})
	require.NoError(t, err)

	assert.Equal(t, s.httpEndpoint, s.httpServer.Addr)
	assert.NotNil(t, s.httpServer.Handler)
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	// Use fixed ports so we know what address to dial.
	s := NewServer(50062, 8062, logger)

	h := NewJobHandler(&MockJobController{}, logger)
	require.NoError(t, s.RegisterRoutes(h, auth.NewAuthenticator("secret", logger), metrics.New(), stubPinger{}))

	// Start the server in a separate goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	conn, err := grpc.NewClient(
		"localhost"+s.grpcEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 3*time.Second, 50*time.Millisecond, "gRPC health service should report SERVING")

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://localhost%s/healthz", s.httpEndpoint))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond, "HTTP server should answer /healthz")

	// Stop the server.
	s.Stop()

	// Wait for Start() to return.
	select {
	case err := <-errCh:
		assert.NoError(t, err, "Start should return cleanly after Stop")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}

	// Verify that the gRPC server has stopped by attempting to listen on the same endpoint.
	lis, err := net.Listen("tcp", s.grpcEndpoint)
	if assert.NoError(t, err, "endpoint should be free after shutdown") {
		lis.Close()
	}
}

func TestServer_StartFailsWhenGRPCPortTaken(t *testing.T) {
	taken, err := net.Listen("tcp", ":50063")
	require.NoError(t, err)
	defer taken.Close()

	s := NewServer(50063, 8063, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "gRPC listen error")
	case <-time.After(3 * time.Second):
		t.Fatal("Start should fail when the gRPC port is in use")
	}

	// The HTTP server must not outlive the failed start.
	require.Eventually(t, func() bool {
		lis, err := net.Listen("tcp", s.httpEndpoint)
		if err != nil {
			return false
		}
		lis.Close()
		return true
	}, 3*time.Second, 50*time.Millisecond, "HTTP endpoint should be released")
}
