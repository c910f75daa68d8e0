// ABOUTME: Tests for the gateway reachability probe
// ABOUTME: Uses an in-process gRPC health server for the reachable path

package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// startHealthServer runs a gRPC server with the standard health service on an
// ephemeral port and returns its address plus the health server for flipping
// serving status mid-test.
func startHealthServer(t *testing.T, status healthpb.HealthCheckResponse_ServingStatus) (string, *health.Server) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", status)
	healthpb.RegisterHealthServer(srv, hs)

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	return lis.Addr().String(), hs
}

// unusedAddr returns an address nothing is listening on.
func unusedAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestProbe_Reachable(t *testing.T) {
	addr, _ := startHealthServer(t, healthpb.HealthCheckResponse_SERVING)

	res := New().Probe(context.Background(), addr, "test-token", 2*time.Second)
	assert.True(t, res.Reachable)
	assert.Empty(t, res.Detail)
}

func TestProbe_NotServing(t *testing.T) {
	addr, _ := startHealthServer(t, healthpb.HealthCheckResponse_NOT_SERVING)

	res := New().Probe(context.Background(), addr, "", 2*time.Second)
	assert.False(t, res.Reachable)
	assert.NotEmpty(t, res.Detail)
}

func TestProbe_Unreachable(t *testing.T) {
	addr := unusedAddr(t)

	start := time.Now()
	res := New().Probe(context.Background(), addr, "", 500*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, res.Reachable)
	assert.NotEmpty(t, res.Detail)
	assert.Less(t, elapsed, 3*time.Second, "probe must respect its deadline")
}

func TestProbe_ZeroTimeout(t *testing.T) {
	// An already-elapsed deadline must come back immediately as
	// unreachable, never as a hang or a panic.
	addr := unusedAddr(t)

	start := time.Now()
	res := New().Probe(context.Background(), addr, "", 0)
	elapsed := time.Since(start)

	assert.False(t, res.Reachable)
	assert.Less(t, elapsed, time.Second)
}

func TestWaitForReachable_Success(t *testing.T) {
	addr, _ := startHealthServer(t, healthpb.HealthCheckResponse_SERVING)

	ok := New().WaitForReachable(context.Background(), addr, "", 3*time.Second)
	assert.True(t, ok)
}

func TestWaitForReachable_DeadlineElapses(t *testing.T) {
	addr := unusedAddr(t)

	start := time.Now()
	ok := New().WaitForReachable(context.Background(), addr, "", 1200*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestWaitForReachable_BecomesReachable(t *testing.T) {
	addr, hs := startHealthServer(t, healthpb.HealthCheckResponse_NOT_SERVING)

	go func() {
		time.Sleep(700 * time.Millisecond)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}()

	ok := New().WaitForReachable(context.Background(), addr, "", 5*time.Second)
	assert.True(t, ok, "wait should pick up the flip to SERVING")
}
