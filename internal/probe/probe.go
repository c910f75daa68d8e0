// ABOUTME: Bounded-time reachability probe for a candidate gateway endpoint
// ABOUTME: Dials gRPC with bearer-token metadata and calls the health service

package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Result is the immutable outcome of one probe attempt. Detail is
// human-readable and only populated when the endpoint was not reachable.
type Result struct {
	Reachable bool
	Detail    string
}

// Interval between attempts inside WaitForReachable.
const pollInterval = 500 * time.Millisecond

// Prober checks gateway reachability. It reads network state only; it never
// touches configuration.
type Prober struct {
	logger *slog.Logger

	// checkHealth is swapped in tests that need a failing RPC on a live
	// connection.
	checkHealth func(ctx context.Context, conn *grpc.ClientConn) error
}

// New returns a Prober logging through the default slog logger.
func New() *Prober {
	return &Prober{
		logger:      slog.Default().With("component", "probe"),
		checkHealth: checkHealth,
	}
}

// Probe performs a single connection attempt against addr within timeout.
// Transport, protocol, and authentication failures all map to
// Reachable=false with a detail string; Probe never returns an error.
func (p *Prober) Probe(ctx context.Context, addr, credential string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if credential != "" {
		md := metadata.Pairs("authorization", "Bearer "+credential)
		ctx = metadata.NewOutgoingContext(ctx, md)
	}

	conn, err := grpc.DialContext(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		p.logger.Debug("probe dial failed", "addr", addr, "error", err)
		return Result{Detail: fmt.Sprintf("connecting to %s: %v", addr, err)}
	}
	defer conn.Close()

	if err := p.checkHealth(ctx, conn); err != nil {
		// Old gateways predate the health service; the established
		// connection already proves reachability for those.
		if status.Code(err) == codes.Unimplemented {
			return Result{Reachable: true, Detail: "gateway does not implement health checks (upgrade recommended)"}
		}
		detail := describeRPCError(err)
		p.logger.Debug("probe health check failed", "addr", addr, "error", err)
		return Result{Detail: detail}
	}

	return Result{Reachable: true}
}

// WaitForReachable repeatedly probes addr at a fixed short interval until a
// probe succeeds or deadline elapses. It exists for the window right after a
// configuration-mutating action, when the gateway may be mid-restart.
func (p *Prober) WaitForReachable(ctx context.Context, addr, credential string, deadline time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if res := p.Probe(ctx, addr, credential, pollInterval); res.Reachable {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func checkHealth(ctx context.Context, conn *grpc.ClientConn) error {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("gateway reports status %s", resp.Status)
	}
	return nil
}

// describeRPCError turns gRPC failures into operator-readable detail.
func describeRPCError(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Sprintf("authentication rejected: %s", st.Message())
	case codes.DeadlineExceeded:
		return "gateway did not respond before the deadline"
	case codes.Unavailable:
		return fmt.Sprintf("gateway unavailable: %s", st.Message())
	default:
		return fmt.Sprintf("%s: %s", st.Code(), st.Message())
	}
}
