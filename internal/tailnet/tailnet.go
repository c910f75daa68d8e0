// ABOUTME: Local tailscaled detection for the tailnet bind and exposure flow
// ABOUTME: Queries the node's status to surface hostname and readiness hints

package tailnet

import (
	"context"
	"log/slog"
	"strings"

	"tailscale.com/client/tailscale"
	"tailscale.com/ipn/ipnstate"
)

// Status describes the local tailscale node as seen at wizard time. It is a
// hint for prompt text and warnings only; the resolver never depends on it.
type Status struct {
	Running bool
	DNSName string
	Detail  string
}

// statusClient is the slice of the tailscale local API the detector needs.
type statusClient interface {
	StatusWithoutPeers(ctx context.Context) (*ipnstate.Status, error)
}

// Detector reads the local tailscaled state.
type Detector struct {
	client statusClient
	logger *slog.Logger
}

// NewDetector returns a Detector backed by the local tailscaled socket.
func NewDetector() *Detector {
	return &Detector{
		client: &tailscale.LocalClient{},
		logger: slog.Default().With("component", "tailnet"),
	}
}

// Detect queries tailscaled. A missing or stopped daemon is not an error:
// the returned Status reports Running=false with a detail message, and the
// wizard carries on with a warning.
func (d *Detector) Detect(ctx context.Context) Status {
	st, err := d.client.StatusWithoutPeers(ctx)
	if err != nil {
		d.logger.Debug("tailscaled not reachable", "error", err)
		return Status{Detail: "tailscaled is not running or not reachable"}
	}

	out := Status{Running: st.BackendState == "Running"}
	if !out.Running {
		out.Detail = "tailscale backend state is " + st.BackendState
	}
	if st.Self != nil {
		out.DNSName = strings.TrimSuffix(st.Self.DNSName, ".")
	}
	return out
}
