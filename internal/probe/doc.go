// Package probe validates that a candidate gateway endpoint is reachable.
//
// Probe performs one bounded-time gRPC health check with the configured
// credential as bearer metadata; WaitForReachable polls Probe until success
// or deadline, smoothing over the restart window after a config change.
// Probe results are informational only: the wizard completes gateway
// configuration whether or not the endpoint answers.
package probe
