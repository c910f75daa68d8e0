// ABOUTME: Package documentation for local tailscaled detection
// ABOUTME: Read-only status queries used for prompt hints and warnings

// Package tailnet reports the state of the local tailscaled daemon. The
// wizard only reads: it never joins, serves, or funnels itself. Detection
// results feed prompt hints (the tailnet DNS name the gateway will get) and
// warnings (exposure configured while tailscaled is down), and a failure to
// reach tailscaled is itself just a status, never an error.
package tailnet
