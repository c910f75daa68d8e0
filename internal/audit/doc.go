// ABOUTME: Package documentation for the setup audit log
// ABOUTME: Append-only SQLite record of mutating setup actions

// Package audit keeps an append-only record of every mutating setup action:
// gateway configuration writes and channel installs, configurations, updates,
// disables, and deletes. Entries are best-effort; a failed append is logged
// and the run continues, since losing an audit row is better than losing a
// half-finished setup.
package audit
