// ABOUTME: Package documentation for the setup wizard orchestrator
// ABOUTME: Flow selection, settings resolution, and the run sequence

// Package wizard drives the interactive first-run setup of a coven gateway.
//
// A run moves through a fixed sequence: read the existing configuration
// document (missing or broken files become a fresh default, never an error),
// pick a flow, collect whatever settings the flow asks for, resolve them into
// a constraint-satisfying gateway configuration, persist the document, probe
// the gateway, and hand off to the channel engine.
//
// Two flows exist. Quickstart asks the minimum and fills everything else with
// defaults; advanced walks every gateway setting. A gateway marked remote
// always takes the advanced flow, since defaults tuned for a local process
// are wrong for a machine elsewhere on the network.
//
// Resolve is the heart of the package: a pure function from (flow, existing
// settings, operator selections) to final settings. It enforces the gateway
// invariants by fixing up conflicting answers in a fixed order and reporting
// each adjustment as a Notice. The one thing it refuses to invent is a
// password; ErrPasswordRequired tells the orchestrator to re-prompt.
//
// Reachability probing after the write is strictly informational. Operators
// often run setup before the gateway is started, so an unreachable gateway
// is reported and the run completes anyway.
package wizard
