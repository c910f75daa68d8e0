// Package config handles the gateway configuration document for coven-setup.
//
// # Overview
//
// The setup wizard owns no file format of its own: it reads and rewrites the
// gateway's YAML configuration document as an opaque whole. Reads produce a
// Snapshot that reports whether the file existed and parsed; writes always
// replace the full document atomically.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_CONFIG environment variable
//  2. ~/.config/coven/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	gateway:
//	  token: "${COVEN_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Gateway Section
//
//	gateway:
//	  mode: "local"          # local, remote
//	  port: 18789
//	  bind: "loopback"       # loopback, lan, auto, custom, tailnet
//	  auth_mode: "token"     # token, password
//	  token: "..."
//	  tailscale:
//	    mode: "off"          # off, serve, funnel
//	    reset_on_exit: false
//
// # Channels Section
//
//	channels:
//	  slack:
//	    configured: true
//	    enabled: true
//	    app_token: "xapp-..."
//	    bot_token: "xoxb-..."
//	  telegram:
//	    accounts:
//	      - id: "4f0c..."
//	        enabled: true
//	        bot_token: "..."
//
// # Snapshot Semantics
//
// A missing file, a file that fails to parse, and a file that fails
// validation are all survivable: ReadSnapshot returns a default document
// plus Issues describing the problem, and the wizard proceeds as a first
// run. Only unexpected I/O errors are returned as errors.
package config
