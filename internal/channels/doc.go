// Package channels reconciles pluggable chat integrations into the gateway
// configuration document.
//
// # Adapters
//
// Each integration implements Adapter: derive a Status from the document,
// Configure interactively, Disable while retaining settings. Optional
// capabilities are expressed as extra interfaces — AccountDeleter for
// channels whose persisted entries can be removed, Installer for channels
// that need a gateway plugin before configuration. Adapters are pure config
// transformers: they clone the document and never mutate their input.
//
// # State machine
//
// Per channel:
//
//	UNINSTALLED --install ok--> NOT_CONFIGURED --configure--> CONFIGURED
//
// Install and configure failures are isolated: the channel stays in its
// previous state, the failure is reported, and the run continues. A
// configured channel offers update, disable, delete, and skip; delete on a
// multi-account channel is scoped to one account and reverts the channel to
// NOT_CONFIGURED when the last account goes.
//
// # Engine
//
// The Engine owns the selection loop. Quickstart asks one single-choice
// question (best-ranked unconfigured channel preselected, explicit skip
// offered); advanced loops on "pick a channel or finish". After every
// mutating action the engine re-derives statuses and persists the document
// as a full replace — but only when the encoded document actually changed,
// so skipping or re-entering identical answers leaves the file byte-for-byte
// untouched.
package channels
