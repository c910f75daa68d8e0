// ABOUTME: Channel adapter contract and derived per-channel status
// ABOUTME: Adapters expose named operations only; the engine never peeks inside

package channels

import (
	"context"

	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// Status is the derived state of one channel. It is recomputed from the
// configuration document after every mutating action and never persisted.
type Status struct {
	ID         string
	Label      string
	Configured bool
	Disabled   bool

	// QuickstartScore ranks this channel as the quickstart default
	// suggestion; higher wins. Only meaningful while unconfigured.
	QuickstartScore int

	// SelectionHint is the short state summary shown next to the channel
	// in selection prompts, e.g. "configured", "needs install".
	SelectionHint string

	// AccountIDs lists account ids for multi-account channels, in
	// document order. Empty for single-account channels.
	AccountIDs []string
}

// Action is what the operator can do with an already-configured channel.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionDisable Action = "disable"
	ActionDelete  Action = "delete"
	ActionSkip    Action = "skip"
)

// Adapter is one pluggable channel integration. Implementations are pure
// config transformers: they take the current document, prompt for whatever
// they need, and return a new document, leaving the input untouched.
type Adapter interface {
	ID() string
	Label() string

	// Status derives the channel's current state from the document.
	Status(cfg *config.Config) Status

	// Configure collects settings interactively and returns the updated
	// document plus the id of the account that was configured (empty for
	// single-account channels).
	Configure(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, string, error)

	// Disable marks the channel (or one account of it) inactive while
	// retaining its stored settings.
	Disable(cfg *config.Config, accountID string) (*config.Config, error)
}

// AccountDeleter is implemented by adapters that can remove persisted
// accounts. Channels without it simply don't offer the delete action.
type AccountDeleter interface {
	DeleteAccount(cfg *config.Config, accountID string) (*config.Config, error)
}

// Installer is implemented by adapters whose channel needs a gateway plugin
// installed before configuration.
type Installer interface {
	Installed(cfg *config.Config) bool
	Install(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, error)
}
