// ABOUTME: Telegram channel adapter supporting multiple bot accounts
// ABOUTME: Accounts live as an ordered list in the config document

package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

const telegramAddAccount = "add-new-account"

// Telegram configures Telegram bot accounts. It is the multi-account
// channel: disable and delete are scoped to a single account id.
type Telegram struct{}

// NewTelegram returns the Telegram adapter.
func NewTelegram() *Telegram {
	return &Telegram{}
}

func (t *Telegram) ID() string    { return "telegram" }
func (t *Telegram) Label() string { return "Telegram" }

// Status derives Telegram state from the document. The channel counts as
// configured while any account remains, and disabled when none are enabled.
func (t *Telegram) Status(cfg *config.Config) Status {
	accounts := cfg.Channels.Telegram.Accounts
	st := Status{
		ID:              t.ID(),
		Label:           t.Label(),
		Configured:      len(accounts) > 0,
		QuickstartScore: 90,
	}

	anyEnabled := false
	for _, a := range accounts {
		st.AccountIDs = append(st.AccountIDs, a.ID)
		if a.Enabled {
			anyEnabled = true
		}
	}
	st.Disabled = st.Configured && !anyEnabled

	switch {
	case st.Disabled:
		st.SelectionHint = "disabled"
	case len(accounts) > 1:
		st.SelectionHint = fmt.Sprintf("%d accounts", len(accounts))
	case st.Configured:
		st.SelectionHint = "configured"
	}
	return st
}

// Configure adds a new bot account or updates an existing one. With
// existing accounts the operator picks which first; otherwise it goes
// straight to the token prompt.
func (t *Telegram) Configure(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, string, error) {
	accounts := cfg.Channels.Telegram.Accounts

	target := telegramAddAccount
	if len(accounts) > 0 {
		opts := []prompt.Option{{Value: telegramAddAccount, Label: "Add a new bot account"}}
		for _, a := range accounts {
			opts = append(opts, prompt.Option{Value: a.ID, Label: a.ID})
		}
		var err error
		target, err = p.Select("Which Telegram account?", opts, telegramAddAccount)
		if err != nil {
			return nil, "", err
		}
	}

	def := ""
	for _, a := range accounts {
		if a.ID == target {
			def = a.BotToken
		}
	}

	// An existing token may be kept by leaving the prompt empty. A new
	// account has nothing to fall back to, so empty is rejected at the
	// boundary and the prompt re-issues.
	validate := validateTelegramToken
	if def == "" {
		validate = func(v string) error {
			if v == "" {
				return fmt.Errorf("bot token is required")
			}
			return validateTelegramToken(v)
		}
	}

	botToken, err := p.Secret("Telegram bot token", validate)
	if err != nil {
		return nil, "", err
	}
	if botToken == "" {
		botToken = def
	}

	next := cfg.Clone()
	if target == telegramAddAccount {
		account := config.TelegramAccount{
			ID:       uuid.New().String(),
			Enabled:  true,
			BotToken: botToken,
		}
		next.Channels.Telegram.Accounts = append(next.Channels.Telegram.Accounts, account)
		return next, account.ID, nil
	}

	for i := range next.Channels.Telegram.Accounts {
		if next.Channels.Telegram.Accounts[i].ID == target {
			next.Channels.Telegram.Accounts[i].BotToken = botToken
			next.Channels.Telegram.Accounts[i].Enabled = true
			return next, target, nil
		}
	}
	return nil, "", fmt.Errorf("telegram account %q disappeared during configuration", target)
}

// Disable marks one account inactive while retaining its token.
func (t *Telegram) Disable(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	for i := range next.Channels.Telegram.Accounts {
		if next.Channels.Telegram.Accounts[i].ID == accountID {
			next.Channels.Telegram.Accounts[i].Enabled = false
			return next, nil
		}
	}
	return nil, fmt.Errorf("no telegram account %q", accountID)
}

// DeleteAccount removes one account. When the last account goes, the
// channel naturally reverts to unconfigured.
func (t *Telegram) DeleteAccount(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	accounts := next.Channels.Telegram.Accounts
	for i := range accounts {
		if accounts[i].ID == accountID {
			next.Channels.Telegram.Accounts = append(accounts[:i:i], accounts[i+1:]...)
			return next, nil
		}
	}
	return nil, fmt.Errorf("no telegram account %q", accountID)
}

func validateTelegramToken(v string) error {
	if v == "" {
		// Empty keeps the existing token on update; Configure layers a
		// non-empty requirement on top for brand-new accounts.
		return nil
	}
	if !strings.Contains(v, ":") {
		return fmt.Errorf("bot token looks wrong (want <id>:<secret> from @BotFather)")
	}
	return nil
}
