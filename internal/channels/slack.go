// ABOUTME: Slack channel adapter over the slack block of the config document
// ABOUTME: Single-account; app and bot tokens with prefix validation

package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// Slack configures the Slack socket-mode integration.
type Slack struct{}

// NewSlack returns the Slack adapter.
func NewSlack() *Slack {
	return &Slack{}
}

func (s *Slack) ID() string    { return "slack" }
func (s *Slack) Label() string { return "Slack" }

// Status derives Slack state from the document.
func (s *Slack) Status(cfg *config.Config) Status {
	sc := cfg.Channels.Slack
	st := Status{
		ID:              s.ID(),
		Label:           s.Label(),
		Configured:      sc.Configured,
		Disabled:        sc.Configured && !sc.Enabled,
		QuickstartScore: 80,
	}
	switch {
	case st.Disabled:
		st.SelectionHint = "disabled"
	case st.Configured:
		st.SelectionHint = "configured"
	}
	return st
}

// Configure prompts for the app-level and bot tokens. Existing values are
// offered as defaults so re-running with unchanged answers is a no-op.
func (s *Slack) Configure(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, string, error) {
	cur := cfg.Channels.Slack

	appToken, err := p.Text("Slack app token", "xapp-...", cur.AppToken, validateSlackToken("xapp-"))
	if err != nil {
		return nil, "", err
	}
	botToken, err := p.Text("Slack bot token", "xoxb-...", cur.BotToken, validateSlackToken("xoxb-"))
	if err != nil {
		return nil, "", err
	}
	allowed, err := p.Text("Allowed channels (comma-separated, empty for all)", "general, random", strings.Join(cur.AllowedChannels, ", "), nil)
	if err != nil {
		return nil, "", err
	}

	next := cfg.Clone()
	next.Channels.Slack = config.SlackConfig{
		Enabled:         true,
		Configured:      true,
		AppToken:        appToken,
		BotToken:        botToken,
		AllowedChannels: splitList(allowed),
	}
	return next, "", nil
}

// Disable marks Slack inactive while keeping its tokens.
func (s *Slack) Disable(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	next.Channels.Slack.Enabled = false
	return next, nil
}

// DeleteAccount removes the Slack entry entirely.
func (s *Slack) DeleteAccount(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	next.Channels.Slack = config.SlackConfig{}
	return next, nil
}

func validateSlackToken(prefix string) func(string) error {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("token is required")
		}
		if !strings.HasPrefix(v, prefix) {
			return fmt.Errorf("token must start with %s", prefix)
		}
		return nil
	}
}

// splitList parses a comma-separated prompt answer, dropping empties.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
