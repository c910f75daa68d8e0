// ABOUTME: Matrix channel adapter over the matrix block of the config document
// ABOUTME: Validates homeserver URLs and Matrix user ids at the input boundary

package channels

import (
	"context"
	"fmt"
	"net/url"

	"maunium.net/go/mautrix/id"

	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// Matrix configures the Matrix integration.
type Matrix struct{}

// NewMatrix returns the Matrix adapter.
func NewMatrix() *Matrix {
	return &Matrix{}
}

func (m *Matrix) ID() string    { return "matrix" }
func (m *Matrix) Label() string { return "Matrix" }

// Status derives Matrix state from the document.
func (m *Matrix) Status(cfg *config.Config) Status {
	mc := cfg.Channels.Matrix
	st := Status{
		ID:              m.ID(),
		Label:           m.Label(),
		Configured:      mc.Configured,
		Disabled:        mc.Configured && !mc.Enabled,
		QuickstartScore: 70,
	}
	switch {
	case st.Disabled:
		st.SelectionHint = "disabled"
	case st.Configured:
		st.SelectionHint = "configured"
	}
	return st
}

// Configure prompts for homeserver, user id, and access token.
func (m *Matrix) Configure(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, string, error) {
	cur := cfg.Channels.Matrix

	homeserver, err := p.Text("Matrix homeserver URL", "https://matrix.org", cur.Homeserver, validateHomeserver)
	if err != nil {
		return nil, "", err
	}
	userID, err := p.Text("Matrix user ID", "@bot:matrix.org", cur.UserID, validateMatrixUserID)
	if err != nil {
		return nil, "", err
	}
	// An existing token may be kept by leaving the prompt empty.
	var validateToken func(string) error
	if cur.AccessToken == "" {
		validateToken = requireNonEmpty("access token")
	}
	accessToken, err := p.Secret("Matrix access token", validateToken)
	if err != nil {
		return nil, "", err
	}
	if accessToken == "" {
		accessToken = cur.AccessToken
	}

	next := cfg.Clone()
	next.Channels.Matrix = config.MatrixConfig{
		Enabled:     true,
		Configured:  true,
		Homeserver:  homeserver,
		UserID:      userID,
		AccessToken: accessToken,
	}
	return next, "", nil
}

// Disable marks Matrix inactive while keeping its settings.
func (m *Matrix) Disable(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	next.Channels.Matrix.Enabled = false
	return next, nil
}

// DeleteAccount removes the Matrix entry entirely.
func (m *Matrix) DeleteAccount(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	next.Channels.Matrix = config.MatrixConfig{}
	return next, nil
}

func validateHomeserver(v string) error {
	if v == "" {
		return fmt.Errorf("homeserver is required")
	}
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("homeserver must be an http(s) URL")
	}
	if u.Host == "" {
		return fmt.Errorf("homeserver URL needs a host")
	}
	return nil
}

func validateMatrixUserID(v string) error {
	if v == "" {
		return fmt.Errorf("user ID is required")
	}
	if _, _, err := id.UserID(v).Parse(); err != nil {
		return fmt.Errorf("invalid Matrix user ID (want @user:server): %v", err)
	}
	return nil
}

func requireNonEmpty(what string) func(string) error {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}
