// ABOUTME: Pure resolver producing constraint-satisfying gateway settings
// ABOUTME: Fixups run in a fixed order so identical inputs give identical output

package wizard

import (
	"errors"

	"github.com/2389/coven-setup/internal/config"
)

// ErrPasswordRequired is returned when password auth is selected without a
// password. The resolver never invents one; the caller must re-prompt.
var ErrPasswordRequired = errors.New("password auth requires a password")

// Selections carries whichever fields the flow collected from the operator.
// Nil means "not asked": the quickstart flow leaves most of these nil and
// the existing settings fill the gaps.
type Selections struct {
	Port                 *int
	Bind                 *config.BindMode
	CustomBindHost       *string
	AuthMode             *config.AuthMode
	Token                *string
	Password             *string
	TailscaleMode        *config.TailscaleMode
	TailscaleResetOnExit *bool
}

// Resolve builds the final gateway settings from the flow's answers layered
// over the existing settings. Constraint fixups apply in a fixed order:
//
//  1. tailscale exposure forces a loopback bind
//  2. funnel exposure forces password auth
//  3. token auth without a token generates one
//  4. password auth without a password fails
//
// The returned settings always satisfy the gateway invariants; notices
// describe the fixups that fired and are purely informational. Port and
// host values are validated at the prompt boundary and are trusted here.
func Resolve(flow Flow, existing config.GatewayConfig, sel Selections) (config.GatewayConfig, []Notice, error) {
	out := existing
	applyDefaults(&out)
	applySelections(&out, sel)

	var notices []Notice

	if out.Tailscale.Mode != config.TailscaleOff && out.Bind != config.BindLoopback {
		out.Bind = config.BindLoopback
		out.CustomBindHost = ""
		notices = append(notices, Notice{Field: "bind", Reason: "tailscale-requires-loopback"})
	}

	if out.Tailscale.Mode == config.TailscaleFunnel && out.AuthMode != config.AuthPassword {
		out.AuthMode = config.AuthPassword
		notices = append(notices, Notice{Field: "authMode", Reason: "funnel-requires-password"})
	}

	if out.AuthMode == config.AuthToken && out.Token == "" {
		out.Token = GenerateToken()
	}

	if out.AuthMode == config.AuthPassword && out.Password == "" {
		return config.GatewayConfig{}, nil, ErrPasswordRequired
	}

	// A non-custom bind never carries a custom host.
	if out.Bind != config.BindCustom {
		out.CustomBindHost = ""
	}

	return out, notices, nil
}

func applyDefaults(g *config.GatewayConfig) {
	if g.Port == 0 {
		g.Port = config.DefaultPort
	}
	if g.Bind == "" {
		g.Bind = config.BindLoopback
	}
	if g.AuthMode == "" {
		g.AuthMode = config.AuthToken
	}
	if g.Tailscale.Mode == "" {
		g.Tailscale.Mode = config.TailscaleOff
	}
	if g.Mode == "" {
		g.Mode = config.GatewayLocal
	}
}

func applySelections(g *config.GatewayConfig, sel Selections) {
	if sel.Port != nil {
		g.Port = *sel.Port
	}
	if sel.Bind != nil {
		g.Bind = *sel.Bind
	}
	if sel.CustomBindHost != nil {
		g.CustomBindHost = *sel.CustomBindHost
	}
	if sel.AuthMode != nil {
		g.AuthMode = *sel.AuthMode
	}
	if sel.Token != nil {
		g.Token = *sel.Token
	}
	if sel.Password != nil {
		g.Password = *sel.Password
	}
	if sel.TailscaleMode != nil {
		g.Tailscale.Mode = *sel.TailscaleMode
	}
	if sel.TailscaleResetOnExit != nil {
		g.Tailscale.ResetOnExit = *sel.TailscaleResetOnExit
	}
}
