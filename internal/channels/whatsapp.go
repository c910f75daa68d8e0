// ABOUTME: WhatsApp channel adapter requiring a gateway bridge plugin
// ABOUTME: Install work is delegated to an injected InstallFunc

package channels

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"time"

	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// Bound on one plugin install run. A stalled download must never hang the
// whole setup.
const installTimeout = 5 * time.Minute

// InstallFunc performs the actual plugin install, reporting progress as it
// goes. It must respect ctx so a stuck download cannot hang the run.
type InstallFunc func(ctx context.Context, progress prompt.Progress) error

// WhatsApp configures the WhatsApp bridge integration. The bridge plugin
// must be installed into the gateway before the channel can be configured.
type WhatsApp struct {
	install InstallFunc
}

// NewWhatsApp returns the WhatsApp adapter with the given installer.
func NewWhatsApp(install InstallFunc) *WhatsApp {
	return &WhatsApp{install: install}
}

func (w *WhatsApp) ID() string    { return "whatsapp" }
func (w *WhatsApp) Label() string { return "WhatsApp" }

// Status derives WhatsApp state from the document.
func (w *WhatsApp) Status(cfg *config.Config) Status {
	wc := cfg.Channels.WhatsApp
	st := Status{
		ID:              w.ID(),
		Label:           w.Label(),
		Configured:      wc.Configured,
		Disabled:        wc.Configured && !wc.Enabled,
		QuickstartScore: 60,
	}
	switch {
	case !wc.Installed:
		st.SelectionHint = "needs plugin install"
	case st.Disabled:
		st.SelectionHint = "disabled"
	case st.Configured:
		st.SelectionHint = "configured"
	}
	return st
}

// Installed reports whether the bridge plugin is present.
func (w *WhatsApp) Installed(cfg *config.Config) bool {
	return cfg.Channels.WhatsApp.Installed
}

// Install runs the bridge plugin install and records success in the
// document. A failed install leaves the document untouched.
func (w *WhatsApp) Install(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, error) {
	progress := p.Progress("Installing WhatsApp bridge plugin")
	if err := w.install(ctx, progress); err != nil {
		progress.Stop("install failed")
		return nil, fmt.Errorf("installing whatsapp bridge: %w", err)
	}
	progress.Stop("bridge plugin installed")

	next := cfg.Clone()
	next.Channels.WhatsApp.Installed = true
	return next, nil
}

// Configure prompts for the bridge URL.
func (w *WhatsApp) Configure(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*config.Config, string, error) {
	cur := cfg.Channels.WhatsApp

	bridgeURL, err := p.Text("WhatsApp bridge URL", "ws://localhost:8055", cur.BridgeURL, validateBridgeURL)
	if err != nil {
		return nil, "", err
	}

	next := cfg.Clone()
	next.Channels.WhatsApp.Enabled = true
	next.Channels.WhatsApp.Configured = true
	next.Channels.WhatsApp.BridgeURL = bridgeURL
	return next, "", nil
}

// Disable marks WhatsApp inactive while keeping the bridge settings.
func (w *WhatsApp) Disable(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	next.Channels.WhatsApp.Enabled = false
	return next, nil
}

// DeleteAccount removes the WhatsApp configuration but keeps the installed
// plugin, so reconfiguring later skips the install step.
func (w *WhatsApp) DeleteAccount(cfg *config.Config, accountID string) (*config.Config, error) {
	next := cfg.Clone()
	installed := next.Channels.WhatsApp.Installed
	next.Channels.WhatsApp = config.WhatsAppConfig{Installed: installed}
	return next, nil
}

// ExecInstaller installs the bridge plugin by invoking the gateway binary.
// This is the production InstallFunc; tests inject their own.
func ExecInstaller(gatewayBin string) InstallFunc {
	return execInstaller(gatewayBin, installTimeout)
}

func execInstaller(gatewayBin string, timeout time.Duration) InstallFunc {
	return func(ctx context.Context, progress prompt.Progress) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		progress.Update("running " + gatewayBin + " plugins install whatsapp")
		cmd := exec.CommandContext(ctx, gatewayBin, "plugins", "install", "whatsapp")
		out, err := cmd.CombinedOutput()
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%s plugins install whatsapp timed out after %s", gatewayBin, timeout)
			}
			return fmt.Errorf("%s plugins install whatsapp: %v: %s", gatewayBin, err, out)
		}
		return nil
	}
}

func validateBridgeURL(v string) error {
	if v == "" {
		return fmt.Errorf("bridge URL is required")
	}
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("bridge URL must be ws(s) or http(s)")
	}
	if u.Host == "" {
		return fmt.Errorf("bridge URL needs a host")
	}
	return nil
}
