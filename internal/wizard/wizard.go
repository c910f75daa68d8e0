// ABOUTME: Orchestrates the full setup run: flow, settings, probe, channels
// ABOUTME: Single interactive operator; every step suspends the run

package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/2389/coven-setup/internal/audit"
	"github.com/2389/coven-setup/internal/channels"
	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/probe"
	"github.com/2389/coven-setup/internal/prompt"
	"github.com/2389/coven-setup/internal/tailnet"
)

// How long to wait for the gateway after writing new settings. The gateway
// may be mid-restart picking them up.
const reachableWait = 10 * time.Second

// TailnetDetector reports local tailscaled state for prompt hints.
type TailnetDetector interface {
	Detect(ctx context.Context) tailnet.Status
}

// ReachabilityProber validates candidate gateway endpoints.
type ReachabilityProber interface {
	Probe(ctx context.Context, addr, credential string, timeout time.Duration) probe.Result
	WaitForReachable(ctx context.Context, addr, credential string, deadline time.Duration) bool
}

// Wizard drives one interactive setup run.
type Wizard struct {
	ConfigPath string

	// ExplicitFlow is the --flow flag value; empty means prompt.
	ExplicitFlow string
	// ExplicitMode is the --gateway-mode flag value; empty means use the
	// existing document's gateway.mode.
	ExplicitMode string

	Prompter prompt.Prompter
	Registry *channels.Registry
	Prober   ReachabilityProber
	Tailnet  TailnetDetector
	Auditor  channels.Auditor

	Logger *slog.Logger
}

// fileStore adapts config.WriteFile to the engine's ConfigStore.
type fileStore struct {
	path string
}

func (s *fileStore) Write(cfg *config.Config) error {
	return config.WriteFile(s.path, cfg)
}

// Run executes the whole wizard. It returns prompt.ErrCancelled when the
// operator aborts; in that case nothing new has been written.
func (w *Wizard) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default().With("component", "wizard")
	}

	snap, err := config.ReadSnapshot(w.ConfigPath)
	if err != nil {
		return err
	}
	if len(snap.Issues) > 0 {
		w.Prompter.Note("Existing configuration has problems; starting fresh",
			strings.Join(snap.Issues, "; "))
	}

	modeHint := snap.Config.Gateway.Mode
	if w.ExplicitMode != "" {
		modeHint = config.GatewayMode(w.ExplicitMode)
	}

	flow, flowNotices, err := w.selectFlow(modeHint, snap)
	if err != nil {
		return err
	}
	w.renderNotices(flow, flowNotices)
	logger.Info("flow selected", "flow", flow, "gateway_mode", modeHint)

	sel := Selections{}
	if flow == FlowAdvanced {
		sel, err = w.collectAdvanced(snap.Config.Gateway)
		if err != nil {
			return err
		}
	}

	resolved, notices, err := w.resolveWithReprompt(flow, snap.Config.Gateway, sel)
	if err != nil {
		return err
	}
	w.renderNotices(flow, notices)

	var ts tailnet.Status
	if resolved.Tailscale.Mode != config.TailscaleOff && w.Tailnet != nil {
		ts = w.Tailnet.Detect(ctx)
		if !ts.Running {
			w.Prompter.Note("Tailscale exposure is configured but tailscaled is not ready", ts.Detail)
		} else if ts.DNSName != "" {
			w.Prompter.Note("Gateway will be exposed on your tailnet", ts.DNSName)
		}
	}
	resolved.Mode = modeHintOrLocal(modeHint)

	cfg := snap.Config.Clone()
	cfg.Gateway = resolved
	store := &fileStore{path: w.ConfigPath}
	if err := store.Write(cfg); err != nil {
		return fmt.Errorf("persisting gateway settings: %w", err)
	}
	w.appendAudit(ctx, logger, audit.ActionGatewayConfigured, "gateway", map[string]any{
		"flow": string(flow),
		"bind": string(resolved.Bind),
	})

	w.checkReachability(ctx, resolved, ts.DNSName)

	cfg, err = channels.NewEngine(w.Registry, w.Prompter, store, w.Auditor).
		Run(ctx, cfg, flow == FlowQuickstart)
	if err != nil {
		return err
	}

	w.summarize(cfg, ts.DNSName)
	w.Prompter.Outro("Gateway setup complete")
	return nil
}

// selectFlow resolves the flow, prompting when no explicit flag was given.
func (w *Wizard) selectFlow(modeHint config.GatewayMode, snap *config.Snapshot) (Flow, []Notice, error) {
	explicit := w.ExplicitFlow
	if explicit == "" {
		def := string(FlowQuickstart)
		if snap.Exists && snap.Valid {
			def = string(FlowAdvanced)
		}
		choice, err := w.Prompter.Select("How would you like to set up?", []prompt.Option{
			{Value: string(FlowQuickstart), Label: "Quickstart (sensible defaults, fewest questions)"},
			{Value: string(FlowAdvanced), Label: "Advanced (full manual control)"},
		}, def)
		if err != nil {
			return "", nil, err
		}
		explicit = choice
	}
	return SelectFlow(explicit, modeHint, snap.Exists && snap.Valid)
}

// resolveWithReprompt runs the resolver, re-prompting for a password when
// password auth landed without one. The resolver never invents a password.
func (w *Wizard) resolveWithReprompt(flow Flow, existing config.GatewayConfig, sel Selections) (config.GatewayConfig, []Notice, error) {
	for {
		resolved, notices, err := Resolve(flow, existing, sel)
		if err == nil {
			return resolved, notices, nil
		}
		if !errors.Is(err, ErrPasswordRequired) {
			return config.GatewayConfig{}, nil, err
		}

		pw, perr := w.Prompter.Secret("Gateway password", func(v string) error {
			if v == "" {
				return fmt.Errorf("password is required")
			}
			return nil
		})
		if perr != nil {
			return config.GatewayConfig{}, nil, perr
		}
		sel.Password = &pw
	}
}

// collectAdvanced prompts for every gateway field, validating at the input
// boundary so the resolver only ever sees well-formed values.
func (w *Wizard) collectAdvanced(existing config.GatewayConfig) (Selections, error) {
	var sel Selections

	defPort := existing.Port
	if defPort == 0 {
		defPort = config.DefaultPort
	}
	portStr, err := w.Prompter.Text("Gateway port", strconv.Itoa(config.DefaultPort), strconv.Itoa(defPort), ValidatePort)
	if err != nil {
		return sel, err
	}
	port := ParsePort(portStr)
	sel.Port = &port

	defBind := existing.Bind
	if defBind == "" {
		defBind = config.BindLoopback
	}
	bindStr, err := w.Prompter.Select("Bind address", []prompt.Option{
		{Value: string(config.BindLoopback), Label: "Loopback (this machine only)"},
		{Value: string(config.BindLAN), Label: "LAN (all interfaces)"},
		{Value: string(config.BindAuto), Label: "Auto (pick per environment)"},
		{Value: string(config.BindCustom), Label: "Custom IPv4 address"},
		{Value: string(config.BindTailnet), Label: "Tailnet interface"},
	}, string(defBind))
	if err != nil {
		return sel, err
	}
	bind := config.BindMode(bindStr)
	sel.Bind = &bind

	if bind == config.BindCustom {
		host, err := w.Prompter.Text("Bind IPv4 address", "192.168.1.10", existing.CustomBindHost, ValidateIPv4)
		if err != nil {
			return sel, err
		}
		sel.CustomBindHost = &host
	}

	defTS := existing.Tailscale.Mode
	if defTS == "" {
		defTS = config.TailscaleOff
	}
	tsStr, err := w.Prompter.Select("Tailscale exposure", []prompt.Option{
		{Value: string(config.TailscaleOff), Label: "Off"},
		{Value: string(config.TailscaleServe), Label: "Serve (tailnet only)"},
		{Value: string(config.TailscaleFunnel), Label: "Funnel (public internet)"},
	}, string(defTS))
	if err != nil {
		return sel, err
	}
	tsMode := config.TailscaleMode(tsStr)
	sel.TailscaleMode = &tsMode

	if tsMode != config.TailscaleOff {
		reset, err := w.Prompter.Confirm("Reset tailscale serve/funnel state on exit?", existing.Tailscale.ResetOnExit)
		if err != nil {
			return sel, err
		}
		sel.TailscaleResetOnExit = &reset
	}

	defAuth := existing.AuthMode
	if defAuth == "" {
		defAuth = config.AuthToken
	}
	authStr, err := w.Prompter.Select("Authentication", []prompt.Option{
		{Value: string(config.AuthToken), Label: "Token (generated if empty)"},
		{Value: string(config.AuthPassword), Label: "Password"},
	}, string(defAuth))
	if err != nil {
		return sel, err
	}
	authMode := config.AuthMode(authStr)
	sel.AuthMode = &authMode

	switch authMode {
	case config.AuthToken:
		token, err := w.Prompter.Secret("Gateway token (leave empty to keep or generate)", nil)
		if err != nil {
			return sel, err
		}
		if token != "" {
			sel.Token = &token
		}
	case config.AuthPassword:
		// Collected here when the operator chose password auth outright;
		// resolveWithReprompt covers the funnel-forced case.
		pw, err := w.Prompter.Secret("Gateway password", func(v string) error {
			if v == "" && existing.Password == "" {
				return fmt.Errorf("password is required")
			}
			return nil
		})
		if err != nil {
			return sel, err
		}
		if pw != "" {
			sel.Password = &pw
		}
	}

	return sel, nil
}

// renderNotices surfaces automatic adjustments. The quickstart flow keeps
// them to one compact note; advanced spells each out.
func (w *Wizard) renderNotices(flow Flow, notices []Notice) {
	if len(notices) == 0 {
		return
	}
	if flow == FlowQuickstart {
		parts := make([]string, 0, len(notices))
		for _, n := range notices {
			parts = append(parts, fmt.Sprintf("%s: %s", n.Field, n.Reason))
		}
		w.Prompter.Note("Adjusted settings", strings.Join(parts, ", "))
		return
	}
	for _, n := range notices {
		w.Prompter.Note(fmt.Sprintf("Adjusted %s", n.Field), n.Reason)
	}
}

// checkReachability probes the freshly-written settings. The outcome is
// informational only; an unreachable gateway never blocks completion.
func (w *Wizard) checkReachability(ctx context.Context, g config.GatewayConfig, tailnetDNS string) {
	if w.Prober == nil {
		return
	}
	addr := ProbeAddr(g, tailnetDNS)
	credential := g.Token
	if g.AuthMode == config.AuthPassword {
		credential = g.Password
	}

	progress := w.Prompter.Progress("Checking gateway at " + addr)
	if w.Prober.WaitForReachable(ctx, addr, credential, reachableWait) {
		progress.Stop("gateway is reachable")
		return
	}
	res := w.Prober.Probe(ctx, addr, credential, time.Second)
	progress.Stop("gateway not reachable yet")
	if res.Detail != "" {
		w.Prompter.Note("Gateway could not be reached; settings were saved anyway", res.Detail)
	}
}

// ProbeAddr derives the endpoint to probe from the resolved settings.
func ProbeAddr(g config.GatewayConfig, tailnetDNS string) string {
	host := "127.0.0.1"
	switch g.Bind {
	case config.BindCustom:
		if g.CustomBindHost != "" {
			host = g.CustomBindHost
		}
	case config.BindTailnet:
		if tailnetDNS != "" {
			host = tailnetDNS
		}
	}
	return fmt.Sprintf("%s:%d", host, g.Port)
}

func (w *Wizard) appendAudit(ctx context.Context, logger *slog.Logger, action audit.Action, target string, detail map[string]any) {
	if w.Auditor == nil {
		return
	}
	if err := w.Auditor.Append(ctx, &audit.Entry{Action: action, Target: target, Detail: detail}); err != nil {
		logger.Warn("audit append failed", "action", action, "error", err)
	}
}

func modeHintOrLocal(m config.GatewayMode) config.GatewayMode {
	if m == "" {
		return config.GatewayLocal
	}
	return m
}

// summarize prints the closing overview of what the run configured.
func (w *Wizard) summarize(cfg *config.Config, tailnetDNS string) {
	g := cfg.Gateway

	var lines []string
	lines = append(lines, fmt.Sprintf("Gateway:   %s", ProbeAddr(g, tailnetDNS)))
	lines = append(lines, fmt.Sprintf("Bind:      %s", g.Bind))
	lines = append(lines, fmt.Sprintf("Auth:      %s", g.AuthMode))
	if g.Tailscale.Mode != config.TailscaleOff {
		lines = append(lines, fmt.Sprintf("Tailscale: %s", g.Tailscale.Mode))
	}

	var configured []string
	for _, a := range w.Registry.All() {
		st := a.Status(cfg)
		if st.Configured {
			name := st.Label
			if st.Disabled {
				name += " (disabled)"
			}
			configured = append(configured, name)
		}
	}
	if len(configured) > 0 {
		lines = append(lines, "Channels:  "+strings.Join(configured, ", "))
	} else {
		lines = append(lines, "Channels:  none")
	}

	w.Prompter.Note("Setup summary", strings.Join(lines, "\n  "))
}
