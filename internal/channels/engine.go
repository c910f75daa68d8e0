// ABOUTME: Channel reconciliation engine driving per-channel actions
// ABOUTME: Writes the document after each mutating action, never on no-ops

package channels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/2389/coven-setup/internal/audit"
	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// ConfigStore persists the configuration document. Every Write is a full
// replace of the latest in-memory snapshot.
type ConfigStore interface {
	Write(cfg *config.Config) error
}

// Auditor records mutating setup actions. A nil Auditor disables auditing.
type Auditor interface {
	Append(ctx context.Context, e *audit.Entry) error
}

const (
	choiceSkip   = "skip"
	choiceFinish = "finish"
)

// Engine iterates the registered channels and drives the per-channel action
// state machine. It is single-threaded: each prompt, install, and write
// suspends the run until it completes.
type Engine struct {
	registry *Registry
	prompter prompt.Prompter
	store    ConfigStore
	auditor  Auditor
	logger   *slog.Logger

	cfg         *config.Config
	lastWritten []byte
}

// NewEngine builds an engine over the given collaborators. auditor may be nil.
func NewEngine(registry *Registry, prompter prompt.Prompter, store ConfigStore, auditor Auditor) *Engine {
	return &Engine{
		registry: registry,
		prompter: prompter,
		store:    store,
		auditor:  auditor,
		logger:   slog.Default().With("component", "channels"),
	}
}

// Run reconciles channels starting from cfg and returns the final document.
// Quickstart offers exactly one single-choice prompt; the advanced loop
// offers "pick a channel or finish" until the operator finishes. A
// cancellation from any prompt propagates immediately, before the next
// write.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, quickstart bool) (*config.Config, error) {
	e.cfg = cfg.Clone()

	baseline, err := e.cfg.Encode()
	if err != nil {
		return nil, err
	}
	e.lastWritten = baseline

	if quickstart {
		if err := e.runQuickstart(ctx); err != nil {
			return nil, err
		}
		return e.cfg, nil
	}

	for {
		done, err := e.runAdvancedStep(ctx)
		if err != nil {
			return nil, err
		}
		if done {
			return e.cfg, nil
		}
	}
}

// runQuickstart offers one suggestion-ranked pick, or an explicit skip.
func (e *Engine) runQuickstart(ctx context.Context) error {
	opts := e.selectionOptions(true)
	def := e.quickstartDefault()

	choice, err := e.prompter.Select("Connect a chat channel?", opts, def)
	if err != nil {
		return err
	}
	if choice == choiceSkip {
		return nil
	}
	return e.reconcileChannel(ctx, e.registry.Get(choice))
}

// runAdvancedStep runs one iteration of the pick-or-finish loop.
func (e *Engine) runAdvancedStep(ctx context.Context) (bool, error) {
	opts := e.selectionOptions(false)

	choice, err := e.prompter.Select("Configure channels", opts, choiceFinish)
	if err != nil {
		return false, err
	}
	if choice == choiceFinish {
		return true, nil
	}
	if err := e.reconcileChannel(ctx, e.registry.Get(choice)); err != nil {
		return false, err
	}
	return false, nil
}

// selectionOptions derives the channel choice list from fresh statuses.
func (e *Engine) selectionOptions(quickstart bool) []prompt.Option {
	var opts []prompt.Option
	for _, a := range e.registry.All() {
		st := a.Status(e.cfg)
		label := st.Label
		if st.SelectionHint != "" {
			label = fmt.Sprintf("%s (%s)", st.Label, st.SelectionHint)
		}
		opts = append(opts, prompt.Option{Value: st.ID, Label: label})
	}
	if quickstart {
		opts = append(opts, prompt.Option{Value: choiceSkip, Label: "Skip for now"})
	} else {
		opts = append(opts, prompt.Option{Value: choiceFinish, Label: "Finish channel setup"})
	}
	return opts
}

// quickstartDefault picks the highest-scoring unconfigured channel, falling
// back to skip when everything is already configured.
func (e *Engine) quickstartDefault() string {
	type scored struct {
		id    string
		score int
	}
	var candidates []scored
	for _, a := range e.registry.All() {
		st := a.Status(e.cfg)
		if !st.Configured {
			candidates = append(candidates, scored{st.ID, st.QuickstartScore})
		}
	}
	if len(candidates) == 0 {
		return choiceSkip
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].id
}

// reconcileChannel drives one channel through its state machine:
// UNINSTALLED -> NOT_CONFIGURED -> CONFIGURED, then the configured-channel
// actions. Install and configure failures are isolated to the channel;
// cancellation propagates.
func (e *Engine) reconcileChannel(ctx context.Context, a Adapter) error {
	if a == nil {
		return errors.New("unknown channel selected")
	}

	if inst, ok := a.(Installer); ok && !inst.Installed(e.cfg) {
		installed, err := e.install(ctx, a, inst)
		if err != nil || !installed {
			return err
		}
	}

	st := a.Status(e.cfg)
	if !st.Configured {
		return e.configure(ctx, a, audit.ActionChannelConfigured)
	}
	return e.runConfiguredAction(ctx, a, st)
}

// install runs the plugin install step. Failure keeps the channel
// uninstalled and reports without aborting the run.
func (e *Engine) install(ctx context.Context, a Adapter, inst Installer) (bool, error) {
	proceed, err := e.prompter.Confirm(fmt.Sprintf("%s requires a gateway plugin. Install it now?", a.Label()), true)
	if err != nil {
		return false, err
	}
	if !proceed {
		return false, nil
	}

	next, err := inst.Install(ctx, e.cfg, e.prompter)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return false, err
		}
		e.logger.Warn("channel install failed", "channel", a.ID(), "error", err)
		e.prompter.Note(fmt.Sprintf("%s install failed", a.Label()), err.Error())
		return false, nil
	}
	if err := e.commit(ctx, next, audit.ActionChannelInstalled, a.ID(), nil); err != nil {
		return false, err
	}
	return true, nil
}

// configure runs the adapter's interactive configuration and commits.
func (e *Engine) configure(ctx context.Context, a Adapter, action audit.Action) error {
	next, accountID, err := a.Configure(ctx, e.cfg, e.prompter)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return err
		}
		e.logger.Warn("channel configuration failed", "channel", a.ID(), "error", err)
		e.prompter.Note(fmt.Sprintf("%s configuration failed", a.Label()), err.Error())
		return nil
	}

	var detail map[string]any
	if accountID != "" {
		detail = map[string]any{"account_id": accountID}
	}
	return e.commit(ctx, next, action, a.ID(), detail)
}

// runConfiguredAction asks what to do with an already-configured channel.
func (e *Engine) runConfiguredAction(ctx context.Context, a Adapter, st Status) error {
	opts := []prompt.Option{
		{Value: string(ActionUpdate), Label: "Update settings"},
		{Value: string(ActionDisable), Label: "Disable (keep settings)"},
	}
	if _, ok := a.(AccountDeleter); ok {
		opts = append(opts, prompt.Option{Value: string(ActionDelete), Label: "Delete"})
	}
	opts = append(opts, prompt.Option{Value: string(ActionSkip), Label: "Skip"})

	choice, err := e.prompter.Select(fmt.Sprintf("%s is configured", a.Label()), opts, string(ActionSkip))
	if err != nil {
		return err
	}

	switch Action(choice) {
	case ActionSkip:
		return nil

	case ActionUpdate:
		return e.configure(ctx, a, audit.ActionChannelUpdated)

	case ActionDisable:
		accountID, err := e.pickAccount(a, st, "Disable which account?")
		if err != nil {
			return err
		}
		next, err := a.Disable(e.cfg, accountID)
		if err != nil {
			return fmt.Errorf("disabling %s: %w", a.ID(), err)
		}
		var detail map[string]any
		if accountID != "" {
			detail = map[string]any{"account_id": accountID}
		}
		return e.commit(ctx, next, audit.ActionChannelDisabled, a.ID(), detail)

	case ActionDelete:
		deleter := a.(AccountDeleter)
		accountID, err := e.pickAccount(a, st, "Delete which account?")
		if err != nil {
			return err
		}
		next, err := deleter.DeleteAccount(e.cfg, accountID)
		if err != nil {
			return fmt.Errorf("deleting %s account: %w", a.ID(), err)
		}
		var detail map[string]any
		if accountID != "" {
			detail = map[string]any{"account_id": accountID}
		}
		return e.commit(ctx, next, audit.ActionChannelDeleted, a.ID(), detail)

	default:
		return fmt.Errorf("unknown channel action %q", choice)
	}
}

// pickAccount resolves which account an action applies to. Multi-account
// channels with more than one account require an explicit choice; a sole
// account is selected silently.
func (e *Engine) pickAccount(a Adapter, st Status, title string) (string, error) {
	switch len(st.AccountIDs) {
	case 0:
		return "", nil
	case 1:
		return st.AccountIDs[0], nil
	}

	opts := make([]prompt.Option, 0, len(st.AccountIDs))
	for _, id := range st.AccountIDs {
		opts = append(opts, prompt.Option{Value: id, Label: id})
	}
	return e.prompter.Select(title, opts, st.AccountIDs[0])
}

// commit replaces the engine's snapshot with next and persists it, skipping
// the write entirely when the encoded document is byte-identical to what is
// already on disk. Write failure is fatal; audit failure is not.
func (e *Engine) commit(ctx context.Context, next *config.Config, action audit.Action, channelID string, detail map[string]any) error {
	encoded, err := next.Encode()
	if err != nil {
		return err
	}
	if bytes.Equal(encoded, e.lastWritten) {
		e.cfg = next
		e.logger.Debug("document unchanged, skipping write", "channel", channelID, "action", action)
		return nil
	}

	if err := e.store.Write(next); err != nil {
		return fmt.Errorf("writing config after %s: %w", action, err)
	}
	e.cfg = next
	e.lastWritten = encoded

	if e.auditor != nil {
		entry := &audit.Entry{Action: action, Target: channelID, Detail: detail}
		if err := e.auditor.Append(ctx, entry); err != nil {
			e.logger.Warn("audit append failed", "action", action, "error", err)
		}
	}
	return nil
}
