// ABOUTME: Tests for the channel reconciliation engine and its state machine
// ABOUTME: Covers idempotence, account scoping, install isolation, cancellation

package channels

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-setup/internal/audit"
	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/prompt"
)

// memStore records every document write.
type memStore struct {
	writes []*config.Config
	err    error
}

func (m *memStore) Write(cfg *config.Config) error {
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, cfg.Clone())
	return nil
}

// memAudit records audit entries in memory.
type memAudit struct {
	entries []*audit.Entry
}

func (m *memAudit) Append(ctx context.Context, e *audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func newTestEngine(t *testing.T, script *prompt.Script, adapters ...Adapter) (*Engine, *memStore, *memAudit) {
	t.Helper()
	reg, err := NewRegistry(adapters...)
	require.NoError(t, err)
	store := &memStore{}
	auditor := &memAudit{}
	return NewEngine(reg, script, store, auditor), store, auditor
}

func TestQuickstart_ConfigureSlack(t *testing.T) {
	script := prompt.NewScript().
		PushSelect("slack").
		PushText("xapp-123").
		PushText("xoxb-456").
		PushText("general")

	e, store, auditor := newTestEngine(t, script, NewSlack(), NewTelegram())

	out, err := e.Run(context.Background(), config.Default(), true)
	require.NoError(t, err)

	require.Len(t, store.writes, 1)
	assert.True(t, out.Channels.Slack.Configured)
	assert.True(t, out.Channels.Slack.Enabled)
	assert.Equal(t, "xapp-123", out.Channels.Slack.AppToken)
	assert.Equal(t, []string{"general"}, out.Channels.Slack.AllowedChannels)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionChannelConfigured, auditor.entries[0].Action)
	assert.Equal(t, "slack", auditor.entries[0].Target)
}

func TestQuickstart_ExplicitSkipWritesNothing(t *testing.T) {
	script := prompt.NewScript().PushSelect("skip")

	e, store, _ := newTestEngine(t, script, NewSlack(), NewTelegram())

	out, err := e.Run(context.Background(), config.Default(), true)
	require.NoError(t, err)
	assert.Empty(t, store.writes)
	assert.False(t, out.Channels.Slack.Configured)

	// Quickstart is exactly one selection prompt.
	assert.Len(t, script.Transcript, 1)
}

func TestQuickstartDefault_RanksByScore(t *testing.T) {
	e, _, _ := newTestEngine(t, prompt.NewScript(), NewSlack(), NewTelegram(), NewMatrix())
	e.cfg = config.Default()

	// Telegram carries the top quickstart score while unconfigured.
	assert.Equal(t, "telegram", e.quickstartDefault())

	// Once telegram is configured the suggestion moves on.
	e.cfg.Channels.Telegram.Accounts = []config.TelegramAccount{{ID: "a", Enabled: true, BotToken: "1:x"}}
	assert.Equal(t, "slack", e.quickstartDefault())
}

func TestQuickstartDefault_AllConfiguredFallsBackToSkip(t *testing.T) {
	e, _, _ := newTestEngine(t, prompt.NewScript(), NewSlack())
	e.cfg = config.Default()
	e.cfg.Channels.Slack.Configured = true

	assert.Equal(t, choiceSkip, e.quickstartDefault())
}

func TestAdvanced_ConfigureThenFinish(t *testing.T) {
	script := prompt.NewScript().
		PushSelect("slack").
		PushText("xapp-123").
		PushText("xoxb-456").
		PushText("").
		PushSelect("finish")

	e, store, _ := newTestEngine(t, script, NewSlack(), NewTelegram())

	out, err := e.Run(context.Background(), config.Default(), false)
	require.NoError(t, err)
	require.Len(t, store.writes, 1)
	assert.True(t, out.Channels.Slack.Configured)
	assert.Equal(t, 0, script.Remaining())
}

func TestConfiguredSkip_IsByteIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Channels.Slack = config.SlackConfig{
		Enabled: true, Configured: true,
		AppToken: "xapp-1", BotToken: "xoxb-1",
	}
	before, err := cfg.Encode()
	require.NoError(t, err)

	script := prompt.NewScript().
		PushSelect("slack").
		PushSelect("skip").
		PushSelect("finish")

	e, store, _ := newTestEngine(t, script, NewSlack())

	out, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.Empty(t, store.writes, "skip must not write")

	after, err := out.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdate_UnchangedAnswersWriteNothing(t *testing.T) {
	cfg := config.Default()
	cfg.Channels.Slack = config.SlackConfig{
		Enabled: true, Configured: true,
		AppToken: "xapp-1", BotToken: "xoxb-1",
		AllowedChannels: []string{"general"},
	}

	// Re-enter configuration accepting every existing default.
	script := prompt.NewScript().
		PushSelect("slack").
		PushSelect("update").
		PushText("").  // keep app token
		PushText("").  // keep bot token
		PushText("").  // keep allowed channels
		PushSelect("finish")

	e, store, auditor := newTestEngine(t, script, NewSlack())

	_, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.Empty(t, store.writes, "unchanged update must not write")
	assert.Empty(t, auditor.entries)
}

func TestUpdate_ChangedAnswersWrite(t *testing.T) {
	cfg := config.Default()
	cfg.Channels.Slack = config.SlackConfig{
		Enabled: true, Configured: true,
		AppToken: "xapp-1", BotToken: "xoxb-1",
	}

	script := prompt.NewScript().
		PushSelect("slack").
		PushSelect("update").
		PushText("xapp-2").
		PushText("").
		PushText("").
		PushSelect("finish")

	e, store, auditor := newTestEngine(t, script, NewSlack())

	out, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	require.Len(t, store.writes, 1)
	assert.Equal(t, "xapp-2", out.Channels.Slack.AppToken)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionChannelUpdated, auditor.entries[0].Action)
}

func telegramConfigWith(accounts ...config.TelegramAccount) *config.Config {
	cfg := config.Default()
	cfg.Channels.Telegram.Accounts = accounts
	return cfg
}

func TestDisable_MultiAccountRequiresExplicitChoice(t *testing.T) {
	cfg := telegramConfigWith(
		config.TelegramAccount{ID: "acct-a", Enabled: true, BotToken: "1:x"},
		config.TelegramAccount{ID: "acct-b", Enabled: true, BotToken: "2:y"},
	)

	script := prompt.NewScript().
		PushSelect("telegram").
		PushSelect("disable").
		PushSelect("acct-b").
		PushSelect("finish")

	e, store, _ := newTestEngine(t, script, NewTelegram())

	out, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	require.Len(t, store.writes, 1)

	accounts := out.Channels.Telegram.Accounts
	assert.True(t, accounts[0].Enabled, "acct-a untouched")
	assert.False(t, accounts[1].Enabled, "acct-b disabled")
	assert.Equal(t, "2:y", accounts[1].BotToken, "settings retained")
}

func TestDisable_SoleAccountSelectedSilently(t *testing.T) {
	cfg := telegramConfigWith(
		config.TelegramAccount{ID: "acct-a", Enabled: true, BotToken: "1:x"},
	)

	script := prompt.NewScript().
		PushSelect("telegram").
		PushSelect("disable").
		PushSelect("finish")

	e, _, _ := newTestEngine(t, script, NewTelegram())

	out, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.False(t, out.Channels.Telegram.Accounts[0].Enabled)

	// channel select, action select, finish — no account prompt.
	assert.Len(t, script.Transcript, 3)
}

func TestDelete_LastAccountRevertsToNotConfigured(t *testing.T) {
	cfg := telegramConfigWith(
		config.TelegramAccount{ID: "acct-a", Enabled: true, BotToken: "1:x"},
	)

	adapter := NewTelegram()
	require.True(t, adapter.Status(cfg).Configured)

	script := prompt.NewScript().
		PushSelect("telegram").
		PushSelect("delete").
		PushSelect("finish")

	e, store, auditor := newTestEngine(t, script, adapter)

	out, err := e.Run(context.Background(), cfg, false)
	require.NoError(t, err)
	require.Len(t, store.writes, 1)

	st := adapter.Status(out)
	assert.False(t, st.Configured, "deleting the only account reverts to NOT_CONFIGURED")
	assert.Empty(t, st.AccountIDs)

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionChannelDeleted, auditor.entries[0].Action)
	assert.Equal(t, "acct-a", auditor.entries[0].Detail["account_id"])
}

func TestInstall_SuccessThenConfigure(t *testing.T) {
	installCalls := 0
	wa := NewWhatsApp(func(ctx context.Context, progress prompt.Progress) error {
		installCalls++
		return nil
	})

	script := prompt.NewScript().
		PushSelect("whatsapp").
		PushConfirm(true). // yes, install
		PushText("ws://localhost:8055")

	e, store, auditor := newTestEngine(t, script, wa)

	out, err := e.Run(context.Background(), config.Default(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, installCalls)

	// One write for the install, one for the configuration.
	require.Len(t, store.writes, 2)
	assert.True(t, out.Channels.WhatsApp.Installed)
	assert.True(t, out.Channels.WhatsApp.Configured)

	require.Len(t, auditor.entries, 2)
	assert.Equal(t, audit.ActionChannelInstalled, auditor.entries[0].Action)
	assert.Equal(t, audit.ActionChannelConfigured, auditor.entries[1].Action)
}

func TestInstall_FailureIsIsolated(t *testing.T) {
	wa := NewWhatsApp(func(ctx context.Context, progress prompt.Progress) error {
		return errors.New("download failed")
	})

	script := prompt.NewScript().
		PushSelect("whatsapp").
		PushConfirm(true).
		PushSelect("finish")

	e, store, _ := newTestEngine(t, script, wa, NewSlack())

	out, err := e.Run(context.Background(), config.Default(), false)
	require.NoError(t, err, "install failure must not abort the run")
	assert.Empty(t, store.writes)
	assert.False(t, out.Channels.WhatsApp.Installed, "failed install stays UNINSTALLED")
	require.NotEmpty(t, script.Notes)
	assert.Contains(t, script.Notes[0], "install failed")
}

func TestInstall_DeclinedLeavesChannelUntouched(t *testing.T) {
	wa := NewWhatsApp(func(ctx context.Context, progress prompt.Progress) error {
		t.Fatal("installer must not run when declined")
		return nil
	})

	script := prompt.NewScript().
		PushSelect("whatsapp").
		PushConfirm(false).
		PushSelect("finish")

	e, store, _ := newTestEngine(t, script, wa)

	_, err := e.Run(context.Background(), config.Default(), false)
	require.NoError(t, err)
	assert.Empty(t, store.writes)
}

func TestCancellation_PropagatesBeforeWrite(t *testing.T) {
	script := prompt.NewScript().
		PushSelect("slack").
		PushText("xapp-1").
		PushCancel() // abort at the bot token prompt

	e, store, _ := newTestEngine(t, script, NewSlack())

	_, err := e.Run(context.Background(), config.Default(), true)
	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Empty(t, store.writes, "cancellation must leave the document untouched")
}

func TestWriteFailure_IsFatal(t *testing.T) {
	script := prompt.NewScript().
		PushSelect("slack").
		PushText("xapp-1").
		PushText("xoxb-1").
		PushText("")

	reg, err := NewRegistry(NewSlack())
	require.NoError(t, err)
	store := &memStore{err: fmt.Errorf("disk full")}
	e := NewEngine(reg, script, store, nil)

	_, err = e.Run(context.Background(), config.Default(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAdvanced_PromptCountBounded(t *testing.T) {
	// Touching one channel must cost its own prompts plus one selection
	// each loop turn and the final finish — nothing more.
	script := prompt.NewScript().
		PushSelect("telegram").
		PushText("12345:token-abc").
		PushSelect("finish")

	e, _, _ := newTestEngine(t, script, NewSlack(), NewTelegram(), NewMatrix())

	_, err := e.Run(context.Background(), config.Default(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, script.Remaining())
	assert.Len(t, script.Transcript, 3)
}

func TestRegistry_DuplicateIDRejected(t *testing.T) {
	_, err := NewRegistry(NewSlack(), NewSlack())
	assert.Error(t, err)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	cfg := config.Default()
	script := prompt.NewScript().
		PushSelect("slack").
		PushText("xapp-1").
		PushText("xoxb-1").
		PushText("")

	e, _, _ := newTestEngine(t, script, NewSlack())

	_, err := e.Run(context.Background(), cfg, true)
	require.NoError(t, err)
	assert.False(t, cfg.Channels.Slack.Configured, "caller's config must stay untouched")
}
