// ABOUTME: Tests for the setup audit log
// ABOUTME: Covers schema bootstrap, append, ordering, and detail round-trip

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "setup-audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAppendAndRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, &Entry{
		Action: ActionGatewayConfigured,
		Target: "gateway",
		Detail: map[string]any{"flow": "quickstart"},
	}))
	require.NoError(t, l.Append(ctx, &Entry{
		Action:    ActionChannelConfigured,
		Target:    "slack",
		Timestamp: time.Now().UTC().Add(time.Second),
	}))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, ActionChannelConfigured, entries[0].Action)
	assert.Equal(t, "slack", entries[0].Target)
	assert.Equal(t, ActionGatewayConfigured, entries[1].Action)
	assert.Equal(t, "quickstart", entries[1].Detail["flow"])
}

func TestAppend_GeneratesIDAndTimestamp(t *testing.T) {
	l := openTestLog(t)

	e := &Entry{Action: ActionChannelDeleted, Target: "telegram"}
	require.NoError(t, l.Append(context.Background(), e))

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestRecent_LimitApplied(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(ctx, &Entry{
			Action:    ActionChannelUpdated,
			Target:    "matrix",
			Timestamp: base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	entries, err := l.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
