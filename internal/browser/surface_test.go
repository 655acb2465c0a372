package browser

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The unattached surface must degrade, never panic: snapshots are empty
// evidence, input and trigger report unavailability.

func TestUnattachedSnapshotIsEmptyEvidence(t *testing.T) {
	s := New(DefaultConfig(), zerolog.Nop())
	snap := s.Snapshot(context.Background())
	assert.True(t, snap.Empty())
}

func TestUnattachedInputOperationsFail(t *testing.T) {
	s := New(DefaultConfig(), zerolog.Nop())
	ctx := context.Background()

	_, err := s.ReadText(ctx)
	require.ErrorIs(t, err, errUnattached)
	require.ErrorIs(t, s.WriteText(ctx, "x"), errUnattached)
	require.ErrorIs(t, s.Focus(ctx), errUnattached)
	require.ErrorIs(t, s.Trigger(ctx), errUnattached)
}

func TestUnattachedSurfaceState(t *testing.T) {
	s := New(DefaultConfig(), zerolog.Nop())
	assert.False(t, s.Attached())
	assert.Empty(t, s.PageURL())
	assert.NoError(t, s.Close())
}

func TestDefaultConfigIntervals(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, DefaultConfig().PollInterval(), cfg.PollInterval())
	assert.NotZero(t, cfg.NavigationTimeout())

	cfg.PollMs = 50
	assert.Equal(t, int64(50), cfg.PollInterval().Milliseconds())
}
