package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
	"astrochart/internal/service/ratelimit"
	"astrochart/internal/services/astro"
	"astrochart/pkg/logger"
)

func newTestHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewHub(astro.NewEngine(), ratelimit.New(), log, opts...)
}

func TestHubDefaults(t *testing.T) {
	h := newTestHub(t)
	assert.Equal(t, time.Minute, h.interval)
	assert.Equal(t, 30*time.Second, h.pingInterval)
	assert.NotNil(t, h.snaps)
}

func TestHubOptions(t *testing.T) {
	h := newTestHub(t,
		WithInterval(10*time.Second),
		WithPingInterval(45*time.Second),
	)
	assert.Equal(t, 10*time.Second, h.interval)
	assert.Equal(t, 45*time.Second, h.pingInterval)
}

func TestFramePlanetsSnapshotReuse(t *testing.T) {
	h := newTestHub(t)
	now := time.Date(2024, 6, 1, 12, 0, 30, 0, time.UTC)

	first, err := h.framePlanets(now, models.FrameWestern)
	require.NoError(t, err)
	require.Len(t, first, 13)

	// second call in the same interval bucket serves the cached snapshot
	second, err := h.framePlanets(now.Add(20*time.Second), models.FrameWestern)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
