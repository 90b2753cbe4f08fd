package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
	"astrochart/internal/services/astro"
	pkgcache "astrochart/pkg/cache"
	"astrochart/pkg/logger"
)

// jsonCache is an in-memory cache.Service that round-trips values through
// JSON, matching the Redis-backed implementation's serialization behavior.
type jsonCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newJSONCache() *jsonCache {
	return &jsonCache{data: make(map[string][]byte)}
}

func (c *jsonCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *jsonCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return pkgcache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *jsonCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *jsonCache) DeleteByPattern(context.Context, string) error { return nil }
func (c *jsonCache) Exists(context.Context, ...string) (bool, error) {
	return false, nil
}
func (c *jsonCache) Increment(context.Context, string) (int64, error) { return 0, nil }
func (c *jsonCache) Expire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}
func (c *jsonCache) MSet(context.Context, map[string]interface{}, time.Duration) error { return nil }
func (c *jsonCache) MGet(context.Context, ...string) (map[string]string, error) {
	return nil, nil
}
func (c *jsonCache) TryLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
func (c *jsonCache) Unlock(context.Context, string) error { return nil }

type stubMetrics struct {
	mu       sync.Mutex
	computed int
	hits     int
	misses   int
	errors   map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{errors: make(map[string]int)}
}

func (m *stubMetrics) RecordChartComputed(string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computed++
}

func (m *stubMetrics) RecordCacheLookup(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == "hit" {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *stubMetrics) RecordLatency(string, float64) {}

type stubArchive struct {
	mu     sync.Mutex
	stored []string
}

func (a *stubArchive) Init(context.Context) error { return nil }
func (a *stubArchive) Store(_ context.Context, id string, _ *models.BirthChart) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stored = append(a.stored, id)
	return nil
}
func (a *stubArchive) Recent(context.Context, string, int) ([]*models.ChartComputedEvent, error) {
	return nil, nil
}
func (a *stubArchive) Health(context.Context) error { return nil }
func (a *stubArchive) Close() error                 { return nil }

type stubPublisher struct {
	mu     sync.Mutex
	events []*models.ChartComputedEvent
}

func (p *stubPublisher) PublishComputed(_ context.Context, evt *models.ChartComputedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}
func (p *stubPublisher) Close() error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func newTestService(t *testing.T) (*ChartService, *stubMetrics, *stubArchive, *stubPublisher) {
	t.Helper()
	metrics := newStubMetrics()
	archive := &stubArchive{}
	pub := &stubPublisher{}
	svc := NewChartService(
		testRegistry(),
		newJSONCache(),
		archive,
		pub,
		metrics,
		testLogger(t),
	)
	return svc, metrics, archive, pub
}

func natalRequest() *models.ChartRequest {
	return &models.ChartRequest{
		Type:  models.ChartNatal,
		Frame: "western",
		Birth: &models.BirthInput{
			Instant:   "1974-09-16T14:14:00Z",
			Latitude:  44.0521,
			Longitude: -123.0868,
		},
	}
}

func TestComputeNatal(t *testing.T) {
	svc, metrics, archive, pub := newTestService(t)

	resp, err := svc.Compute(context.Background(), natalRequest())
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Len(t, resp.Chart.Planets, 13)
	assert.Equal(t, 1, metrics.computed)
	assert.Len(t, archive.stored, 1)
	require.Len(t, pub.events, 1)

	evt := pub.events[0]
	assert.Equal(t, models.ChartNatal, evt.ChartType)
	assert.Equal(t, "Virgo", evt.SunSign)
	assert.NotEmpty(t, evt.MoonSign)
	assert.Equal(t, len(resp.Chart.Aspects), evt.AspectCount)
}

func TestComputeCacheHit(t *testing.T) {
	svc, metrics, archive, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Compute(ctx, natalRequest())
	require.NoError(t, err)
	second, err := svc.Compute(ctx, natalRequest())
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Chart.Ascendant, second.Chart.Ascendant)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	// the cached path never re-archives
	assert.Len(t, archive.stored, 1)
}

func TestComputeRejectsBadInstant(t *testing.T) {
	svc, metrics, _, _ := newTestService(t)

	req := natalRequest()
	req.Birth.Instant = "yesterday-ish"
	_, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1, metrics.errors["parse"])
}

func TestComputeRejectsOutOfRange(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := natalRequest()
	req.Birth.Latitude = 95
	_, err := svc.Compute(context.Background(), req)
	require.ErrorIs(t, err, models.ErrLatitudeRange)
}

func TestComputeRejectsUnsupportedHouseSystem(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := natalRequest()
	req.Options = &models.ChartOptions{HouseSystem: "placidus"}
	_, err := svc.Compute(context.Background(), req)
	require.ErrorIs(t, err, models.ErrHouseSystem)
}

func TestComputeSynastryRequiresPartner(t *testing.T) {
	svc, metrics, _, _ := newTestService(t)

	req := natalRequest()
	req.Type = models.ChartSynastry
	_, err := svc.Compute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partner")
	assert.Equal(t, 1, metrics.errors["calculate"])
}

func TestComputeIgnoredOptionsEchoed(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := natalRequest()
	req.Options = &models.ChartOptions{
		IncludeNodes: true,
		AspectOrbs:   map[string]float64{"Conjunction": 10},
	}
	resp, err := svc.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aspect_orbs", "include_nodes"}, resp.OptionsIgnored)
}

func TestChartCacheKeyDistinguishesInputs(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	base, err := svc.buildParams(natalRequest())
	require.NoError(t, err)

	other := natalRequest()
	other.Birth.Latitude = 10
	moved, err := svc.buildParams(other)
	require.NoError(t, err)

	assert.NotEqual(t,
		chartCacheKey(models.ChartNatal, base),
		chartCacheKey(models.ChartNatal, moved))
	assert.NotEqual(t,
		chartCacheKey(models.ChartNatal, base),
		chartCacheKey(models.ChartProgressed, base))
}

func TestSolarReturnRefineJob(t *testing.T) {
	svc, _, archive, pub := newTestService(t)
	asm := astro.NewAssembler(astro.NewEngine())
	job := NewSolarReturnRefineJob(asm, svc, testLogger(t))

	payload := map[string]interface{}{
		"id": "sr-1",
		"birth": map[string]interface{}{
			"instant":   "1974-09-16T14:14:00Z",
			"latitude":  44.0521,
			"longitude": -123.0868,
		},
		"year": 2024,
	}
	require.NoError(t, job.Handle(context.Background(), payload))

	assert.Contains(t, archive.stored, "sr-1")
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.ChartSolarReturn, pub.events[0].ChartType)
	assert.Equal(t, 2024, pub.events[0].BirthTS.Year())
}
