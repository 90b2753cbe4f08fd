package repository

import (
	"context"
	"time"

	"astrochart/internal/domain/models"
)

// ChartArchive persists a summary row per computed chart for later querying.
type ChartArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, id string, chart *models.BirthChart) error
	Recent(ctx context.Context, chartType string, limit int) ([]*models.ChartComputedEvent, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher emits chart.computed events for downstream consumers.
type Publisher interface {
	PublishComputed(ctx context.Context, evt *models.ChartComputedEvent) error
	Close() error
}

// Metrics records service-level counters and latencies.
type Metrics interface {
	RecordChartComputed(chartType, frame string)
	RecordCacheLookup(result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// ArchiveRow is the shape stored per chart; kept close to the ClickHouse
// chart_log schema.
type ArchiveRow struct {
	ID         string
	ComputedAt time.Time
	ChartType  string
	Frame      string
	BirthTS    time.Time
	Latitude   float64
	Longitude  float64
	SunSign    string
	MoonSign   string
	Ascendant  float64
	Aspects    int
	Payload    string // full chart JSON
}
