package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"astrochart/internal/domain/models"
	"astrochart/internal/domain/repository"
	pkgkafka "astrochart/pkg/kafka"
)

// ClickHouseChartArchive implements ChartArchive over the chart_log table.
type ClickHouseChartArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseChartArchive creates ClickHouse-backed chart archival.
func NewClickHouseChartArchive(db *sql.DB, table string) repository.ChartArchive {
	return &ClickHouseChartArchive{db: db, table: table}
}

func (a *ClickHouseChartArchive) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (a *ClickHouseChartArchive) Store(ctx context.Context, id string, chart *models.BirthChart) error {
	if chart == nil {
		return fmt.Errorf("chart is nil")
	}

	payload, err := json.Marshal(chart)
	if err != nil {
		return fmt.Errorf("marshal chart: %w", err)
	}

	var sunSign, moonSign string
	for _, p := range chart.Planets {
		switch p.Name {
		case "Sun", "Sun_p1":
			sunSign = p.Sign
		case "Moon", "Moon_p1":
			moonSign = p.Sign
		}
	}

	q := fmt.Sprintf("INSERT INTO %s (id, computed_at, chart_type, frame, birth_ts, latitude, longitude, sun_sign, moon_sign, ascendant, aspect_count, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", a.table)
	_, err = a.db.ExecContext(ctx, q,
		id,
		time.Now().UTC(),
		chart.ChartType,
		string(chart.Frame),
		chart.BirthData.Instant,
		chart.BirthData.Latitude,
		chart.BirthData.Longitude,
		sunSign,
		moonSign,
		chart.Ascendant,
		uint32(len(chart.Aspects)),
		string(payload),
	)
	return err
}

func (a *ClickHouseChartArchive) Recent(ctx context.Context, chartType string, limit int) ([]*models.ChartComputedEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	q := fmt.Sprintf("SELECT id, computed_at, chart_type, frame, birth_ts, latitude, longitude, sun_sign, moon_sign, ascendant, aspect_count FROM %s", a.table)
	args := make([]interface{}, 0, 2)
	if chartType != "" {
		q += " WHERE chart_type = ?"
		args = append(args, chartType)
	}
	q += " ORDER BY computed_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ChartComputedEvent
	for rows.Next() {
		var evt models.ChartComputedEvent
		var frame string
		var aspects uint32
		if err := rows.Scan(&evt.ID, &evt.ComputedAt, &evt.ChartType, &frame,
			&evt.BirthTS, &evt.Latitude, &evt.Longitude,
			&evt.SunSign, &evt.MoonSign, &evt.Ascendant, &aspects); err != nil {
			return nil, err
		}
		evt.Frame = models.Frame(frame)
		evt.AspectCount = int(aspects)
		out = append(out, &evt)
	}
	return out, rows.Err()
}

func (a *ClickHouseChartArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseChartArchive) Close() error {
	return nil // Managed by pkg
}

// KafkaChartPublisher implements Publisher for the chart.computed topic.
type KafkaChartPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaChartPublisher creates a Kafka-backed chart event publisher.
func NewKafkaChartPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaChartPublisher{producer: producer, topic: topic}
}

func (p *KafkaChartPublisher) PublishComputed(ctx context.Context, evt *models.ChartComputedEvent) error {
	if evt == nil {
		return fmt.Errorf("event is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(evt.ID), evt)
}

func (p *KafkaChartPublisher) Close() error {
	return p.producer.Close()
}
