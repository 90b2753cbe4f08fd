package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"astrochart/internal/domain/models"
	domsvc "astrochart/internal/domain/service"
	"astrochart/internal/services/astro"
	"astrochart/pkg/logger"
	"astrochart/pkg/queue"
)

const SolarReturnRefineType = "solar_return.refine"

// SolarReturnRefineJob replaces an approximate solar-return chart with the
// bisection-solved one in the background. The synchronous path serves the
// month/day approximation immediately; this job overwrites the cache entry
// so later reads get the exact return instant.
type SolarReturnRefineJob struct {
	asm    *astro.Assembler
	charts *ChartService
	log    *logger.Logger
}

func NewSolarReturnRefineJob(asm *astro.Assembler, charts *ChartService, log *logger.Logger) *SolarReturnRefineJob {
	return &SolarReturnRefineJob{asm: asm, charts: charts, log: log}
}

func (j *SolarReturnRefineJob) Name() string { return "solar-return-refine" }
func (j *SolarReturnRefineJob) Type() string { return SolarReturnRefineType }

func (j *SolarReturnRefineJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[models.SolarReturnRefinePayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}

	natal, err := birthFromInput(p.Birth)
	if err != nil {
		return fmt.Errorf("birth: %w", err)
	}
	frame := models.FrameWestern
	if p.Frame != "" {
		frame = models.Frame(p.Frame)
	}

	exact := astro.SolarReturnInstant(natal.Instant, p.Year)
	chart, err := j.asm.Assemble(models.BirthData{
		Instant:   exact,
		Latitude:  natal.Latitude,
		Longitude: natal.Longitude,
		Timezone:  natal.Timezone,
	}, frame)
	if err != nil {
		return fmt.Errorf("assemble refined return: %w", err)
	}
	chart.ChartType = models.ChartSolarReturn

	params := domsvc.ChartParams{
		Natal:  natal,
		Frame:  frame,
		Target: time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	key := chartCacheKey(models.ChartSolarReturn, params)

	if j.charts.cache != nil {
		if err := j.charts.cache.Set(ctx, key, chart, j.charts.cacheTTL); err != nil {
			return fmt.Errorf("cache refined return: %w", err)
		}
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	if j.charts.archive != nil {
		if err := j.charts.archive.Store(ctx, id, &chart); err != nil {
			j.log.Error("refined return archive failed", logger.String("id", id), logger.Error(err))
		}
	}
	if j.charts.pub != nil {
		if err := j.charts.pub.PublishComputed(ctx, ComputedEvent(id, &chart)); err != nil {
			j.log.Error("refined return publish failed", logger.String("id", id), logger.Error(err))
		}
	}

	j.log.Info("solar return refined",
		logger.String("id", id),
		logger.Int("year", p.Year),
		logger.String("exact", exact.Format(time.RFC3339)))
	return nil
}

var _ queue.Job = (*SolarReturnRefineJob)(nil)
