package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"astrochart/internal/domain/models"
	drepo "astrochart/internal/domain/repository"
	domsvc "astrochart/internal/domain/service"
	pkgcache "astrochart/pkg/cache"
	"astrochart/pkg/logger"
	"astrochart/pkg/queue"
	"astrochart/pkg/util"
)

// ChartService is the front door for chart computation: request parsing,
// cache lookup, strategy dispatch, archival and event publication.
type ChartService struct {
	registry *Registry
	cache    pkgcache.Service
	archive  drepo.ChartArchive
	pub      drepo.Publisher
	metrics  drepo.Metrics
	log      *logger.Logger
	jobs     queue.QueueService
	cacheTTL time.Duration
	frame    models.Frame
}

type ChartServiceOption func(*ChartService)

func WithCacheTTL(ttl time.Duration) ChartServiceOption {
	return func(s *ChartService) { s.cacheTTL = ttl }
}

// WithDefaultFrame sets the frame used when a request leaves it blank.
func WithDefaultFrame(f models.Frame) ChartServiceOption {
	return func(s *ChartService) { s.frame = f }
}

// WithRefineQueue enables background refinement of approximate solar
// returns through the given job queue.
func WithRefineQueue(q queue.QueueService) ChartServiceOption {
	return func(s *ChartService) { s.jobs = q }
}

func NewChartService(
	registry *Registry,
	cache pkgcache.Service,
	archive drepo.ChartArchive,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts ...ChartServiceOption,
) *ChartService {
	s := &ChartService{
		registry: registry,
		cache:    cache,
		archive:  archive,
		pub:      pub,
		metrics:  metrics,
		log:      log,
		cacheTTL: 24 * time.Hour,
		frame:    models.FrameWestern,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Types lists the chart types the registry can derive.
func (s *ChartService) Types() []string { return s.registry.Types() }

// Describe exposes the per-type required inputs for discovery endpoints.
func (s *ChartService) Describe() map[string][]domsvc.ParamKey { return s.registry.Describe() }

// Compute resolves a chart request end to end. Deterministic inputs make the
// cache safe: a hit is byte-equivalent to a fresh computation.
func (s *ChartService) Compute(ctx context.Context, req *models.ChartRequest) (*models.ChartResponse, error) {
	start := time.Now()

	params, err := s.buildParams(req)
	if err != nil {
		s.metrics.RecordError("parse")
		return nil, err
	}

	key := chartCacheKey(req.Type, params)
	if s.cache != nil {
		var cached models.BirthChart
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheLookup("hit")
			return &models.ChartResponse{
				Chart:          cached,
				OptionsIgnored: req.Options.IgnoredOptions(),
				Cached:         true,
			}, nil
		} else if !errors.Is(err, pkgcache.ErrCacheMiss) {
			s.log.Warn("chart cache read failed", logger.String("key", key), logger.Error(err))
		}
		s.metrics.RecordCacheLookup("miss")
	}

	chart, err := s.registry.Calculate(ctx, req.Type, params)
	if err != nil {
		s.metrics.RecordError("calculate")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, chart, s.cacheTTL); err != nil {
			s.log.Warn("chart cache write failed", logger.String("key", key), logger.Error(err))
		}
	}

	id := uuid.NewString()
	if s.archive != nil {
		if err := s.archive.Store(ctx, id, &chart); err != nil {
			s.metrics.RecordError("archive")
			s.log.Error("chart archive failed", logger.String("id", id), logger.Error(err))
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishComputed(ctx, ComputedEvent(id, &chart)); err != nil {
			s.metrics.RecordError("publish")
			s.log.Error("chart event publish failed", logger.String("id", id), logger.Error(err))
		}
	}

	if req.Type == models.ChartSolarReturn && s.jobs != nil {
		payload := &models.SolarReturnRefinePayload{
			ID:    id,
			Birth: req.Birth,
			Year:  params.Target.Year(),
			Frame: string(params.Frame),
		}
		if err := s.jobs.PublishMessage(ctx, SolarReturnRefineType, payload); err != nil {
			s.log.Warn("solar return refine enqueue failed", logger.String("id", id), logger.Error(err))
		}
	}

	s.metrics.RecordChartComputed(chart.ChartType, string(chart.Frame))
	s.metrics.RecordLatency("compute", time.Since(start).Seconds())

	return &models.ChartResponse{
		Chart:          chart,
		OptionsIgnored: req.Options.IgnoredOptions(),
	}, nil
}

// Recent returns archived chart summaries, newest first.
func (s *ChartService) Recent(ctx context.Context, chartType string, limit int) ([]*models.ChartComputedEvent, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.Recent(ctx, chartType, limit)
}

func (s *ChartService) buildParams(req *models.ChartRequest) (domsvc.ChartParams, error) {
	if req.Options != nil && req.Options.HouseSystem != "" && req.Options.HouseSystem != "equal" {
		return domsvc.ChartParams{}, fmt.Errorf("house system %q: %w", req.Options.HouseSystem, models.ErrHouseSystem)
	}

	natal, err := birthFromInput(req.Birth)
	if err != nil {
		return domsvc.ChartParams{}, fmt.Errorf("birth: %w", err)
	}

	p := domsvc.ChartParams{
		Natal:  natal,
		Frame:  s.frame,
		Target: time.Now().UTC(),
	}
	if req.Frame != "" {
		p.Frame = models.Frame(req.Frame)
	}
	if req.Partner != nil {
		partner, err := birthFromInput(req.Partner)
		if err != nil {
			return domsvc.ChartParams{}, fmt.Errorf("partner: %w", err)
		}
		p.Partner = partner
	}
	if req.TargetDate != "" {
		t, ok := util.ParseTime(req.TargetDate)
		if !ok {
			return domsvc.ChartParams{}, fmt.Errorf("target_date %q is not a valid timestamp", req.TargetDate)
		}
		p.Target = t.UTC()
	}
	return p, nil
}

func birthFromInput(in *models.BirthInput) (*models.BirthData, error) {
	if in == nil {
		return nil, fmt.Errorf("birth data is required")
	}
	t, ok := util.ParseTime(in.Instant)
	if !ok {
		return nil, fmt.Errorf("instant %q is not a valid timestamp", in.Instant)
	}
	b := &models.BirthData{
		Instant:   t.UTC(),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Timezone:  in.Timezone,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// chartCacheKey is deterministic per (type, frame, instants, locations);
// transit, progressed and solar-return keys fold in the target date so a
// moving "now" never aliases an older chart.
func chartCacheKey(chartType string, p domsvc.ChartParams) string {
	key := fmt.Sprintf("chart:%s:%s:%d:%.4f:%.4f",
		chartType, p.Frame, p.Natal.Instant.UnixMilli(), p.Natal.Latitude, p.Natal.Longitude)
	if p.Partner != nil {
		key += fmt.Sprintf(":%d:%.4f:%.4f",
			p.Partner.Instant.UnixMilli(), p.Partner.Latitude, p.Partner.Longitude)
	}
	switch chartType {
	case models.ChartTransit, models.ChartProgressed:
		key += fmt.Sprintf(":%d", p.Target.Truncate(time.Minute).UnixMilli())
	case models.ChartSolarReturn:
		key += fmt.Sprintf(":%d", p.Target.Year())
	}
	return key
}

// ComputedEvent builds the chart.computed payload from an assembled chart.
func ComputedEvent(id string, chart *models.BirthChart) *models.ChartComputedEvent {
	evt := &models.ChartComputedEvent{
		ID:          id,
		ChartType:   chart.ChartType,
		Frame:       chart.Frame,
		BirthTS:     chart.BirthData.Instant,
		Latitude:    chart.BirthData.Latitude,
		Longitude:   chart.BirthData.Longitude,
		Ascendant:   chart.Ascendant,
		AspectCount: len(chart.Aspects),
		ComputedAt:  time.Now().UTC(),
	}
	for _, p := range chart.Planets {
		switch p.Name {
		case "Sun", "Sun_p1":
			evt.SunSign = p.Sign
		case "Moon", "Moon_p1":
			evt.MoonSign = p.Sign
		}
	}
	return evt
}
