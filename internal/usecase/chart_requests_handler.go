package usecase

import (
	"context"
	"encoding/json"
	"time"

	"astrochart/internal/domain/models"
	drepo "astrochart/internal/domain/repository"
	pkgkafka "astrochart/pkg/kafka"
	"astrochart/pkg/logger"
)

// ChartRequestsHandler consumes chart.requests messages and precomputes the
// requested charts through the same pipeline as the HTTP path, so cache and
// archive stay consistent regardless of entry point.
type ChartRequestsHandler struct {
	topic   string
	charts  *ChartService
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewChartRequestsHandler(topic string, charts *ChartService, metrics drepo.Metrics, log *logger.Logger) *ChartRequestsHandler {
	return &ChartRequestsHandler{topic: topic, charts: charts, metrics: metrics, log: log}
}

func (h *ChartRequestsHandler) Topic() string { return h.topic }

func (h *ChartRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ChartComputeRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	resp, err := h.charts.Compute(ctx, &models.ChartRequest{
		Type:       req.Type,
		Frame:      req.Frame,
		Birth:      req.Birth,
		Partner:    req.Partner,
		TargetDate: req.TargetDate,
	})
	h.metrics.RecordLatency("precompute", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_compute")
		return err
	}

	h.log.Debug("chart precomputed",
		logger.String("id", req.ID),
		logger.String("type", resp.Chart.ChartType),
		logger.Bool("cached", resp.Cached))
	return nil
}

var _ pkgkafka.MessageHandler = (*ChartRequestsHandler)(nil)
