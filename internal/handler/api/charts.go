package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"astrochart/internal/domain/models"
	"astrochart/internal/service/stream"
	"astrochart/internal/usecase"
	pkghttp "astrochart/pkg/http"
	applogger "astrochart/pkg/logger"
)

// ChartsHandler exposes the chart API over Echo.
type ChartsHandler struct {
	charts *usecase.ChartService
	hub    *stream.Hub
	l      *applogger.Logger
	health func(ctx context.Context) error
}

func NewChartsHandler(charts *usecase.ChartService, hub *stream.Hub, l *applogger.Logger) *ChartsHandler {
	return &ChartsHandler{charts: charts, hub: hub, l: l}
}

// SetHealthCheck wires a dependency probe into /healthz.
func (h *ChartsHandler) SetHealthCheck(fn func(ctx context.Context) error) { h.health = fn }

// RegisterRoutes registers chart endpoints.
func (h *ChartsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/charts", h.Compute)
	g.GET("/charts/types", h.Types)
	g.GET("/charts/recent", h.Recent)
	g.GET("/transits/stream", h.TransitStream)

	e.GET("/healthz", h.Healthz)
}

// Compute derives one chart from a request body.
func (h *ChartsHandler) Compute(c echo.Context) error {
	req := new(models.ChartRequest)
	if errs := pkghttp.ReadAndValidateRequest(c, req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	resp, err := h.charts.Compute(c.Request().Context(), req)
	if err != nil {
		return h.chartError(c, err)
	}
	return pkghttp.SuccessResponse(c, resp)
}

// Types lists the supported chart type tags.
func (h *ChartsHandler) Types(c echo.Context) error {
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"types":    h.charts.Types(),
		"requires": h.charts.Describe(),
		"frames":   []models.Frame{models.FrameWestern, models.FrameVedic, models.FrameHumanDesign},
	})
}

// Recent returns archived chart summaries.
func (h *ChartsHandler) Recent(c echo.Context) error {
	req := new(models.RecentChartsRequest)
	if errs := pkghttp.ReadAndValidateRequest(c, req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	rows, err := h.charts.Recent(c.Request().Context(), req.Type, req.Limit)
	if err != nil {
		h.l.Error("recent charts query failed", applogger.Error(err))
		return pkghttp.DataResponse(c, http.StatusInternalServerError,
			pkghttp.InternalError("archive query failed"))
	}
	return pkghttp.ListResponse(c, rows, int64(len(rows)))
}

// TransitStream upgrades the request to a live transit subscription.
func (h *ChartsHandler) TransitStream(c echo.Context) error {
	if h.hub == nil {
		return pkghttp.DataResponse(c, http.StatusServiceUnavailable,
			pkghttp.NewAppError("ERR_STREAM_DISABLED", "", "transit streaming is not enabled", http.StatusServiceUnavailable))
	}

	req := new(models.TransitStreamRequest)
	if errs := pkghttp.ReadAndValidateRequest(c, req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	if err := h.hub.Serve(c.Response(), c.Request(), req); err != nil {
		h.l.Warn("transit stream subscribe failed", applogger.Error(err))
		return pkghttp.DataResponse(c, http.StatusTooManyRequests,
			pkghttp.NewAppError("ERR_RATE_LIMITED", "", err.Error(), http.StatusTooManyRequests))
	}
	return nil
}

// Healthz reports process and dependency health.
func (h *ChartsHandler) Healthz(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			status["status"] = "degraded"
			status["detail"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, status)
		}
	}
	return c.JSON(http.StatusOK, status)
}

func (h *ChartsHandler) chartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInstantRequired),
		errors.Is(err, models.ErrLatitudeRange),
		errors.Is(err, models.ErrLongitudeRange),
		errors.Is(err, models.ErrHouseSystem):
		return pkghttp.BadRequestResponse(c, pkghttp.BadRequestError(err.Error()))
	case strings.Contains(err.Error(), "unknown chart type"),
		strings.Contains(err.Error(), "requires missing input"),
		strings.Contains(err.Error(), "not a valid timestamp"):
		return pkghttp.BadRequestResponse(c, pkghttp.BadRequestError(err.Error()))
	default:
		h.l.Error("chart computation failed", applogger.Error(err))
		return pkghttp.DataResponse(c, http.StatusInternalServerError,
			pkghttp.InternalError("chart computation failed"))
	}
}

var _ pkghttp.Handler = (*ChartsHandler)(nil)
