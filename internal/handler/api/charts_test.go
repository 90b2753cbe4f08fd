package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/services/astro"
	"astrochart/internal/usecase"
	"astrochart/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordChartComputed(chartType, frame string) {}
func (noopMetrics) RecordCacheLookup(result string)             {}
func (noopMetrics) RecordError(kind string)                     {}
func (noopMetrics) RecordLatency(op string, seconds float64)    {}

func newTestHandler(t *testing.T) (*ChartsHandler, *echo.Echo) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	reg := usecase.NewDefaultRegistry(astro.NewAssembler(astro.NewEngine()))
	svc := usecase.NewChartService(reg, nil, nil, nil, noopMetrics{}, log)

	h := NewChartsHandler(svc, nil, log)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// envelopeStatus extracts the logical status from the APIResponse body;
// the transport status is always 200.
func envelopeStatus(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Status
}

func TestComputeEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/charts", `{
		"type": "natal",
		"birth": {"instant": "1974-09-16T14:14:00Z", "latitude": 44.0521, "longitude": -123.0868}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Status int `json:"status"`
		Data   struct {
			Chart struct {
				ChartType string            `json:"chart_type"`
				Planets   []json.RawMessage `json:"planets"`
				Houses    []json.RawMessage `json:"houses"`
			} `json:"chart"`
			Cached bool `json:"cached"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusOK, envelope.Status)
	assert.Equal(t, "natal", envelope.Data.Chart.ChartType)
	assert.Len(t, envelope.Data.Chart.Planets, 13)
	assert.Len(t, envelope.Data.Chart.Houses, 12)
	assert.False(t, envelope.Data.Cached)
}

func TestComputeEndpointValidation(t *testing.T) {
	_, e := newTestHandler(t)

	// birth is required
	rec := doJSON(e, http.MethodPost, "/api/charts", `{"type": "natal"}`)
	assert.Equal(t, http.StatusBadRequest, envelopeStatus(t, rec))

	// unknown type rejected by the oneof tag
	rec = doJSON(e, http.MethodPost, "/api/charts", `{
		"type": "draconic",
		"birth": {"instant": "1974-09-16T14:14:00Z", "latitude": 44.0521, "longitude": -123.0868}
	}`)
	assert.Equal(t, http.StatusBadRequest, envelopeStatus(t, rec))

	// latitude outside [-90, 90]
	rec = doJSON(e, http.MethodPost, "/api/charts", `{
		"type": "natal",
		"birth": {"instant": "1974-09-16T14:14:00Z", "latitude": 95, "longitude": 0}
	}`)
	assert.Equal(t, http.StatusBadRequest, envelopeStatus(t, rec))
}

func TestComputeEndpointUnsupportedHouseSystem(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/charts", `{
		"type": "natal",
		"birth": {"instant": "1974-09-16T14:14:00Z", "latitude": 44.0521, "longitude": -123.0868},
		"options": {"house_system": "placidus"}
	}`)
	assert.Equal(t, http.StatusBadRequest, envelopeStatus(t, rec))
	assert.Contains(t, rec.Body.String(), "equal house system")
}

func TestTypesEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doJSON(e, http.MethodGet, "/api/charts/types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Types    []string            `json:"types"`
			Requires map[string][]string `json:"requires"`
			Frames   []string            `json:"frames"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.ElementsMatch(t, []string{"natal", "transit", "progressed", "synastry", "composite", "solar-return"}, envelope.Data.Types)
	assert.ElementsMatch(t, []string{"natal", "partner"}, envelope.Data.Requires["synastry"])
	assert.Contains(t, envelope.Data.Frames, "western")
}

func TestTransitStreamDisabled(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doJSON(e, http.MethodGet, "/api/transits/stream?latitude=44.05&longitude=-123.09", "")
	assert.Equal(t, http.StatusServiceUnavailable, envelopeStatus(t, rec))
}
