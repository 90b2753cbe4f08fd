package models

import "time"

// ChartComputeRequest arrives on the chart.requests Kafka topic for batch
// precomputation. Mirrors ChartRequest but carries a caller-supplied ID so
// downstream consumers can correlate the computed event.
type ChartComputeRequest struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Frame      string      `json:"frame,omitempty"`
	Birth      *BirthInput `json:"birth"`
	Partner    *BirthInput `json:"partner,omitempty"`
	TargetDate string      `json:"target_date,omitempty"`
}

// ChartComputedEvent is published on the chart.computed topic after a chart
// has been assembled and archived.
type ChartComputedEvent struct {
	ID          string    `json:"id"`
	ChartType   string    `json:"chart_type"`
	Frame       Frame     `json:"frame"`
	BirthTS     time.Time `json:"birth_ts"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SunSign     string    `json:"sun_sign"`
	MoonSign    string    `json:"moon_sign"`
	Ascendant   float64   `json:"ascendant"`
	AspectCount int       `json:"aspect_count"`
	ComputedAt  time.Time `json:"computed_at"`
}

// SolarReturnRefinePayload is the queue payload for the background
// bisection refinement of an approximate solar return.
type SolarReturnRefinePayload struct {
	ID    string      `json:"id"`
	Birth *BirthInput `json:"birth"`
	Year  int         `json:"year"`
	Frame string      `json:"frame,omitempty"`
}
