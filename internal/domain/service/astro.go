package service

import (
	"context"
	"time"

	"astrochart/internal/domain/models"
)

// Ephemeris yields frame-adjusted body positions for an instant.
// Implementations are pure functions of their inputs and safe for
// concurrent use.
type Ephemeris interface {
	Positions(instant time.Time, frame models.Frame) []models.PlanetPosition
}

// HouseSystem computes the 12 house cusps for an instant and location.
type HouseSystem interface {
	Houses(instant time.Time, latitude, longitude float64) []models.House
	AssignHouse(longitude float64, houses []models.House) int
}

// AspectClassifier derives the aspect list for a set of positions.
type AspectClassifier interface {
	Aspects(planets []models.PlanetPosition) []models.Aspect
}

// ChartAssembler orchestrates ephemeris, houses and aspects into one chart.
type ChartAssembler interface {
	Assemble(birth models.BirthData, frame models.Frame) (models.BirthChart, error)
}

// ParamKey names an input a chart strategy may require.
type ParamKey string

const (
	ParamNatal      ParamKey = "natal"
	ParamTransit    ParamKey = "transit"
	ParamProgressed ParamKey = "progressed"
	ParamPartner    ParamKey = "partner"
)

// ChartParams carries the inputs a strategy can draw from. Target is the
// reference date for transit, progressed and solar-return charts.
type ChartParams struct {
	Natal   *models.BirthData
	Partner *models.BirthData
	Target  time.Time
	Frame   models.Frame
}

// ChartStrategy derives one chart variant. Strategies hold no mutable state
// and fail with a descriptive error when a required param is absent.
type ChartStrategy interface {
	Name() string
	Requires() []ParamKey
	Calculate(ctx context.Context, p ChartParams) (models.BirthChart, error)
}
