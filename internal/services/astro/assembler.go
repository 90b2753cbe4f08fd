package astro

import (
	"fmt"

	"astrochart/internal/domain/models"
)

// Assembler builds complete charts from birth data. It is a pure
// orchestration of the ephemeris, house and aspect calculators and is safe
// to call concurrently for different inputs.
type Assembler struct {
	engine *Engine
}

func NewAssembler(engine *Engine) *Assembler {
	return &Assembler{engine: engine}
}

// Engine exposes the underlying ephemeris for strategies that need raw
// positions (transit overlays, solar-return refinement).
func (a *Assembler) Engine() *Engine { return a.engine }

// Assemble computes planets, houses, aspects and the four angles for one
// birth moment.
func (a *Assembler) Assemble(birth models.BirthData, frame models.Frame) (models.BirthChart, error) {
	if err := birth.Validate(); err != nil {
		return models.BirthChart{}, fmt.Errorf("birth data: %w", err)
	}

	planets := a.engine.Positions(birth.Instant, frame)
	houses := Houses(birth.Instant, birth.Latitude, birth.Longitude)
	for i := range planets {
		planets[i].House = AssignHouse(planets[i].Longitude, houses)
	}

	asc := houses[0].Cusp
	mc := houses[9].Cusp

	return models.BirthChart{
		BirthData:  birth,
		ChartType:  models.ChartNatal,
		Frame:      frame,
		Planets:    planets,
		Houses:     houses,
		Aspects:    Aspects(planets),
		Ascendant:  asc,
		Midheaven:  mc,
		Descendant: NormalizeDegrees(asc + 180),
		IC:         NormalizeDegrees(mc + 180),
	}, nil
}
