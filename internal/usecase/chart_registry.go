package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"astrochart/internal/domain/models"
	domsvc "astrochart/internal/domain/service"
	"astrochart/internal/services/astro"
)

// Registry dispatches chart derivation by type tag. It is an explicitly
// constructed value, never a package-level singleton, so tests can build
// isolated registries with stub strategies.
type Registry struct {
	strategies map[string]domsvc.ChartStrategy
}

func NewRegistry(strategies ...domsvc.ChartStrategy) *Registry {
	r := &Registry{strategies: make(map[string]domsvc.ChartStrategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Name()] = s
	}
	return r
}

// NewDefaultRegistry wires the six built-in chart types over one assembler.
func NewDefaultRegistry(asm *astro.Assembler) *Registry {
	return NewRegistry(
		&NatalStrategy{asm: asm},
		&TransitStrategy{asm: asm},
		&ProgressedStrategy{asm: asm},
		&SynastryStrategy{asm: asm},
		&CompositeStrategy{asm: asm},
		&SolarReturnStrategy{asm: asm},
	)
}

// Types lists the registered chart type tags.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		out = append(out, name)
	}
	return out
}

// Describe maps each registered type to the inputs its strategy requires.
func (r *Registry) Describe() map[string][]domsvc.ParamKey {
	out := make(map[string][]domsvc.ParamKey, len(r.strategies))
	for name, s := range r.strategies {
		out[name] = s.Requires()
	}
	return out
}

// Calculate validates required params and runs the named strategy.
func (r *Registry) Calculate(ctx context.Context, chartType string, p domsvc.ChartParams) (models.BirthChart, error) {
	s, ok := r.strategies[chartType]
	if !ok {
		return models.BirthChart{}, fmt.Errorf("unknown chart type %q", chartType)
	}
	if err := checkParams(s, p); err != nil {
		return models.BirthChart{}, err
	}
	return s.Calculate(ctx, p)
}

func checkParams(s domsvc.ChartStrategy, p domsvc.ChartParams) error {
	var missing []string
	for _, req := range s.Requires() {
		switch req {
		case domsvc.ParamNatal:
			if p.Natal == nil {
				missing = append(missing, string(req))
			}
		case domsvc.ParamPartner:
			if p.Partner == nil {
				missing = append(missing, string(req))
			}
		case domsvc.ParamTransit, domsvc.ParamProgressed:
			if p.Target.IsZero() {
				missing = append(missing, string(req))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("chart type %q requires missing input: %s", s.Name(), strings.Join(missing, ", "))
	}
	return nil
}

// --- natal ---

type NatalStrategy struct {
	asm *astro.Assembler
}

func (s *NatalStrategy) Name() string                { return models.ChartNatal }
func (s *NatalStrategy) Requires() []domsvc.ParamKey { return []domsvc.ParamKey{domsvc.ParamNatal} }

func (s *NatalStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	return s.asm.Assemble(*p.Natal, p.Frame)
}

// --- transit ---

// TransitStrategy overlays planets at the target instant onto the natal
// houses: the houses and the four angles come from the natal chart, and the
// transiting planets are assigned into those natal houses.
type TransitStrategy struct {
	asm *astro.Assembler
}

func (s *TransitStrategy) Name() string { return models.ChartTransit }
func (s *TransitStrategy) Requires() []domsvc.ParamKey {
	return []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamTransit}
}

func (s *TransitStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	natal, err := s.asm.Assemble(*p.Natal, p.Frame)
	if err != nil {
		return models.BirthChart{}, err
	}

	transit, err := s.asm.Assemble(models.BirthData{
		Instant:   p.Target,
		Latitude:  p.Natal.Latitude,
		Longitude: p.Natal.Longitude,
		Timezone:  p.Natal.Timezone,
	}, p.Frame)
	if err != nil {
		return models.BirthChart{}, err
	}

	for i := range transit.Planets {
		transit.Planets[i].House = astro.AssignHouse(transit.Planets[i].Longitude, natal.Houses)
	}

	transit.BirthData = *p.Natal
	transit.ChartType = models.ChartTransit
	transit.Houses = natal.Houses
	transit.Ascendant = natal.Ascendant
	transit.Midheaven = natal.Midheaven
	transit.Descendant = natal.Descendant
	transit.IC = natal.IC
	return transit, nil
}

// --- progressed ---

// ProgressedStrategy applies secondary progression, one day after birth per
// year of life, and assembles a full chart at the progressed instant using
// the natal location.
type ProgressedStrategy struct {
	asm *astro.Assembler
}

func (s *ProgressedStrategy) Name() string { return models.ChartProgressed }
func (s *ProgressedStrategy) Requires() []domsvc.ParamKey {
	return []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamProgressed}
}

func (s *ProgressedStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	chart, err := s.asm.Assemble(models.BirthData{
		Instant:   astro.ProgressedInstant(p.Natal.Instant, p.Target),
		Latitude:  p.Natal.Latitude,
		Longitude: p.Natal.Longitude,
		Timezone:  p.Natal.Timezone,
	}, p.Frame)
	if err != nil {
		return models.BirthChart{}, err
	}
	chart.BirthData = *p.Natal
	chart.ChartType = models.ChartProgressed
	return chart, nil
}

// --- synastry ---

// SynastryStrategy compares two natal charts. Planet names carry _p1/_p2
// suffixes, houses and angles come from the first person's chart, and the
// aspect list is the cross product of person 1's planets against person 2's.
// Each chart's internal aspects are deliberately not repeated here; the
// cross aspects are what characterize the relationship.
type SynastryStrategy struct {
	asm *astro.Assembler
}

func (s *SynastryStrategy) Name() string { return models.ChartSynastry }
func (s *SynastryStrategy) Requires() []domsvc.ParamKey {
	return []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamPartner}
}

func (s *SynastryStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	first, err := s.asm.Assemble(*p.Natal, p.Frame)
	if err != nil {
		return models.BirthChart{}, fmt.Errorf("first chart: %w", err)
	}
	second, err := s.asm.Assemble(*p.Partner, p.Frame)
	if err != nil {
		return models.BirthChart{}, fmt.Errorf("partner chart: %w", err)
	}

	p1 := suffixPlanets(first.Planets, "_p1")
	p2 := suffixPlanets(second.Planets, "_p2")

	// partner planets are placed into the first person's houses
	for i := range p2 {
		p2[i].House = astro.AssignHouse(p2[i].Longitude, first.Houses)
	}

	first.ChartType = models.ChartSynastry
	first.Planets = append(p1, p2...)
	first.Aspects = astro.AspectsBetween(p1, p2)
	return first, nil
}

func suffixPlanets(planets []models.PlanetPosition, suffix string) []models.PlanetPosition {
	out := make([]models.PlanetPosition, len(planets))
	copy(out, planets)
	for i := range out {
		out[i].Name += suffix
	}
	return out
}

// --- composite ---

// CompositeStrategy derives one midpoint chart for a pair: matched planets
// are averaged (longitudes along the shorter arc), and the houses are
// computed at the mean birth instant and mean location.
type CompositeStrategy struct {
	asm *astro.Assembler
}

func (s *CompositeStrategy) Name() string { return models.ChartComposite }
func (s *CompositeStrategy) Requires() []domsvc.ParamKey {
	return []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamPartner}
}

func (s *CompositeStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	first, err := s.asm.Assemble(*p.Natal, p.Frame)
	if err != nil {
		return models.BirthChart{}, fmt.Errorf("first chart: %w", err)
	}
	second, err := s.asm.Assemble(*p.Partner, p.Frame)
	if err != nil {
		return models.BirthChart{}, fmt.Errorf("partner chart: %w", err)
	}

	midInstant := meanInstant(p.Natal.Instant, p.Partner.Instant)
	midBirth := models.BirthData{
		Instant:   midInstant,
		Latitude:  (p.Natal.Latitude + p.Partner.Latitude) / 2,
		Longitude: (p.Natal.Longitude + p.Partner.Longitude) / 2,
	}

	byName := make(map[string]models.PlanetPosition, len(second.Planets))
	for _, pp := range second.Planets {
		byName[pp.Name] = pp
	}

	houses := astro.Houses(midBirth.Instant, midBirth.Latitude, midBirth.Longitude)

	planets := make([]models.PlanetPosition, 0, len(first.Planets))
	for _, a := range first.Planets {
		b, ok := byName[a.Name]
		if !ok {
			continue
		}
		lon := astro.MidpointLongitude(a.Longitude, b.Longitude)
		z := astro.ToZodiac(lon)
		planets = append(planets, models.PlanetPosition{
			Name:           a.Name,
			Symbol:         a.Symbol,
			Kind:           a.Kind,
			Longitude:      lon,
			Latitude:       (a.Latitude + b.Latitude) / 2,
			DistanceAU:     (a.DistanceAU + b.DistanceAU) / 2,
			SpeedDegPerDay: (a.SpeedDegPerDay + b.SpeedDegPerDay) / 2,
			IsRetrograde:   a.IsRetrograde || b.IsRetrograde,
			Sign:           z.Sign,
			Degree:         z.Degree,
			Minute:         z.Minute,
			House:          astro.AssignHouse(lon, houses),
			Element:        z.Element,
			Modality:       z.Modality,
		})
	}

	asc := houses[0].Cusp
	mc := houses[9].Cusp
	return models.BirthChart{
		BirthData:  midBirth,
		ChartType:  models.ChartComposite,
		Frame:      p.Frame,
		Planets:    planets,
		Houses:     houses,
		Aspects:    astro.Aspects(planets),
		Ascendant:  asc,
		Midheaven:  mc,
		Descendant: astro.NormalizeDegrees(asc + 180),
		IC:         astro.NormalizeDegrees(mc + 180),
	}, nil
}

func meanInstant(a, b time.Time) time.Time {
	return time.UnixMilli((a.UnixMilli() + b.UnixMilli()) / 2).UTC()
}

// --- solar return ---

// SolarReturnStrategy assembles the chart for the natal month/day/time in
// the target year at the natal location. The transiting Sun can be up to a
// degree away from the natal Sun at this instant; the background refinement
// job replaces the approximation with the bisection-solved instant.
type SolarReturnStrategy struct {
	asm *astro.Assembler
}

func (s *SolarReturnStrategy) Name() string { return models.ChartSolarReturn }
func (s *SolarReturnStrategy) Requires() []domsvc.ParamKey {
	return []domsvc.ParamKey{domsvc.ParamNatal}
}

func (s *SolarReturnStrategy) Calculate(_ context.Context, p domsvc.ChartParams) (models.BirthChart, error) {
	year := p.Target.Year()
	if p.Target.IsZero() {
		year = time.Now().UTC().Year()
	}

	chart, err := s.asm.Assemble(models.BirthData{
		Instant:   astro.SolarReturnApprox(p.Natal.Instant, year),
		Latitude:  p.Natal.Latitude,
		Longitude: p.Natal.Longitude,
		Timezone:  p.Natal.Timezone,
	}, p.Frame)
	if err != nil {
		return models.BirthChart{}, err
	}
	chart.ChartType = models.ChartSolarReturn
	return chart, nil
}
