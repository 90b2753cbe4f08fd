package astro

import (
	"math"

	"astrochart/internal/domain/models"
)

// aspectDef is one row of the classification table.
type aspectDef struct {
	name  string
	angle float64
	orb   float64
}

// aspectTable is checked in this fixed order; the orb ranges do not overlap,
// so the first match is the only match.
var aspectTable = []aspectDef{
	{"Conjunction", 0, 8},
	{"Semisextile", 30, 2},
	{"Semisquare", 45, 2},
	{"Sextile", 60, 6},
	{"Square", 90, 8},
	{"Trine", 120, 8},
	{"Sesquiquadrate", 135, 2},
	{"Quincunx", 150, 3},
	{"Opposition", 180, 8},
}

// Separation returns the angular distance between two longitudes in [0,180].
func Separation(lon1, lon2 float64) float64 {
	d := math.Abs(NormalizeDegrees(lon1) - NormalizeDegrees(lon2))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// classify returns the matching table row for a separation, or nil.
func classify(sep float64) *aspectDef {
	for i := range aspectTable {
		if math.Abs(sep-aspectTable[i].angle) <= aspectTable[i].orb {
			return &aspectTable[i]
		}
	}
	return nil
}

// isApplying reports whether the separation is moving toward the exact
// angle given both bodies' current daily motion.
func isApplying(p1, p2 models.PlanetPosition, sep, exact float64) bool {
	// signed gap from p1 to p2 and its rate of change
	gap := SignedDelta(p2.Longitude - p1.Longitude)
	rate := p2.SpeedDegPerDay - p1.SpeedDegPerDay
	if gap < 0 {
		rate = -rate
	}
	// rate is now d(sep)/dt
	if sep > exact {
		return rate < 0
	}
	if sep < exact {
		return rate > 0
	}
	return false // exact aspect is neither applying nor separating
}

// Aspects classifies every unordered pair of positions against the fixed
// table. At most one aspect per pair.
func Aspects(planets []models.PlanetPosition) []models.Aspect {
	var out []models.Aspect
	for i := 0; i < len(planets); i++ {
		for j := i + 1; j < len(planets); j++ {
			sep := Separation(planets[i].Longitude, planets[j].Longitude)
			def := classify(sep)
			if def == nil {
				continue
			}
			out = append(out, models.Aspect{
				Planet1:    planets[i].Name,
				Planet2:    planets[j].Name,
				Angle:      def.angle,
				Orb:        math.Abs(sep - def.angle),
				Type:       def.name,
				IsApplying: isApplying(planets[i], planets[j], sep, def.angle),
			})
		}
	}
	return out
}

// AspectsBetween classifies pairs across two position sets (cross-chart
// synastry pass); pairs within the same set are not considered.
func AspectsBetween(a, b []models.PlanetPosition) []models.Aspect {
	var out []models.Aspect
	for i := range a {
		for j := range b {
			sep := Separation(a[i].Longitude, b[j].Longitude)
			def := classify(sep)
			if def == nil {
				continue
			}
			out = append(out, models.Aspect{
				Planet1:    a[i].Name,
				Planet2:    b[j].Name,
				Angle:      def.angle,
				Orb:        math.Abs(sep - def.angle),
				Type:       def.name,
				IsApplying: isApplying(a[i], b[j], sep, def.angle),
			})
		}
	}
	return out
}
