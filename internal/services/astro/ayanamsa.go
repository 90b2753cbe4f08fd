package astro

import "time"

// Sidereal correction model: anchored at a reference epoch value and drifting
// at the mean precession rate. Matches Lahiri-style almanac values to well
// within 1.5 degrees across 1900-2050.
const (
	ayanamsaEpochJD   = 2415020.0  // 1900 January 0.5
	ayanamsaAtEpoch   = 22.460148  // degrees at the 1900 epoch
	precessionArcsecY = 50.2719    // arcseconds per Julian year
	daysPerYear       = 365.2425
)

// Ayanamsa returns the tropical-to-sidereal offset in degrees for a date.
func Ayanamsa(t time.Time) float64 {
	years := (JulianDay(t) - ayanamsaEpochJD) / daysPerYear
	return ayanamsaAtEpoch + years*precessionArcsecY/3600.0
}
