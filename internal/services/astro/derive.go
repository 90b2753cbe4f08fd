package astro

import (
	"math"
	"time"
)

// Derivation arithmetic shared by the chart-type strategies.

const tropicalYearDays = 365.25

// ProgressedInstant maps a target date onto the secondary-progression
// timeline: one day after birth per year of life. The whole years become
// whole days; the fractional year becomes a time-of-day offset.
func ProgressedInstant(birth, target time.Time) time.Time {
	years := target.Sub(birth).Hours() / 24 / tropicalYearDays
	whole := math.Floor(years)
	frac := years - whole

	progressed := birth.Add(time.Duration(whole) * 24 * time.Hour)
	return progressed.Add(time.Duration(frac * 24 * float64(time.Hour)))
}

// MidpointLongitude averages two longitudes along the shorter arc.
// 350 and 10 midpoint to 0, not 180.
func MidpointLongitude(lon1, lon2 float64) float64 {
	a, b := NormalizeDegrees(lon1), NormalizeDegrees(lon2)
	if math.Abs(a-b) > 180 {
		if a < b {
			a += 360
		} else {
			b += 360
		}
	}
	return NormalizeDegrees((a + b) / 2)
}

// SolarReturnApprox reuses the natal month, day and time-of-day in the
// requested year. The transiting Sun can be up to ~1 degree away from the
// natal Sun at this instant; SolarReturnInstant refines it.
func SolarReturnApprox(birth time.Time, year int) time.Time {
	return time.Date(year, birth.Month(), birth.Day(),
		birth.Hour(), birth.Minute(), birth.Second(), 0, birth.Location())
}

// SolarReturnInstant bisection-searches the moment the transiting Sun
// returns to the natal Sun longitude, starting from the month/day
// approximation. The Sun moves ~1 degree/day, so a +/-3 day bracket always
// contains exactly one root.
func SolarReturnInstant(birth time.Time, year int) time.Time {
	natalSun := SunLongitude(birth)
	approx := SolarReturnApprox(birth, year)

	lo := approx.Add(-3 * 24 * time.Hour)
	hi := approx.Add(3 * 24 * time.Hour)

	f := func(t time.Time) float64 {
		return SignedDelta(SunLongitude(t) - natalSun)
	}

	// widen the bracket if the root escaped it (leap-year drift)
	for f(lo) > 0 && hi.Sub(lo) < 20*24*time.Hour {
		lo = lo.Add(-24 * time.Hour)
	}
	for f(hi) < 0 && hi.Sub(lo) < 20*24*time.Hour {
		hi = hi.Add(24 * time.Hour)
	}

	for i := 0; i < 48; i++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
		if hi.Sub(lo) < time.Second {
			break
		}
	}
	return lo.Add(hi.Sub(lo) / 2)
}
