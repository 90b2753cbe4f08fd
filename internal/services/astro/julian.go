package astro

import (
	"math"
	"time"
)

const (
	// j2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 TT).
	j2000 = 2451545.0
	// unixEpochJD is the Julian day of 1970-01-01 00:00 UTC.
	unixEpochJD = 2440587.5

	daysPerCentury = 36525.0
	degToRad       = math.Pi / 180
	radToDeg       = 180 / math.Pi
)

// JulianDay converts a civil instant to a Julian day number.
// The sub-minute difference between UTC and TT is ignored; it is far below
// the precision target of this ephemeris.
func JulianDay(t time.Time) float64 {
	return float64(t.UnixMilli())/86400000.0 + unixEpochJD
}

// julianCenturies is the time argument T: Julian centuries since J2000.0.
func julianCenturies(jd float64) float64 {
	return (jd - j2000) / daysPerCentury
}

// meanObliquity returns the mean obliquity of the ecliptic in degrees,
// with its small secular drift.
func meanObliquity(T float64) float64 {
	return 23.439291 - 0.0130042*T - 1.64e-7*T*T
}

func sinDeg(d float64) float64 { return math.Sin(d * degToRad) }
func cosDeg(d float64) float64 { return math.Cos(d * degToRad) }
func tanDeg(d float64) float64 { return math.Tan(d * degToRad) }
