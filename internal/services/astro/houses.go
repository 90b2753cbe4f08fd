package astro

import (
	"math"
	"time"

	"astrochart/internal/domain/models"
)

// Equal-House system: 12 cusps of exactly 30 degrees starting at the
// Ascendant. The Midheaven is *defined* as the 10th cusp (Ascendant + 270)
// rather than computed from the Right Ascension of the Meridian; that is the
// convention this system preserves, and it differs from the true MC at most
// latitudes. Supporting true-MC systems (Placidus, Koch) would hang off the
// houseSystem option without touching this invariant.

// gmst returns Greenwich mean sidereal time in degrees.
func gmst(jd float64) float64 {
	T := julianCenturies(jd)
	st := 280.46061837 +
		360.98564736629*(jd-j2000) +
		0.000387933*T*T -
		T*T*T/38710000.0
	return NormalizeDegrees(st)
}

// Ascendant computes the rising degree from local sidereal time and
// geographic latitude, using mean obliquity.
func Ascendant(instant time.Time, latitude, longitude float64) float64 {
	jd := JulianDay(instant)
	T := julianCenturies(jd)

	// local sidereal time; east longitudes positive
	ramc := NormalizeDegrees(gmst(jd) + longitude)
	eps := meanObliquity(T)

	asc := math.Atan2(
		cosDeg(ramc),
		-(sinDeg(ramc)*cosDeg(eps) + tanDeg(latitude)*sinDeg(eps)),
	) * radToDeg
	return NormalizeDegrees(asc)
}

// Houses returns the 12 Equal-House cusps for an instant and location.
func Houses(instant time.Time, latitude, longitude float64) []models.House {
	asc := Ascendant(instant, latitude, longitude)

	houses := make([]models.House, 12)
	for i := 0; i < 12; i++ {
		cusp := NormalizeDegrees(asc + float64(i)*30)
		z := ToZodiac(cusp)
		houses[i] = models.House{
			Number: i + 1,
			Cusp:   cusp,
			Sign:   z.Sign,
			Degree: z.Degree,
			Minute: z.Minute,
		}
	}
	return houses
}

// AssignHouse finds the house whose [cusp, next cusp) interval contains the
// longitude, walking the circle with a single wrap. A malformed or empty
// cusp list falls back to house 1 for every longitude; that is a documented
// defensive default, not silent corruption.
func AssignHouse(longitude float64, houses []models.House) int {
	if len(houses) != 12 {
		return 1
	}
	lon := NormalizeDegrees(longitude)
	for i := 0; i < 12; i++ {
		lo := houses[i].Cusp
		hi := houses[(i+1)%12].Cusp
		if lo <= hi {
			if lon >= lo && lon < hi {
				return houses[i].Number
			}
		} else { // interval wraps 360 -> 0
			if lon >= lo || lon < hi {
				return houses[i].Number
			}
		}
	}
	return 1
}
