package astro

import "math"

// The 12 signs in ecliptic order, Aries at 0 degrees.
var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var elementNames = [4]string{"Fire", "Earth", "Air", "Water"}

var modalityNames = [3]string{"Cardinal", "Fixed", "Mutable"}

// ZodiacInfo is the sign decomposition of an ecliptic longitude.
type ZodiacInfo struct {
	Sign      string
	SignIndex int
	Degree    int // [0,30)
	Minute    int // [0,60)
	Element   string
	Modality  string
}

// NormalizeDegrees maps any angle into [0,360). Handles negatives from
// subtraction chains; Go's math.Mod keeps the sign of the dividend.
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// SignedDelta maps an angle difference into (-180, 180].
func SignedDelta(d float64) float64 {
	d = NormalizeDegrees(d)
	if d > 180 {
		d -= 360
	}
	return d
}

// ToZodiac converts an ecliptic longitude to sign, degree and minute.
// Total over all reals: wrap-around and negative inputs are normalized first.
func ToZodiac(longitude float64) ZodiacInfo {
	lon := NormalizeDegrees(longitude)

	signIndex := int(lon/30) % 12
	inSign := lon - float64(signIndex)*30
	degree := int(inSign)
	minute := int(math.Round((inSign - float64(degree)) * 60))
	// rounding can produce a 60th minute; carry into the degree
	if minute >= 60 {
		minute -= 60
		degree++
		if degree >= 30 {
			degree = 0
			signIndex = (signIndex + 1) % 12
		}
	}

	return ZodiacInfo{
		Sign:      signNames[signIndex],
		SignIndex: signIndex,
		Degree:    degree,
		Minute:    minute,
		Element:   elementNames[signIndex%4],
		Modality:  modalityNames[signIndex%3],
	}
}
