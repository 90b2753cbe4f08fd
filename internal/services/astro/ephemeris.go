package astro

import (
	"fmt"
	"math"
	"time"

	"astrochart/internal/domain/models"
	icache "astrochart/internal/service/cache"
)

// Canonical body names, in chart order.
const (
	BodySun     = "Sun"
	BodyMoon    = "Moon"
	BodyMercury = "Mercury"
	BodyVenus   = "Venus"
	BodyMars    = "Mars"
	BodyJupiter = "Jupiter"
	BodySaturn  = "Saturn"
	BodyUranus  = "Uranus"
	BodyNeptune = "Neptune"
	BodyPluto   = "Pluto"
	BodyChiron  = "Chiron"
	BodyLilith  = "Lilith"
	BodyEarth   = "Earth"
)

type bodyDef struct {
	name   string
	symbol string
	kind   models.BodyKind
}

// bodyOrder fixes the 13-entry chart layout. Earth is a non-physical
// reference body (Sun + 180, the Human-Design convention) and Lilith is the
// mean lunar apogee; neither participates in retrograde detection.
var bodyOrder = []bodyDef{
	{BodySun, "☉", models.KindBody},
	{BodyMoon, "☽", models.KindBody},
	{BodyMercury, "☿", models.KindBody},
	{BodyVenus, "♀", models.KindBody},
	{BodyMars, "♂", models.KindBody},
	{BodyJupiter, "♃", models.KindBody},
	{BodySaturn, "♄", models.KindBody},
	{BodyUranus, "♅", models.KindBody},
	{BodyNeptune, "♆", models.KindBody},
	{BodyPluto, "♇", models.KindBody},
	{BodyChiron, "⚷", models.KindBody},
	{BodyLilith, "⚸", models.KindPoint},
	{BodyEarth, "⊕", models.KindReference},
}

// rawPosition is a tropical geocentric ecliptic position of date.
type rawPosition struct {
	Lon  float64 // degrees [0,360)
	Lat  float64 // degrees
	Dist float64 // AU
}

// --- Sun (low-precision solar theory, good to ~0.01 degree) ---

func solarPosition(jd float64) rawPosition {
	T := julianCenturies(jd)

	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T
	M := 357.52911 + 35999.05029*T - 0.0001537*T*T
	e := 0.016708634 - 0.000042037*T

	C := (1.914602-0.004817*T-0.000014*T*T)*sinDeg(M) +
		(0.019993-0.000101*T)*sinDeg(2*M) +
		0.000289*sinDeg(3*M)

	trueLon := L0 + C
	trueAnom := M + C
	R := 1.000001018 * (1 - e*e) / (1 + e*cosDeg(trueAnom))

	return rawPosition{Lon: NormalizeDegrees(trueLon), Lat: 0, Dist: R}
}

// --- Moon (truncated lunar series, good to ~0.3 degree) ---

func lunarPosition(jd float64) rawPosition {
	T := julianCenturies(jd)

	lon := 218.316 + 481267.881*T +
		6.29*sinDeg(134.9+477198.85*T) -
		1.27*sinDeg(259.2-413335.38*T) +
		0.66*sinDeg(235.7+890534.23*T) +
		0.21*sinDeg(269.9+954397.70*T) -
		0.19*sinDeg(357.5+35999.05*T) -
		0.11*sinDeg(186.6+966404.05*T)

	lat := 5.13*sinDeg(93.3+483202.03*T) +
		0.28*sinDeg(228.2+960400.87*T) -
		0.28*sinDeg(318.3+6003.18*T) -
		0.17*sinDeg(217.6-407332.20*T)

	parallax := 0.9508 +
		0.0518*cosDeg(134.9+477198.85*T) +
		0.0095*cosDeg(259.2-413335.38*T) +
		0.0078*cosDeg(235.7+890534.23*T) +
		0.0028*cosDeg(269.9+954397.70*T)

	distKM := 6378.14 / sinDeg(parallax)
	const kmPerAU = 149597870.7

	return rawPosition{Lon: NormalizeDegrees(lon), Lat: lat, Dist: distKM / kmPerAU}
}

// --- Mean Lilith (mean lunar apogee) ---

func lilithLongitude(jd float64) float64 {
	T := julianCenturies(jd)
	// mean longitude of the lunar perigee; the apogee is opposite
	perigee := 83.3532465 + 4069.0137287*T - 0.0103200*T*T
	return NormalizeDegrees(perigee + 180)
}

// --- Planets: Keplerian mean elements with secular rates ---
// Elements are heliocentric, J2000 ecliptic, valid 1800-2050. Rates are per
// Julian century.

type keplerElements struct {
	a, e, i, L, lp, node             float64 // at J2000
	aDot, eDot, iDot, LDot, lpDot, nodeDot float64
}

var planetElements = map[string]keplerElements{
	BodyMercury: {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	BodyVenus: {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	BodyEarth: {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0},
	BodyMars: {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	BodyJupiter: {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	BodySaturn: {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	BodyUranus: {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	BodyNeptune: {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
	BodyPluto: {39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482},
}

// Chiron: osculating elements, epoch 2455400.5 (JPL small-body database).
// Perturbations are ignored; accuracy degrades away from the epoch but stays
// well inside a sign for the 20th/21st century.
var chironElements = struct {
	epochJD, a, e, i, node, peri, m0, n float64
}{
	epochJD: 2455400.5,
	a:       13.648,
	e:       0.38267,
	i:       6.9497,
	node:    209.3639,
	peri:    339.5573,
	m0:      94.1303,
	n:       0.019529, // degrees per day
}

// solveKepler iterates E = M + e*sin(E) in degrees.
func solveKepler(M, e float64) float64 {
	eDeg := e * radToDeg
	E := M + eDeg*sinDeg(M)
	for iter := 0; iter < 30; iter++ {
		dM := M - (E - eDeg*sinDeg(E))
		dE := dM / (1 - e*cosDeg(E))
		E += dE
		if math.Abs(dE) < 1e-7 {
			break
		}
	}
	return E
}

// orbitalXYZ rotates in-plane coordinates into the J2000 ecliptic frame.
func orbitalXYZ(a, e, i, omega, node, E float64) (float64, float64, float64) {
	xp := a * (cosDeg(E) - e)
	yp := a * math.Sqrt(1-e*e) * sinDeg(E)

	cw, sw := cosDeg(omega), sinDeg(omega)
	cn, sn := cosDeg(node), sinDeg(node)
	ci, si := cosDeg(i), sinDeg(i)

	x := (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y := (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z := (sw*si)*xp + (cw*si)*yp
	return x, y, z
}

// heliocentricXYZ evaluates one body's mean-element position at T centuries.
func heliocentricXYZ(el keplerElements, T float64) (float64, float64, float64) {
	a := el.a + el.aDot*T
	e := el.e + el.eDot*T
	i := el.i + el.iDot*T
	L := el.L + el.LDot*T
	lp := el.lp + el.lpDot*T
	node := el.node + el.nodeDot*T

	omega := lp - node
	M := SignedDelta(L - lp)
	E := solveKepler(M, e)
	return orbitalXYZ(a, e, i, omega, node, E)
}

// generalPrecession converts a J2000 ecliptic longitude to one of date.
func generalPrecession(T float64) float64 {
	return 1.396971*T + 0.0003086*T*T
}

// planetPosition computes a geocentric tropical position of date for one of
// the major planets.
func planetPosition(name string, jd float64) rawPosition {
	T := julianCenturies(jd)

	px, py, pz := heliocentricXYZ(planetElements[name], T)
	ex, ey, ez := heliocentricXYZ(planetElements[BodyEarth], T)

	gx, gy, gz := px-ex, py-ey, pz-ez
	return geocentricFromXYZ(gx, gy, gz, T)
}

func chironPosition(jd float64) rawPosition {
	T := julianCenturies(jd)
	el := chironElements

	M := NormalizeDegrees(el.m0 + el.n*(jd-el.epochJD))
	E := solveKepler(SignedDelta(M), el.e)
	px, py, pz := orbitalXYZ(el.a, el.e, el.i, el.peri, el.node, E)

	ex, ey, ez := heliocentricXYZ(planetElements[BodyEarth], T)
	return geocentricFromXYZ(px-ex, py-ey, pz-ez, T)
}

func geocentricFromXYZ(x, y, z, T float64) rawPosition {
	lon := NormalizeDegrees(math.Atan2(y, x)*radToDeg + generalPrecession(T))
	lat := math.Atan2(z, math.Hypot(x, y)) * radToDeg
	dist := math.Sqrt(x*x + y*y + z*z)
	return rawPosition{Lon: lon, Lat: lat, Dist: dist}
}

// rawBodyPosition dispatches to the per-body theory.
func rawBodyPosition(name string, jd float64) rawPosition {
	switch name {
	case BodySun:
		return solarPosition(jd)
	case BodyMoon:
		return lunarPosition(jd)
	case BodyChiron:
		return chironPosition(jd)
	case BodyLilith:
		return rawPosition{Lon: lilithLongitude(jd)}
	case BodyEarth:
		sun := solarPosition(jd)
		return rawPosition{Lon: NormalizeDegrees(sun.Lon + 180)}
	default:
		return planetPosition(name, jd)
	}
}

// --- Engine ---

// Engine computes frame-adjusted positions for the 13 chart bodies.
// Outputs are deterministic per (instant, frame); an optional memo cache
// short-circuits repeated evaluations of the same key.
type Engine struct {
	memo    *icache.TTLCache
	memoTTL time.Duration
}

// NewEngine creates an ephemeris engine with memoization enabled.
func NewEngine() *Engine {
	return &Engine{memo: icache.NewTTLCache(), memoTTL: time.Hour}
}

// Positions returns the 13 body positions for an instant in the given frame.
// House assignment is left to the caller (zero until assigned).
func (e *Engine) Positions(instant time.Time, frame models.Frame) []models.PlanetPosition {
	key := fmt.Sprintf("eph:%d:%s", instant.UnixMilli(), frame)
	if e.memo != nil {
		if v, ok := e.memo.Get(key); ok {
			if cached, ok2 := v.([]models.PlanetPosition); ok2 {
				out := make([]models.PlanetPosition, len(cached))
				copy(out, cached)
				return out
			}
		}
	}

	jd := JulianDay(instant)
	var ayan float64
	if frame.Sidereal() {
		ayan = Ayanamsa(instant)
	}

	positions := make([]models.PlanetPosition, 0, len(bodyOrder))
	for _, def := range bodyOrder {
		raw := rawBodyPosition(def.name, jd)

		// central difference over one day for the daily motion
		before := rawBodyPosition(def.name, jd-0.5)
		after := rawBodyPosition(def.name, jd+0.5)
		speed := SignedDelta(after.Lon - before.Lon)

		lon := NormalizeDegrees(raw.Lon - ayan)
		z := ToZodiac(lon)

		positions = append(positions, models.PlanetPosition{
			Name:           def.name,
			Symbol:         def.symbol,
			Kind:           def.kind,
			Longitude:      lon,
			Latitude:       raw.Lat,
			DistanceAU:     raw.Dist,
			SpeedDegPerDay: speed,
			IsRetrograde:   def.kind == models.KindBody && speed < 0,
			Sign:           z.Sign,
			Degree:         z.Degree,
			Minute:         z.Minute,
			Element:        z.Element,
			Modality:       z.Modality,
		})
	}

	if e.memo != nil {
		stored := make([]models.PlanetPosition, len(positions))
		copy(stored, positions)
		e.memo.Set(key, stored, e.memoTTL)
	}
	return positions
}

// SunLongitude is the tropical solar longitude at an instant; used by the
// solar-return root-find.
func SunLongitude(instant time.Time) float64 {
	return solarPosition(JulianDay(instant)).Lon
}
