package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
)

// 1955-02-24 19:15 PST in San Francisco.
var sanFranciscoBirth = time.Date(1955, time.February, 25, 3, 15, 0, 0, time.UTC)

func positionByName(t *testing.T, planets []models.PlanetPosition, name string) models.PlanetPosition {
	t.Helper()
	for _, p := range planets {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("body %q not in position set", name)
	return models.PlanetPosition{}
}

func TestPositionsBodySet(t *testing.T) {
	planets := NewEngine().Positions(eugeneBirth, models.FrameWestern)
	require.Len(t, planets, 13)

	// fixed order, Sun first
	assert.Equal(t, BodySun, planets[0].Name)
	assert.Equal(t, BodyMoon, planets[1].Name)
	assert.Equal(t, BodyEarth, planets[12].Name)

	for _, p := range planets {
		assert.GreaterOrEqual(t, p.Longitude, 0.0, p.Name)
		assert.Less(t, p.Longitude, 360.0, p.Name)
		assert.NotEmpty(t, p.Sign, p.Name)
		assert.NotEmpty(t, p.Symbol, p.Name)
	}
}

func TestSunEugene1974(t *testing.T) {
	planets := NewEngine().Positions(eugeneBirth, models.FrameWestern)
	sun := positionByName(t, planets, BodySun)

	assert.Equal(t, "Virgo", sun.Sign)
	assert.GreaterOrEqual(t, sun.Degree, 21)
	assert.LessOrEqual(t, sun.Degree, 25)
	assert.False(t, sun.IsRetrograde)
	assert.Greater(t, sun.SpeedDegPerDay, 0.9)
	assert.Less(t, sun.SpeedDegPerDay, 1.1)
}

func TestSunMoonSanFrancisco1955(t *testing.T) {
	planets := NewEngine().Positions(sanFranciscoBirth, models.FrameWestern)

	sun := positionByName(t, planets, BodySun)
	assert.Equal(t, "Pisces", sun.Sign)
	assert.GreaterOrEqual(t, sun.Degree, 4)
	assert.LessOrEqual(t, sun.Degree, 7)

	moon := positionByName(t, planets, BodyMoon)
	assert.Equal(t, "Aries", moon.Sign)
	assert.GreaterOrEqual(t, moon.Degree, 7)
	assert.LessOrEqual(t, moon.Degree, 10)
}

func TestEarthOppositeSun(t *testing.T) {
	planets := NewEngine().Positions(eugeneBirth, models.FrameWestern)
	sun := positionByName(t, planets, BodySun)
	earth := positionByName(t, planets, BodyEarth)

	assert.InDelta(t, 180.0, Separation(sun.Longitude, earth.Longitude), 1e-6)
	assert.Equal(t, models.KindReference, earth.Kind)
}

func TestRetrogradeOnlyForBodies(t *testing.T) {
	engine := NewEngine()
	// sample a few dates; Lilith and Earth must never flag retrograde
	for _, instant := range []time.Time{eugeneBirth, sanFranciscoBirth, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)} {
		planets := engine.Positions(instant, models.FrameWestern)
		assert.False(t, positionByName(t, planets, BodyLilith).IsRetrograde)
		assert.False(t, positionByName(t, planets, BodyEarth).IsRetrograde)
		assert.False(t, positionByName(t, planets, BodySun).IsRetrograde)
		assert.False(t, positionByName(t, planets, BodyMoon).IsRetrograde)
	}
}

func TestOuterPlanetsSlow(t *testing.T) {
	planets := NewEngine().Positions(eugeneBirth, models.FrameWestern)
	for _, name := range []string{BodyUranus, BodyNeptune, BodyPluto} {
		p := positionByName(t, planets, name)
		assert.Less(t, p.SpeedDegPerDay, 0.1, name)
	}
	moon := positionByName(t, planets, BodyMoon)
	assert.Greater(t, moon.SpeedDegPerDay, 11.0)
	assert.Less(t, moon.SpeedDegPerDay, 15.5)
}

func TestAyanamsa1955(t *testing.T) {
	ay := Ayanamsa(sanFranciscoBirth)
	assert.Greater(t, ay, 22.0)
	assert.Less(t, ay, 25.0)
}

func TestSiderealFramesAgree(t *testing.T) {
	engine := NewEngine()
	vedic := engine.Positions(eugeneBirth, models.FrameVedic)
	hd := engine.Positions(eugeneBirth, models.FrameHumanDesign)
	western := engine.Positions(eugeneBirth, models.FrameWestern)

	for i := range vedic {
		assert.InDelta(t, vedic[i].Longitude, hd[i].Longitude, 0.01, vedic[i].Name)
		shift := Separation(western[i].Longitude, vedic[i].Longitude)
		assert.InDelta(t, Ayanamsa(eugeneBirth), shift, 0.01, vedic[i].Name)
	}
}

func TestPositionsMemoized(t *testing.T) {
	engine := NewEngine()
	a := engine.Positions(eugeneBirth, models.FrameWestern)
	b := engine.Positions(eugeneBirth, models.FrameWestern)
	require.Equal(t, a, b)

	// distinct inputs never share results
	c := engine.Positions(eugeneBirth.Add(time.Hour), models.FrameWestern)
	sunA := positionByName(t, a, BodySun)
	sunC := positionByName(t, c, BodySun)
	assert.NotEqual(t, sunA.Longitude, sunC.Longitude)
}

func TestSunLongitudeMatchesPositions(t *testing.T) {
	planets := NewEngine().Positions(eugeneBirth, models.FrameWestern)
	sun := positionByName(t, planets, BodySun)
	assert.InDelta(t, sun.Longitude, SunLongitude(eugeneBirth), 1e-9)
}
