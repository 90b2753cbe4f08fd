package astro

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
)

func pos(name string, lon, speed float64) models.PlanetPosition {
	return models.PlanetPosition{Name: name, Longitude: lon, SpeedDegPerDay: speed}
}

func TestSeparation(t *testing.T) {
	assert.InDelta(t, 0.0, Separation(10, 10), 1e-9)
	assert.InDelta(t, 178.0, Separation(1, 183), 1e-9)
	assert.InDelta(t, 20.0, Separation(350, 10), 1e-9)
	assert.InDelta(t, 180.0, Separation(0, 180), 1e-9)
}

func TestAspectClassification(t *testing.T) {
	cases := []struct {
		lon1, lon2 float64
		want       string
	}{
		{100, 102, "Conjunction"},   // 2 apart
		{10, 192, "Opposition"},     // 182 apart
		{0, 122, "Trine"},           // 122 apart
		{45, 133, "Square"},         // 88 apart
		{300, 2, "Sextile"},         // 62 apart, wraps
		{0, 30, "Semisextile"},
		{0, 46, "Semisquare"},
		{0, 136, "Sesquiquadrate"},
		{0, 149, "Quincunx"},
	}
	for _, c := range cases {
		aspects := Aspects([]models.PlanetPosition{pos("A", c.lon1, 1), pos("B", c.lon2, 1)})
		require.Len(t, aspects, 1, "%v-%v", c.lon1, c.lon2)
		assert.Equal(t, c.want, aspects[0].Type, "%v-%v", c.lon1, c.lon2)
	}
}

func TestAspectNone(t *testing.T) {
	// 20 degrees apart falls in no orb
	aspects := Aspects([]models.PlanetPosition{pos("A", 0, 1), pos("B", 20, 1)})
	assert.Empty(t, aspects)
}

func TestAspectOrb(t *testing.T) {
	aspects := Aspects([]models.PlanetPosition{pos("A", 10, 1), pos("B", 192, 1)})
	require.Len(t, aspects, 1)
	assert.InDelta(t, 2.0, aspects[0].Orb, 1e-9)
	assert.InDelta(t, 180.0, aspects[0].Angle, 1e-9)
}

func TestAspectApplying(t *testing.T) {
	// B trails A by 88 degrees; A pulls ahead, so the separation grows
	// toward the exact 90 square
	a := pos("A", 88, 3)
	b := pos("B", 0, 1)
	aspects := Aspects([]models.PlanetPosition{a, b})
	require.Len(t, aspects, 1)
	assert.Equal(t, "Square", aspects[0].Type)
	assert.True(t, aspects[0].IsApplying)

	// same geometry with B faster: B closes the gap, the separation shrinks
	// away from 90
	a = pos("A", 88, 1)
	b = pos("B", 0, 3)
	aspects = Aspects([]models.PlanetPosition{a, b})
	require.Len(t, aspects, 1)
	assert.False(t, aspects[0].IsApplying)
}

func TestAspectsNoDuplicatePairs(t *testing.T) {
	var planets []models.PlanetPosition
	for i := 0; i < 13; i++ {
		planets = append(planets, pos(fmt.Sprintf("P%d", i), float64(i*27), 1))
	}
	seen := map[string]bool{}
	for _, a := range Aspects(planets) {
		key := a.Planet1 + "|" + a.Planet2
		assert.False(t, seen[key], "pair %s listed twice", key)
		assert.NotEqual(t, a.Planet1, a.Planet2)
		seen[key] = true
	}
}

func TestAspectsBetween(t *testing.T) {
	a := []models.PlanetPosition{pos("Sun_p1", 0, 1), pos("Moon_p1", 90, 12)}
	b := []models.PlanetPosition{pos("Sun_p2", 120, 1)}

	aspects := AspectsBetween(a, b)
	require.Len(t, aspects, 2)
	assert.Equal(t, "Trine", aspects[0].Type)  // 0 vs 120
	assert.Equal(t, "Semisextile", aspects[1].Type) // 90 vs 120
}
