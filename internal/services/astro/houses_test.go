package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
)

var eugeneBirth = time.Date(1974, time.September, 16, 14, 14, 0, 0, time.UTC)

func TestAscendantEugene1974(t *testing.T) {
	// 1974-09-16 14:14 UT, Eugene OR: rising degree in late Virgo
	asc := Ascendant(eugeneBirth, 44.0521, -123.0868)
	z := ToZodiac(asc)
	assert.Equal(t, "Virgo", z.Sign)
	assert.GreaterOrEqual(t, z.Degree, 24)
	assert.LessOrEqual(t, z.Degree, 28)
}

func TestHousesEqualSpacing(t *testing.T) {
	houses := Houses(eugeneBirth, 44.0521, -123.0868)
	require.Len(t, houses, 12)

	for i, h := range houses {
		assert.Equal(t, i+1, h.Number)
		gap := NormalizeDegrees(houses[(i+1)%12].Cusp - h.Cusp)
		assert.InDelta(t, 30.0, gap, 1e-9, "cusp %d", i+1)
	}
}

func TestHousesAngleIdentities(t *testing.T) {
	houses := Houses(eugeneBirth, 44.0521, -123.0868)
	asc := houses[0].Cusp

	assert.InDelta(t, NormalizeDegrees(asc+180), houses[6].Cusp, 1e-9)  // Descendant
	assert.InDelta(t, NormalizeDegrees(asc+270), houses[9].Cusp, 1e-9)  // Midheaven
	assert.InDelta(t, NormalizeDegrees(asc+90), houses[3].Cusp, 1e-9)   // IC
}

func TestAscendantDependsOnLatitude(t *testing.T) {
	a := Ascendant(eugeneBirth, 44.0521, -123.0868)
	b := Ascendant(eugeneBirth, 10.0, -123.0868)
	assert.Greater(t, Separation(a, b), 0.5)
}

func TestAssignHouse(t *testing.T) {
	houses := Houses(eugeneBirth, 44.0521, -123.0868)
	asc := houses[0].Cusp

	assert.Equal(t, 1, AssignHouse(asc, houses))
	assert.Equal(t, 1, AssignHouse(asc+15, houses))
	assert.Equal(t, 2, AssignHouse(asc+30, houses))
	assert.Equal(t, 12, AssignHouse(asc-1, houses))

	// every longitude lands in exactly one house
	for lon := 0.0; lon < 360; lon += 7.3 {
		h := AssignHouse(lon, houses)
		assert.GreaterOrEqual(t, h, 1)
		assert.LessOrEqual(t, h, 12)
	}
}

func TestAssignHouseMalformedCusps(t *testing.T) {
	assert.Equal(t, 1, AssignHouse(123, nil))
	assert.Equal(t, 1, AssignHouse(123, make([]models.House, 3)))
}
