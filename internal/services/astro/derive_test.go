package astro

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidpointLongitude(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 20, 15},
		{350, 10, 0}, // shorter arc crosses 0, not 180
		{0, 180, 90}, // antipodal, either midpoint is valid; ours picks 90
		{90, 270, 180},
		{355, 5, 0},
		{100, 100, 100},
	}
	for _, c := range cases {
		got := MidpointLongitude(c.a, c.b)
		assert.InDelta(t, 0.0, Separation(got, c.want), 1e-9, "mid(%v,%v)", c.a, c.b)
	}
}

func TestMidpointLongitudeSymmetric(t *testing.T) {
	for a := 0.0; a < 360; a += 37 {
		for b := 0.0; b < 360; b += 53 {
			assert.InDelta(t, 0.0,
				Separation(MidpointLongitude(a, b), MidpointLongitude(b, a)), 1e-9,
				"mid(%v,%v)", a, b)
		}
	}
}

func TestProgressedInstant(t *testing.T) {
	birth := time.Date(1990, time.March, 1, 12, 0, 0, 0, time.UTC)

	// exactly 30 tropical years after birth progresses 30 days
	target := birth.Add(time.Duration(30*tropicalYearDays*24) * time.Hour)
	got := ProgressedInstant(birth, target)
	want := birth.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, want, got, time.Minute)

	// half a year beyond that adds 12 hours
	target = target.Add(time.Duration(tropicalYearDays*12) * time.Hour)
	got = ProgressedInstant(birth, target)
	assert.WithinDuration(t, want.Add(12*time.Hour), got, time.Minute)
}

func TestProgressedInstantAtBirth(t *testing.T) {
	birth := time.Date(1990, time.March, 1, 12, 0, 0, 0, time.UTC)
	assert.WithinDuration(t, birth, ProgressedInstant(birth, birth), time.Second)
}

func TestSolarReturnApprox(t *testing.T) {
	birth := time.Date(1974, time.September, 16, 14, 14, 0, 0, time.UTC)
	got := SolarReturnApprox(birth, 2024)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, birth.Month(), got.Month())
	assert.Equal(t, birth.Day(), got.Day())
	assert.Equal(t, birth.Hour(), got.Hour())
	assert.Equal(t, birth.Minute(), got.Minute())
}

func TestSolarReturnInstant(t *testing.T) {
	birth := time.Date(1974, time.September, 16, 14, 14, 0, 0, time.UTC)
	natalSun := SunLongitude(birth)

	for _, year := range []int{2000, 2023, 2024} {
		ret := SolarReturnInstant(birth, year)
		assert.Equal(t, year, ret.Year(), "year %d", year)

		diff := math.Abs(SignedDelta(SunLongitude(ret) - natalSun))
		assert.Less(t, diff, 0.001, "year %d residual %v", year, diff)

		// within a couple of days of the calendar birthday
		approx := SolarReturnApprox(birth, year)
		assert.Less(t, math.Abs(ret.Sub(approx).Hours()), 48.0, "year %d", year)
	}
}
