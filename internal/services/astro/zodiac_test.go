package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-30, 330},
		{725, 5},
		{-725, 355},
		{180, 180},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, NormalizeDegrees(c.in), 1e-9, "input %v", c.in)
	}
}

func TestSignedDelta(t *testing.T) {
	assert.InDelta(t, 10.0, SignedDelta(370), 1e-9)
	assert.InDelta(t, -10.0, SignedDelta(350), 1e-9)
	assert.InDelta(t, 180.0, SignedDelta(180), 1e-9)
	assert.InDelta(t, -179.0, SignedDelta(181), 1e-9)
}

func TestToZodiacBoundaries(t *testing.T) {
	z := ToZodiac(0)
	assert.Equal(t, "Aries", z.Sign)
	assert.Equal(t, 0, z.Degree)
	assert.Equal(t, 0, z.Minute)

	z = ToZodiac(30)
	assert.Equal(t, "Taurus", z.Sign)
	assert.Equal(t, 0, z.Degree)

	z = ToZodiac(359.9)
	assert.Equal(t, "Pisces", z.Sign)
	assert.Equal(t, 29, z.Degree)
	assert.Equal(t, 54, z.Minute)
}

func TestToZodiacMinuteCarry(t *testing.T) {
	// 29.9999 degrees into a sign rounds to a 60th minute, which must carry
	z := ToZodiac(29.9999)
	assert.Equal(t, "Taurus", z.Sign)
	assert.Equal(t, 0, z.Degree)
	assert.Equal(t, 0, z.Minute)
}

func TestToZodiacNegativeAndWrapped(t *testing.T) {
	// -10 and 350 are the same longitude
	a := ToZodiac(-10)
	b := ToZodiac(350)
	assert.Equal(t, b, a)
	assert.Equal(t, "Pisces", a.Sign)
	assert.Equal(t, 20, a.Degree)
}

func TestToZodiacElementModalityCycles(t *testing.T) {
	// elements repeat every 4 signs, modalities every 3
	for i := 0; i < 12; i++ {
		z := ToZodiac(float64(i)*30 + 15)
		assert.Equal(t, elementNames[i%4], z.Element, "sign %d", i)
		assert.Equal(t, modalityNames[i%3], z.Modality, "sign %d", i)
	}
	assert.Equal(t, "Fire", ToZodiac(5).Element)      // Aries
	assert.Equal(t, "Water", ToZodiac(95).Element)    // Cancer
	assert.Equal(t, "Cardinal", ToZodiac(275).Modality) // Capricorn
}
