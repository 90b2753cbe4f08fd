package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
)

func TestAssembleNatal(t *testing.T) {
	asm := NewAssembler(NewEngine())
	chart, err := asm.Assemble(models.BirthData{
		Instant:   eugeneBirth,
		Latitude:  44.0521,
		Longitude: -123.0868,
	}, models.FrameWestern)
	require.NoError(t, err)

	require.Len(t, chart.Planets, 13)
	require.Len(t, chart.Houses, 12)
	assert.NotEmpty(t, chart.Aspects)

	assert.InDelta(t, chart.Houses[0].Cusp, chart.Ascendant, 1e-9)
	assert.InDelta(t, chart.Houses[9].Cusp, chart.Midheaven, 1e-9)
	assert.InDelta(t, 180.0, Separation(chart.Ascendant, chart.Descendant), 1e-9)
	assert.InDelta(t, 180.0, Separation(chart.Midheaven, chart.IC), 1e-9)

	for _, p := range chart.Planets {
		assert.GreaterOrEqual(t, p.House, 1, p.Name)
		assert.LessOrEqual(t, p.House, 12, p.Name)
	}

	// Sun conjunct the Ascendant for this birth: both sit in late Virgo,
	// so the Sun falls in the 12th or 1st house
	sun := positionByName(t, chart.Planets, BodySun)
	assert.Contains(t, []int{1, 12}, sun.House)
}

func TestAssembleRejectsBadInput(t *testing.T) {
	asm := NewAssembler(NewEngine())

	_, err := asm.Assemble(models.BirthData{Latitude: 10, Longitude: 10}, models.FrameWestern)
	require.ErrorIs(t, err, models.ErrInstantRequired)

	_, err = asm.Assemble(models.BirthData{Instant: eugeneBirth, Latitude: 91}, models.FrameWestern)
	require.ErrorIs(t, err, models.ErrLatitudeRange)

	_, err = asm.Assemble(models.BirthData{Instant: eugeneBirth, Longitude: -181}, models.FrameWestern)
	require.ErrorIs(t, err, models.ErrLongitudeRange)
}
