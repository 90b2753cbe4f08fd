package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrochart/internal/domain/models"
	domsvc "astrochart/internal/domain/service"
	"astrochart/internal/services/astro"
)

var (
	natalData = models.BirthData{
		Instant:   time.Date(1974, time.September, 16, 14, 14, 0, 0, time.UTC),
		Latitude:  44.0521,
		Longitude: -123.0868,
	}
	partnerData = models.BirthData{
		Instant:   time.Date(1955, time.February, 25, 3, 15, 0, 0, time.UTC),
		Latitude:  37.7749,
		Longitude: -122.4194,
	}
)

func testRegistry() *Registry {
	return NewDefaultRegistry(astro.NewAssembler(astro.NewEngine()))
}

func TestRegistryTypes(t *testing.T) {
	types := testRegistry().Types()
	assert.ElementsMatch(t, []string{
		models.ChartNatal, models.ChartTransit, models.ChartProgressed,
		models.ChartSynastry, models.ChartComposite, models.ChartSolarReturn,
	}, types)
}

func TestRegistryDescribe(t *testing.T) {
	desc := testRegistry().Describe()
	assert.Len(t, desc, 6)
	assert.ElementsMatch(t, []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamPartner}, desc[models.ChartSynastry])
	assert.ElementsMatch(t, []domsvc.ParamKey{domsvc.ParamNatal, domsvc.ParamTransit}, desc[models.ChartTransit])
	assert.ElementsMatch(t, []domsvc.ParamKey{domsvc.ParamNatal}, desc[models.ChartNatal])
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := testRegistry().Calculate(context.Background(), "draconic", domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart type")
}

func TestRegistryMissingInputs(t *testing.T) {
	reg := testRegistry()

	_, err := reg.Calculate(context.Background(), models.ChartNatal, domsvc.ChartParams{Frame: models.FrameWestern})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "natal")

	_, err = reg.Calculate(context.Background(), models.ChartSynastry, domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partner")

	_, err = reg.Calculate(context.Background(), models.ChartTransit, domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transit")
}

func TestNatalChart(t *testing.T) {
	chart, err := testRegistry().Calculate(context.Background(), models.ChartNatal, domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChartNatal, chart.ChartType)
	assert.Len(t, chart.Planets, 13)
	assert.Len(t, chart.Houses, 12)
	assert.NotEmpty(t, chart.Aspects)
}

func TestTransitKeepsNatalHouses(t *testing.T) {
	reg := testRegistry()
	ctx := context.Background()
	target := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	natal, err := reg.Calculate(ctx, models.ChartNatal, domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	transit, err := reg.Calculate(ctx, models.ChartTransit, domsvc.ChartParams{
		Natal: &natalData, Target: target, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChartTransit, transit.ChartType)
	assert.Equal(t, natal.Houses, transit.Houses)
	assert.Equal(t, natal.Ascendant, transit.Ascendant)
	assert.Equal(t, natal.Midheaven, transit.Midheaven)

	// planets moved between 1974 and 2024
	assert.NotEqual(t, natal.Planets[0].Longitude, transit.Planets[0].Longitude)

	// transiting planets occupy natal houses
	for _, p := range transit.Planets {
		assert.Equal(t, astro.AssignHouse(p.Longitude, natal.Houses), p.House, p.Name)
	}
}

func TestProgressedChart(t *testing.T) {
	// 30 years after birth progresses ~30 days; the Sun advances roughly a sign
	target := natalData.Instant.AddDate(30, 0, 0)
	chart, err := testRegistry().Calculate(context.Background(), models.ChartProgressed, domsvc.ChartParams{
		Natal: &natalData, Target: target, Frame: models.FrameWestern,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChartProgressed, chart.ChartType)

	sun := planetByName(t, chart.Planets, astro.BodySun)
	natalSunLon := astro.SunLongitude(natalData.Instant)
	advance := astro.NormalizeDegrees(sun.Longitude - natalSunLon)
	assert.Greater(t, advance, 25.0)
	assert.Less(t, advance, 35.0)
}

func TestSynastryCrossAspects(t *testing.T) {
	chart, err := testRegistry().Calculate(context.Background(), models.ChartSynastry, domsvc.ChartParams{
		Natal: &natalData, Partner: &partnerData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChartSynastry, chart.ChartType)
	require.Len(t, chart.Planets, 26)

	var p1, p2 int
	for _, p := range chart.Planets {
		switch {
		case len(p.Name) > 3 && p.Name[len(p.Name)-3:] == "_p1":
			p1++
		case len(p.Name) > 3 && p.Name[len(p.Name)-3:] == "_p2":
			p2++
		}
	}
	assert.Equal(t, 13, p1)
	assert.Equal(t, 13, p2)

	// aspect list is strictly cross-chart
	for _, a := range chart.Aspects {
		assert.Contains(t, a.Planet1, "_p1", "left side is person 1")
		assert.Contains(t, a.Planet2, "_p2", "right side is person 2")
	}
}

func TestCompositeMidpoints(t *testing.T) {
	reg := testRegistry()
	ctx := context.Background()

	first, err := reg.Calculate(ctx, models.ChartNatal, domsvc.ChartParams{
		Natal: &natalData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)
	second, err := reg.Calculate(ctx, models.ChartNatal, domsvc.ChartParams{
		Natal: &partnerData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	composite, err := reg.Calculate(ctx, models.ChartComposite, domsvc.ChartParams{
		Natal: &natalData, Partner: &partnerData, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChartComposite, composite.ChartType)
	require.Len(t, composite.Planets, 13)
	require.Len(t, composite.Houses, 12)

	for i, p := range composite.Planets {
		a, b := first.Planets[i], second.Planets[i]
		require.Equal(t, a.Name, p.Name)

		// midpoint sits on the shorter arc between the two source longitudes
		want := astro.MidpointLongitude(a.Longitude, b.Longitude)
		assert.InDelta(t, 0.0, astro.Separation(p.Longitude, want), 1e-9, p.Name)
		assert.Equal(t, a.IsRetrograde || b.IsRetrograde, p.IsRetrograde, p.Name)
		assert.InDelta(t, (a.SpeedDegPerDay+b.SpeedDegPerDay)/2, p.SpeedDegPerDay, 1e-9, p.Name)
	}

	// composite birth data is the mean of the pair
	assert.InDelta(t, (natalData.Latitude+partnerData.Latitude)/2, composite.BirthData.Latitude, 1e-9)
	assert.InDelta(t, (natalData.Longitude+partnerData.Longitude)/2, composite.BirthData.Longitude, 1e-9)
	mid := (natalData.Instant.UnixMilli() + partnerData.Instant.UnixMilli()) / 2
	assert.Equal(t, mid, composite.BirthData.Instant.UnixMilli())
}

func TestSolarReturnChart(t *testing.T) {
	target := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	chart, err := testRegistry().Calculate(context.Background(), models.ChartSolarReturn, domsvc.ChartParams{
		Natal: &natalData, Target: target, Frame: models.FrameWestern,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChartSolarReturn, chart.ChartType)
	assert.Equal(t, 2024, chart.BirthData.Instant.Year())

	// the month/day approximation keeps the return Sun within ~1 degree
	// of the natal Sun
	sun := planetByName(t, chart.Planets, astro.BodySun)
	diff := math.Abs(astro.SignedDelta(sun.Longitude - astro.SunLongitude(natalData.Instant)))
	assert.Less(t, diff, 1.5)
}

func planetByName(t *testing.T, planets []models.PlanetPosition, name string) models.PlanetPosition {
	t.Helper()
	for _, p := range planets {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("body %q not present", name)
	return models.PlanetPosition{}
}
