package view

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatflow/internal/colorscale"
	"meatflow/internal/geo"
	"meatflow/internal/heatmap"
	"meatflow/internal/metrics"
	"meatflow/internal/model"
	"meatflow/internal/names"
)

func rec(year int, product, period, country string, ind model.Indicator, v model.Value) model.TradeRecord {
	return model.TradeRecord{
		Year:        year,
		ProductType: product,
		Period:      period,
		Country:     country,
		Values:      map[model.Indicator]model.Value{ind: v},
	}
}

const exports = model.IndicatorExportVolume

func fixture() []model.TradeRecord {
	return []model.TradeRecord{
		rec(2020, "Bovins", "Janvier", "__Allemagne", exports, model.Some(100)),
		rec(2020, "Bovins", "Janvier", "__Allemagne", exports, model.None()),
		rec(2020, "Porcins", "Février", "__Espagne (y compris Canaries)", exports, model.Some(40)),
		rec(2020, "Bovins", model.PeriodAnnualTotal, "__Allemagne", exports, model.Some(900)),
		rec(2020, "TOTAL", "Janvier", "__Belgique", exports, model.Some(70)),
		rec(2020, "Bovins", "Janvier", "__Monde", exports, model.Some(1000)),
		rec(2021, "Bovins", "Mars", "__Allemagne", exports, model.Some(10)),
	}
}

func newEngine(t *testing.T, records []model.TradeRecord, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(records, opts...)
	require.NoError(t, err)
	return e
}

func TestSelectionNormalize(t *testing.T) {
	sel, err := Selection{Indicator: exports, Year: 2020, AllYears: true, PeriodMode: "inclure"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Year)
	assert.Equal(t, heatmap.ModeBoth, sel.PeriodMode)

	_, err = Selection{Indicator: "Tonnes"}.Normalize()
	assert.ErrorIs(t, err, ErrUnknownIndicator)

	_, err = Selection{Indicator: exports, PeriodMode: "weekly"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidPeriodMode)
}

func TestReferenceRecordsIgnoreToggles(t *testing.T) {
	sel := Selection{Indicator: exports, Year: 2020}
	ref := ReferenceRecords(fixture(), sel)
	// null row and 2021 row dropped, world and TOTAL kept
	assert.Len(t, ref, 5)

	display := DisplayRecords(fixture(), sel)
	countries := make([]string, 0, len(display))
	for _, r := range display {
		countries = append(countries, r.Country)
	}
	assert.Equal(t, []string{"__Allemagne", "__Espagne (y compris Canaries)"}, countries)
}

func TestSnapshotTotalsSkipMissingValues(t *testing.T) {
	records := []model.TradeRecord{
		rec(2020, "Bovins", "Janvier", "France", exports, model.Some(100)),
		rec(2020, "Bovins", "Janvier", "France", exports, model.None()),
	}
	snap, err := newEngine(t, records).Snapshot(Selection{Indicator: exports, Year: 2020})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"France": 100}, snap.Totals)
	assert.False(t, snap.Empty)
}

func TestSnapshotDomainStableAcrossToggles(t *testing.T) {
	e := newEngine(t, fixture())
	base := Selection{Indicator: exports, Year: 2020}

	withWorld := base
	withWorld.IncludeWorld = true
	withWorld.IncludeTotal = true
	withWorld.PeriodMode = heatmap.ModeBoth

	a, err := e.Snapshot(base)
	require.NoError(t, err)
	b, err := e.Snapshot(withWorld)
	require.NoError(t, err)

	assert.Equal(t, a.Domain, b.Domain)
	assert.Equal(t, colorscale.Domain{Kind: colorscale.Sequential, Min: 0, Max: 1000}, a.Domain)
	assert.NotContains(t, a.Totals, "__Monde")
	assert.Contains(t, b.Totals, "__Monde")
	assert.Equal(t, 1000.0, b.Totals["__Allemagne"])
}

func TestSnapshotDivergentDomain(t *testing.T) {
	balance := model.IndicatorBalanceValue
	records := []model.TradeRecord{
		rec(2022, "Bovins", "Janvier", "A", balance, model.Some(-40)),
		rec(2022, "Bovins", "Janvier", "B", balance, model.Some(60)),
	}
	snap, err := newEngine(t, records).Snapshot(Selection{Indicator: balance, Year: 2022})
	require.NoError(t, err)

	assert.Equal(t, colorscale.Domain{Kind: colorscale.Divergent, Min: -60, Max: 60}, snap.Domain)
	assert.Equal(t, map[string]float64{"A": -40, "B": 60}, snap.Totals)
	require.Len(t, snap.Legend, DefaultLegendStops)
	assert.Equal(t, "#f7f7f7", snap.Legend[2].Color)
}

func TestSnapshotRankingSpansAllYears(t *testing.T) {
	snap, err := newEngine(t, fixture()).Snapshot(Selection{Indicator: exports, Year: 2021})
	require.NoError(t, err)

	assert.Equal(t, []int{2020, 2021}, snap.Ranking.Years)
	require.NotNil(t, snap.Ranking.Marker)
	assert.Equal(t, 2021, *snap.Ranking.Marker)
	require.NotEmpty(t, snap.Ranking.Series)
	assert.Equal(t, "__Allemagne", snap.Ranking.Series[0].Country)
}

func TestSnapshotMarkerOutsideRange(t *testing.T) {
	e := newEngine(t, fixture())

	snap, err := e.Snapshot(Selection{Indicator: exports, Year: 2030})
	require.NoError(t, err)
	assert.Nil(t, snap.Ranking.Marker)
	assert.True(t, snap.Empty)
	assert.Empty(t, snap.Totals)

	snap, err = e.Snapshot(Selection{Indicator: exports, AllYears: true})
	require.NoError(t, err)
	assert.Nil(t, snap.Ranking.Marker)
}

func TestSnapshotHeatmapRowsIgnorePeriodMode(t *testing.T) {
	e := newEngine(t, fixture())

	months, err := e.Snapshot(Selection{Indicator: exports, Year: 2020, PeriodMode: heatmap.ModeMonths})
	require.NoError(t, err)
	annual, err := e.Snapshot(Selection{Indicator: exports, Year: 2020, PeriodMode: heatmap.ModeAnnual})
	require.NoError(t, err)

	assert.Equal(t, months.Heatmap.Rows, annual.Heatmap.Rows)
	assert.Equal(t, []string{"Bovins", "Porcins"}, annual.Heatmap.Rows)
	require.Len(t, annual.Heatmap.Cells, 1)
	assert.Equal(t, model.PeriodAnnualTotal, annual.Heatmap.Cells[0].Period)
}

func TestSnapshotCache(t *testing.T) {
	m := metrics.New()
	e := newEngine(t, fixture(), WithMetrics(m), WithCacheSize(2))

	sel := Selection{Indicator: exports, Year: 2020}
	first, err := e.Snapshot(sel)
	require.NoError(t, err)
	// "exclure" normalizes to the same key
	sel.PeriodMode = "exclure"
	second, err := e.Snapshot(sel)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotBuilds.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotBuilds.WithLabelValues("hit")))
	assert.Equal(t, float64(len(fixture())), testutil.ToFloat64(m.RecordsLoaded))
}

func TestSnapshotRejectsInvalidSelection(t *testing.T) {
	e := newEngine(t, fixture())
	_, err := e.Snapshot(Selection{Indicator: "nope"})
	assert.ErrorIs(t, err, ErrUnknownIndicator)
}

func TestChoropleth(t *testing.T) {
	e := newEngine(t, fixture())
	features := []geo.Feature{{Name: "Germany"}, {Name: "Spain"}, {Name: "Atlantis"}}

	fills, err := e.Choropleth(Selection{Indicator: exports, Year: 2020, PeriodMode: heatmap.ModeBoth}, features)
	require.NoError(t, err)
	require.Len(t, fills, 3)

	assert.Equal(t, "__Allemagne", fills[0].Country)
	assert.True(t, fills[0].HasData)
	assert.Equal(t, 1000.0, fills[0].Value)
	assert.Equal(t, "1,000", fills[0].Label)
	assert.NotEqual(t, colorscale.NoDataColor, fills[0].Color)

	assert.True(t, fills[1].HasData)
	assert.Equal(t, "40", fills[1].Label)

	assert.Equal(t, "Atlantis", fills[2].Country)
	assert.False(t, fills[2].HasData)
	assert.Equal(t, colorscale.NoDataColor, fills[2].Color)
	assert.Empty(t, fills[2].Label)
}

func TestMappingGaps(t *testing.T) {
	records := append(fixture(), rec(2020, "Bovins", "Janvier", "Atlantis", exports, model.Some(1)))
	e := newEngine(t, records)
	features := []geo.Feature{{Name: "Germany"}, {Name: "Utopia"}, {Name: "Atlantis"}, {Name: "Lemuria"}, {Name: "Utopia"}}

	assert.Equal(t, []string{"Lemuria", "Utopia"}, e.MappingGaps(features))
}

func TestEngineOptions(t *testing.T) {
	resolver := names.NewResolver(map[string]string{"Deutschland": "__Allemagne"})
	e := newEngine(t, fixture(), WithResolver(resolver), WithLegendStops(3), WithTopN(1), WithCacheSize(-1))

	sel := Selection{Indicator: exports, Year: 2020}
	fills, err := e.Choropleth(sel, []geo.Feature{{Name: "Deutschland"}, {Name: "Germany"}})
	require.NoError(t, err)
	assert.True(t, fills[0].HasData)
	assert.Equal(t, "Germany", fills[1].Country)

	snap, err := e.Snapshot(sel)
	require.NoError(t, err)
	assert.Len(t, snap.Legend, 3)
	assert.Len(t, snap.Ranking.ByYear[2020], 1)
	assert.Equal(t, []int{2020, 2021}, e.Years())
	assert.Equal(t, len(fixture()), e.Len())
}
