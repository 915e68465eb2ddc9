package heatmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatflow/internal/colorscale"
	"meatflow/internal/model"
)

const ind = model.IndicatorImportVolume

func rec(product, period string, v model.Value) model.TradeRecord {
	return model.TradeRecord{
		Year:        2022,
		Country:     "__Allemagne",
		ProductType: product,
		Period:      period,
		Values:      map[model.Indicator]model.Value{ind: v},
	}
}

func fixture() []model.TradeRecord {
	return []model.TradeRecord{
		rec("Bovins", "Janvier", model.Some(10)),
		rec("Bovins", "Janvier", model.Some(30)),
		rec("Bovins", "Mars", model.Some(5)),
		rec("Bovins", model.PeriodAnnualTotal, model.Some(400)),
		rec("Porcins", "Février", model.Some(-50)),
		rec("Porcins", "Juillet", model.None()),
		rec("Ovins", "Janvier", model.Some(1)),
		rec("Volailles", "Janvier", model.Some(90)),
		rec("Volailles", "Hors période", model.Some(9)),
	}
}

func TestPeriodDomain(t *testing.T) {
	months, err := PeriodDomain(ModeMonths)
	require.NoError(t, err)
	assert.Len(t, months, 12)
	assert.Equal(t, "Janvier", months[0])

	annual, err := PeriodDomain(ModeAnnual)
	require.NoError(t, err)
	assert.Equal(t, []string{model.PeriodAnnualTotal}, annual)

	both, err := PeriodDomain(ModeBoth)
	require.NoError(t, err)
	assert.Len(t, both, 13)
	assert.Equal(t, model.PeriodAnnualTotal, both[12])

	_, err = PeriodDomain("weekly")
	assert.True(t, errors.Is(err, ErrInvalidMode))

	months[0] = "changed"
	again, _ := PeriodDomain(ModeMonths)
	assert.Equal(t, "Janvier", again[0])
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"": ModeMonths, "months": ModeMonths, "exclure": ModeMonths,
		"annual": ModeAnnual, "uniquement": ModeAnnual,
		"both": ModeBoth, "inclure": ModeBoth,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("sometimes")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestBuildTopKRows(t *testing.T) {
	domain, _ := PeriodDomain(ModeMonths)

	m := Build(fixture(), ind, domain, 2)

	assert.Equal(t, []string{"Bovins", "Volailles"}, m.Rows)
	for _, c := range m.Cells {
		assert.Contains(t, m.Rows, c.Category)
	}
}

func TestBuildMeansAndOrdering(t *testing.T) {
	domain, _ := PeriodDomain(ModeMonths)

	m := Build(fixture(), ind, domain, 8)

	assert.Equal(t, []string{"Bovins", "Volailles", "Porcins", "Ovins"}, m.Rows)
	assert.Equal(t, []Cell{
		{Category: "Bovins", Period: "Janvier", Value: 20},
		{Category: "Bovins", Period: "Mars", Value: 5},
		{Category: "Volailles", Period: "Janvier", Value: 90},
		{Category: "Porcins", Period: "Février", Value: -50},
		{Category: "Ovins", Period: "Janvier", Value: 1},
	}, m.Cells)
}

func TestBuildCellsStayInPeriodDomain(t *testing.T) {
	for _, mode := range []Mode{ModeMonths, ModeAnnual, ModeBoth} {
		domain, err := PeriodDomain(mode)
		require.NoError(t, err)
		m := Build(fixture(), ind, domain, 8)
		assert.Equal(t, domain, m.Columns)
		for _, c := range m.Cells {
			assert.Contains(t, domain, c.Period)
		}
	}
}

func TestBuildRowsIndependentOfPeriodDomain(t *testing.T) {
	months, _ := PeriodDomain(ModeMonths)
	annual, _ := PeriodDomain(ModeAnnual)

	a := Build(fixture(), ind, months, 3)
	b := Build(fixture(), ind, annual, 3)

	assert.Equal(t, a.Rows, b.Rows)
	assert.NotEqual(t, a.Cells, b.Cells)
	assert.Equal(t, []Cell{{Category: "Bovins", Period: model.PeriodAnnualTotal, Value: 400}}, b.Cells)
}

func TestBuildEmpty(t *testing.T) {
	domain, _ := PeriodDomain(ModeBoth)
	m := Build(nil, ind, domain, 8)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Rows)
	assert.Equal(t, colorscale.Domain{Kind: colorscale.Sequential, Min: 0, Max: 1}, m.Domain(colorscale.Sequential))
}

func TestMatrixDomain(t *testing.T) {
	domain, _ := PeriodDomain(ModeMonths)
	m := Build(fixture(), ind, domain, 8)
	assert.Equal(t, colorscale.Domain{Kind: colorscale.Divergent, Min: -90, Max: 90}, m.Domain(colorscale.Divergent))
	assert.Equal(t, colorscale.Domain{Kind: colorscale.Sequential, Min: -50, Max: 90}, m.Domain(colorscale.Sequential))
}
