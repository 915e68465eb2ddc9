// Package heatmap builds the product × period grid: the top-K products by
// volume as rows, the mean indicator value per period as cells.
package heatmap

import (
	"errors"
	"fmt"
	"sort"

	"meatflow/internal/aggregate"
	"meatflow/internal/colorscale"
	"meatflow/internal/model"
)

const DefaultTopK = 8

type Mode string

const (
	ModeMonths Mode = "months"
	ModeAnnual Mode = "annual"
	ModeBoth   Mode = "both"
)

var ErrInvalidMode = errors.New("heatmap: invalid period mode")

// ParseMode accepts the mode names and the labels used by the front end
// ("exclure", "uniquement", "inclure"). Empty means months only.
func ParseMode(value string) (Mode, error) {
	switch value {
	case "", string(ModeMonths), "exclure":
		return ModeMonths, nil
	case string(ModeAnnual), "uniquement":
		return ModeAnnual, nil
	case string(ModeBoth), "inclure":
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
	}
}

// PeriodDomain returns the ordered period labels displayed in mode.
func PeriodDomain(mode Mode) ([]string, error) {
	switch mode {
	case ModeMonths:
		return append([]string(nil), model.Months...), nil
	case ModeAnnual:
		return []string{model.PeriodAnnualTotal}, nil
	case ModeBoth:
		return append(append([]string(nil), model.Months...), model.PeriodAnnualTotal), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

type Cell struct {
	Category string  `json:"category"`
	Period   string  `json:"period"`
	Value    float64 `json:"value"`
}

type Matrix struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Cells   []Cell   `json:"cells"`
}

func (m Matrix) Empty() bool { return len(m.Cells) == 0 }

// Domain derives the cell color domain from the emitted cell means.
func (m Matrix) Domain(kind colorscale.Kind) colorscale.Domain {
	values := make([]float64, 0, len(m.Cells))
	for _, c := range m.Cells {
		values = append(values, c.Value)
	}
	return colorscale.FromValues(values, kind)
}

// Build selects the topK products by absolute indicator volume across all
// periods, then averages the indicator per (product, period) and keeps only
// cells whose period is in periodDomain. Row selection never depends on
// periodDomain. Cells are ordered by row, then by periodDomain position.
func Build(records []model.TradeRecord, indicator model.Indicator, periodDomain []string, topK int) Matrix {
	if topK < 1 {
		topK = DefaultTopK
	}
	present := aggregate.HasValue(indicator)

	volume := aggregate.By(records, aggregate.ByProduct, aggregate.SumAbs(indicator), present)
	entries := volume.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > topK {
		entries = entries[:topK]
	}

	rows := make([]string, 0, len(entries))
	selected := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Key)
		selected[e.Key] = struct{}{}
	}

	inRows := func(r model.TradeRecord) bool {
		_, ok := selected[r.ProductType]
		return ok
	}
	means := aggregate.Nested(records, aggregate.ByProduct, aggregate.ByPeriod, aggregate.Mean(indicator), aggregate.All(inRows, present))

	columns := append([]string(nil), periodDomain...)
	cells := make([]Cell, 0, len(rows)*len(columns))
	for _, row := range rows {
		inner := means.Inner(row)
		for _, period := range columns {
			v, ok := inner.Get(period)
			if !ok {
				continue
			}
			cells = append(cells, Cell{Category: row, Period: period, Value: v})
		}
	}

	return Matrix{Rows: rows, Columns: columns, Cells: cells}
}
