// Package ranking computes per-year top-N country rankings and turns them
// into color-stable, gap-aware series for trend lines.
package ranking

import (
	"sort"

	"meatflow/internal/aggregate"
	"meatflow/internal/model"
)

const DefaultTopN = 5

// Palette is cycled over series in order of all-time cumulative magnitude.
var Palette = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#d3b5df",
	"#8e44ad", "#e67e22", "#34495e", "#c0392b", "#16a085",
	"#27ae60", "#2980b9", "#8b4513", "#d35400", "#7f8c8d",
}

// Rankings holds the top-N snapshot of every year present in the input,
// including years where nothing qualified.
type Rankings struct {
	Years  []int
	ByYear map[int][]model.RankedEntry
}

func (r Rankings) Empty() bool { return len(r.Years) == 0 }

// Build ranks countries per year by the sum of absolute indicator values.
// Ranks are dense and 1-based, ties keep input order, and only the first
// topN entries are kept. topN < 1 falls back to DefaultTopN.
func Build(records []model.TradeRecord, indicator model.Indicator, topN int) Rankings {
	if topN < 1 {
		topN = DefaultTopN
	}

	byYear := make(map[int][]model.TradeRecord)
	for _, record := range records {
		byYear[record.Year] = append(byYear[record.Year], record)
	}

	rankings := Rankings{
		Years:  make([]int, 0, len(byYear)),
		ByYear: make(map[int][]model.RankedEntry, len(byYear)),
	}
	for year := range byYear {
		rankings.Years = append(rankings.Years, year)
	}
	sort.Ints(rankings.Years)

	for _, year := range rankings.Years {
		totals := aggregate.By(byYear[year], aggregate.ByCountry, aggregate.SumAbs(indicator), aggregate.HasValue(indicator))
		rankings.ByYear[year] = rank(totals.Entries(), topN)
	}
	return rankings
}

func rank(entries []aggregate.Entry[string], topN int) []model.RankedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	ranked := make([]model.RankedEntry, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, model.RankedEntry{Country: e.Key, Value: e.Value, Rank: i + 1})
	}
	return ranked
}

// Lookup returns the entry for country in year, if it made the top N.
func (r Rankings) Lookup(year int, country string) (model.RankedEntry, bool) {
	for _, entry := range r.ByYear[year] {
		if entry.Country == country {
			return entry, true
		}
	}
	return model.RankedEntry{}, false
}

// Countries returns every country present in at least one year's top N, in
// order of first appearance (ascending year, then rank).
func (r Rankings) Countries() []string {
	seen := make(map[string]struct{})
	countries := make([]string, 0)
	for _, year := range r.Years {
		for _, entry := range r.ByYear[year] {
			if _, ok := seen[entry.Country]; ok {
				continue
			}
			seen[entry.Country] = struct{}{}
			countries = append(countries, entry.Country)
		}
	}
	return countries
}

// Totals is the all-time cumulative magnitude per country used to order
// series for color assignment.
func Totals(records []model.TradeRecord, indicator model.Indicator) *aggregate.Groups[string] {
	return aggregate.By(records, aggregate.ByCountry, aggregate.SumAbs(indicator), aggregate.HasValue(indicator))
}
