// Package colorscale derives the numeric color domain for the choropleth and
// heatmap and maps values onto color ramps.
//
// The domain is always computed from a reference record set (year and
// indicator selection only). Display-only filters never reach this package,
// which keeps the legend stable while the user toggles them.
package colorscale

import (
	"math"

	"meatflow/internal/aggregate"
	"meatflow/internal/model"
)

type Kind string

const (
	Sequential Kind = "sequential"
	Divergent  Kind = "divergent"
)

// DefaultSpan replaces a zero-width domain.
const DefaultSpan = 1.0

type Domain struct {
	Kind Kind    `json:"kind"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func (d Domain) Span() float64 { return d.Max - d.Min }

// KindFor picks divergent for balance indicators and sequential otherwise.
func KindFor(indicator model.Indicator) Kind {
	if indicator.IsBalance() {
		return Divergent
	}
	return Sequential
}

// Compute aggregates reference by country and derives the domain.
//
// Divergent: signed sums, symmetric [-m, m] with m the largest magnitude.
// Sequential: absolute sums, [0, max].
func Compute(reference []model.TradeRecord, indicator model.Indicator, kind Kind) Domain {
	reduce := aggregate.SumAbs(indicator)
	if kind == Divergent {
		reduce = aggregate.Sum(indicator)
	}
	totals := aggregate.By(reference, aggregate.ByCountry, reduce, aggregate.HasValue(indicator))

	values := make([]float64, 0, totals.Len())
	for _, e := range totals.Entries() {
		values = append(values, e.Value)
	}
	if kind == Divergent {
		return symmetric(values)
	}
	return Domain{Kind: Sequential, Min: 0, Max: guardMax(maxOf(values), 0)}
}

// FromValues derives a domain directly from already reduced values, as the
// heatmap does with its cell means: symmetric for divergent, [min, max] for
// sequential.
func FromValues(values []float64, kind Kind) Domain {
	if kind == Divergent {
		return symmetric(values)
	}
	if len(values) == 0 {
		return Domain{Kind: Sequential, Min: 0, Max: DefaultSpan}
	}
	lo := math.Inf(1)
	for _, v := range values {
		lo = math.Min(lo, v)
	}
	return Domain{Kind: Sequential, Min: lo, Max: guardMax(maxOf(values), lo)}
}

func symmetric(values []float64) Domain {
	var magnitude float64
	for _, v := range values {
		magnitude = math.Max(magnitude, math.Abs(v))
	}
	if magnitude == 0 || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		magnitude = DefaultSpan
	}
	return Domain{Kind: Divergent, Min: -magnitude, Max: magnitude}
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	hi := math.Inf(-1)
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	return hi
}

func guardMax(hi, lo float64) float64 {
	if math.IsNaN(hi) || math.IsInf(hi, 0) || hi <= lo {
		return lo + DefaultSpan
	}
	return hi
}
