package aggregate

import (
	"math"

	"meatflow/internal/model"
)

// HasValue accepts records carrying a value for indicator.
func HasValue(indicator model.Indicator) Predicate {
	return func(r model.TradeRecord) bool {
		_, ok := r.Value(indicator)
		return ok
	}
}

// All combines predicates with AND. Nil predicates are skipped.
func All(preds ...Predicate) Predicate {
	return func(r model.TradeRecord) bool {
		for _, pred := range preds {
			if pred != nil && !pred(r) {
				return false
			}
		}
		return true
	}
}

func ByCountry(r model.TradeRecord) string { return r.Country }

func ByProduct(r model.TradeRecord) string { return r.ProductType }

func ByPeriod(r model.TradeRecord) string { return r.Period }

func ByYear(r model.TradeRecord) int { return r.Year }

// Sum adds the signed indicator values of a group.
func Sum(indicator model.Indicator) Reducer {
	return func(group []model.TradeRecord) float64 {
		var total float64
		for _, r := range group {
			if v, ok := r.Value(indicator); ok {
				total += v
			}
		}
		return total
	}
}

// SumAbs adds the absolute indicator values of a group.
func SumAbs(indicator model.Indicator) Reducer {
	return func(group []model.TradeRecord) float64 {
		var total float64
		for _, r := range group {
			if v, ok := r.Value(indicator); ok {
				total += math.Abs(v)
			}
		}
		return total
	}
}

// Mean is the arithmetic mean over the present values of a group, 0 when
// none are present.
func Mean(indicator model.Indicator) Reducer {
	return func(group []model.TradeRecord) float64 {
		var total float64
		n := 0
		for _, r := range group {
			if v, ok := r.Value(indicator); ok {
				total += v
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return total / float64(n)
	}
}
