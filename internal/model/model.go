package model

import "strings"

type Indicator string

const (
	IndicatorExportVolume  Indicator = "Exportations en volume (tec)"
	IndicatorImportVolume  Indicator = "Importations en volume (tec)"
	IndicatorBalanceVolume Indicator = "Solde en volume (tec)"
	IndicatorExportValue   Indicator = "Exportations en valeur (milliers d'euros)"
	IndicatorImportValue   Indicator = "Importations en valeur (milliers d'euros)"
	IndicatorBalanceValue  Indicator = "Solde en valeur (milliers d'euros)"
)

// Indicators lists the six selectable metrics in display order.
func Indicators() []Indicator {
	return []Indicator{
		IndicatorExportVolume,
		IndicatorImportVolume,
		IndicatorBalanceVolume,
		IndicatorExportValue,
		IndicatorImportValue,
		IndicatorBalanceValue,
	}
}

func (i Indicator) Known() bool {
	for _, known := range Indicators() {
		if i == known {
			return true
		}
	}
	return false
}

// IsBalance reports whether the indicator is a net metric that can be
// negative.
func (i Indicator) IsBalance() bool {
	lower := strings.ToLower(string(i))
	return strings.Contains(lower, "solde") || strings.Contains(lower, "balance")
}

const (
	PeriodAnnualTotal = "TOTAL Annuel"
	ProductTotal      = "TOTAL"
	CountryWorld      = "Monde"
)

var Months = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

type Value struct {
	Float64 float64
	Valid   bool
}

func Some(v float64) Value { return Value{Float64: v, Valid: true} }

func None() Value { return Value{} }

type TradeRecord struct {
	Year        int
	ProductType string
	Period      string
	Country     string
	Values      map[Indicator]Value
}

// Value returns the indicator value and whether it is present.
func (r TradeRecord) Value(indicator Indicator) (float64, bool) {
	v, ok := r.Values[indicator]
	if !ok || !v.Valid {
		return 0, false
	}
	return v.Float64, true
}

func (r TradeRecord) IsWorld() bool {
	return DisplayName(r.Country) == CountryWorld
}

func (r TradeRecord) IsTotalProduct() bool {
	return strings.EqualFold(strings.TrimSpace(r.ProductType), ProductTotal)
}

type RankedEntry struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
	Rank    int     `json:"rank"`
}

// DisplayName turns a trade-dataset country key such as "__Royaume-uni" or
// "__Coree_Du_Sud" into a label. Keys are never rewritten, only labels.
func DisplayName(country string) string {
	return strings.ReplaceAll(strings.TrimLeft(country, "_"), "_", " ")
}
