package view

import (
	"errors"
	"fmt"

	"meatflow/internal/aggregate"
	"meatflow/internal/heatmap"
	"meatflow/internal/model"
)

var (
	ErrUnknownIndicator  = errors.New("view: unknown indicator")
	ErrInvalidPeriodMode = heatmap.ErrInvalidMode
)

// Selection carries the user's filter state. It is comparable and used as
// the snapshot cache key.
type Selection struct {
	Indicator    model.Indicator `json:"indicator"`
	Year         int             `json:"year"`
	AllYears     bool            `json:"all_years"`
	IncludeWorld bool            `json:"include_world"`
	IncludeTotal bool            `json:"include_total"`
	PeriodMode   heatmap.Mode    `json:"period_mode"`
}

// Normalize validates the selection and canonicalizes the period mode.
// Year is zeroed when AllYears is set so equivalent selections share a key.
func (s Selection) Normalize() (Selection, error) {
	if !s.Indicator.Known() {
		return s, fmt.Errorf("%w: %q", ErrUnknownIndicator, s.Indicator)
	}
	mode, err := heatmap.ParseMode(string(s.PeriodMode))
	if err != nil {
		return s, err
	}
	s.PeriodMode = mode
	if s.AllYears {
		s.Year = 0
	}
	return s, nil
}

func (s Selection) matchesYear(r model.TradeRecord) bool {
	return s.AllYears || r.Year == s.Year
}

func (s Selection) keeps(r model.TradeRecord) bool {
	if !s.IncludeWorld && r.IsWorld() {
		return false
	}
	if !s.IncludeTotal && r.IsTotalProduct() {
		return false
	}
	return true
}

// ReferenceRecords filters by year and indicator presence only. The color
// domain is computed from this set so it does not move when toggles change.
func ReferenceRecords(records []model.TradeRecord, sel Selection) []model.TradeRecord {
	present := aggregate.HasValue(sel.Indicator)
	return filter(records, func(r model.TradeRecord) bool {
		return sel.matchesYear(r) && present(r)
	})
}

// DisplayRecords narrows the reference set by the world and TOTAL toggles
// and by the periods shown in the selected mode. An invalid mode keeps all
// periods.
func DisplayRecords(records []model.TradeRecord, sel Selection) []model.TradeRecord {
	periods := periodSet(sel.PeriodMode)
	return filter(toggled(records, sel), func(r model.TradeRecord) bool {
		if periods == nil {
			return true
		}
		_, ok := periods[r.Period]
		return ok
	})
}

func toggled(records []model.TradeRecord, sel Selection) []model.TradeRecord {
	present := aggregate.HasValue(sel.Indicator)
	return filter(records, func(r model.TradeRecord) bool {
		return sel.matchesYear(r) && present(r) && sel.keeps(r)
	})
}

func periodSet(mode heatmap.Mode) map[string]struct{} {
	parsed, err := heatmap.ParseMode(string(mode))
	if err != nil {
		return nil
	}
	domain, err := heatmap.PeriodDomain(parsed)
	if err != nil {
		return nil
	}
	set := make(map[string]struct{}, len(domain))
	for _, p := range domain {
		set[p] = struct{}{}
	}
	return set
}

func filter(records []model.TradeRecord, keep func(model.TradeRecord) bool) []model.TradeRecord {
	out := make([]model.TradeRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
