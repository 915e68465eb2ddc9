package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"meatflow/internal/colorscale"
	"meatflow/internal/heatmap"
	"meatflow/internal/model"
	"meatflow/internal/view"
)

var ErrBadQuery = errors.New("server: invalid query")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Code: http.StatusText(status), Message: err.Error()})
}

// writeAppError maps validation sentinels to 400 and masks the rest.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadQuery),
		errors.Is(err, view.ErrUnknownIndicator),
		errors.Is(err, view.ErrInvalidPeriodMode):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

// parseSelection reads indicator, year, all_years, world, total and periods
// from the query string.
func parseSelection(r *http.Request) (view.Selection, error) {
	q := r.URL.Query()
	sel := view.Selection{
		Indicator:  model.Indicator(q.Get("indicator")),
		PeriodMode: heatmap.Mode(q.Get("periods")),
	}

	var err error
	if sel.AllYears, err = parseBool(q.Get("all_years")); err != nil {
		return sel, fmt.Errorf("%w: all_years: %v", ErrBadQuery, err)
	}
	if sel.IncludeWorld, err = parseBool(q.Get("world")); err != nil {
		return sel, fmt.Errorf("%w: world: %v", ErrBadQuery, err)
	}
	if sel.IncludeTotal, err = parseBool(q.Get("total")); err != nil {
		return sel, fmt.Errorf("%w: total: %v", ErrBadQuery, err)
	}
	if v := q.Get("year"); v != "" {
		if sel.Year, err = strconv.Atoi(v); err != nil {
			return sel, fmt.Errorf("%w: year: %v", ErrBadQuery, err)
		}
	} else if !sel.AllYears {
		return sel, fmt.Errorf("%w: year or all_years is required", ErrBadQuery)
	}
	return sel, nil
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.engine.Len(),
	})
}

type indicatorInfo struct {
	Name string          `json:"name"`
	Kind colorscale.Kind `json:"kind"`
}

func (s *Server) handleIndicators(w http.ResponseWriter, _ *http.Request) {
	indicators := make([]indicatorInfo, 0, len(model.Indicators()))
	for _, ind := range model.Indicators() {
		indicators = append(indicators, indicatorInfo{Name: string(ind), Kind: colorscale.KindFor(ind)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"indicators":   indicators,
		"years":        s.engine.Years(),
		"period_modes": []heatmap.Mode{heatmap.ModeMonths, heatmap.ModeAnnual, heatmap.ModeBoth},
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	snap, err := s.engine.Snapshot(sel)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	fills, err := s.engine.Choropleth(sel, s.features)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fills)
}

func (s *Server) handleMappingGaps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.MappingGaps(s.features))
}
