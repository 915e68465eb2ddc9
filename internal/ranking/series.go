package ranking

import (
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"meatflow/internal/aggregate"
	"meatflow/internal/model"
)

type Point struct {
	Year  int     `json:"year"`
	Rank  int     `json:"rank"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Segment is a maximal run of points with consecutive years.
type Segment []Point

// Connectable reports whether the segment can be drawn as a line.
func (s Segment) Connectable() bool { return len(s) >= 2 }

type Series struct {
	Country  string    `json:"country"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Points   []Point   `json:"points"`
	Segments []Segment `json:"segments"`
}

// Lines returns the segments eligible for line drawing.
func (s Series) Lines() []Segment {
	lines := make([]Segment, 0, len(s.Segments))
	for _, seg := range s.Segments {
		if seg.Connectable() {
			lines = append(lines, seg)
		}
	}
	return lines
}

// BuildSeries creates one series per country that reached the top N in any
// year. Series are ordered by totals (descending, ties in first appearance
// order) and colored by cycling Palette in that order, so a country's color
// depends only on the dataset and never on the year being viewed.
func BuildSeries(rankings Rankings, totals *aggregate.Groups[string]) []Series {
	countries := rankings.Countries()
	sort.SliceStable(countries, func(i, j int) bool {
		return totals.Value(countries[i]) > totals.Value(countries[j])
	})

	series := make([]Series, 0, len(countries))
	for i, country := range countries {
		points := make([]Point, 0, len(rankings.Years))
		for _, year := range rankings.Years {
			entry, ok := rankings.Lookup(year, country)
			if !ok {
				continue
			}
			points = append(points, Point{
				Year:  year,
				Rank:  entry.Rank,
				Value: entry.Value,
				Label: humanize.Comma(int64(math.Round(entry.Value))),
			})
		}
		if len(points) == 0 {
			continue
		}
		series = append(series, Series{
			Country:  country,
			Name:     model.DisplayName(country),
			Color:    Palette[i%len(Palette)],
			Points:   points,
			Segments: Segments(points),
		})
	}
	return series
}

// Segments splits points (ascending by year) wherever two neighbours are not
// exactly one year apart.
func Segments(points []Point) []Segment {
	if len(points) == 0 {
		return nil
	}
	segments := make([]Segment, 0, 1)
	current := Segment{points[0]}
	for i := 1; i < len(points); i++ {
		if points[i].Year-points[i-1].Year != 1 {
			segments = append(segments, current)
			current = Segment{}
		}
		current = append(current, points[i])
	}
	return append(segments, current)
}

type Result struct {
	Rankings Rankings
	Series   []Series
}

func (r Result) Empty() bool { return r.Rankings.Empty() }

// Compute runs Build and BuildSeries over the same record set.
func Compute(records []model.TradeRecord, indicator model.Indicator, topN int) Result {
	rankings := Build(records, indicator, topN)
	if rankings.Empty() {
		return Result{Rankings: rankings, Series: []Series{}}
	}
	return Result{
		Rankings: rankings,
		Series:   BuildSeries(rankings, Totals(records, indicator)),
	}
}
