package view

import (
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	"meatflow/internal/aggregate"
	"meatflow/internal/colorscale"
	"meatflow/internal/geo"
	"meatflow/internal/heatmap"
	"meatflow/internal/logging"
	"meatflow/internal/metrics"
	"meatflow/internal/model"
	"meatflow/internal/names"
	"meatflow/internal/ranking"
)

const (
	DefaultCacheSize   = 64
	DefaultLegendStops = 5
)

// Engine derives snapshots from an immutable record set. It is safe for
// concurrent use; cached snapshots are shared and must not be modified.
type Engine struct {
	records   []model.TradeRecord
	countries map[string]struct{}
	years     []int

	resolver    *names.Resolver
	logger      logging.Logger
	metrics     *metrics.Metrics
	cache       *lru.Cache[Selection, *Snapshot]
	cacheSize   int
	topN        int
	topK        int
	exponent    float64
	legendStops int
}

type Option func(*Engine)

func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithResolver(r *names.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

func WithExponent(exponent float64) Option {
	return func(e *Engine) {
		if exponent > 0 && exponent <= 1 {
			e.exponent = exponent
		}
	}
}

func WithCacheSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cacheSize = size
		}
	}
}

func WithLegendStops(n int) Option {
	return func(e *Engine) {
		if n >= 2 {
			e.legendStops = n
		}
	}
}

// NewEngine takes ownership of records; the caller must not modify them
// afterwards.
func NewEngine(records []model.TradeRecord, opts ...Option) (*Engine, error) {
	e := &Engine{
		records:     records,
		resolver:    names.Default(),
		logger:      logging.NewNop(),
		cacheSize:   DefaultCacheSize,
		topN:        ranking.DefaultTopN,
		topK:        heatmap.DefaultTopK,
		exponent:    colorscale.DefaultExponent,
		legendStops: DefaultLegendStops,
	}
	for _, opt := range opts {
		opt(e)
	}

	cache, err := lru.New[Selection, *Snapshot](e.cacheSize)
	if err != nil {
		return nil, err
	}
	e.cache = cache

	e.countries = make(map[string]struct{})
	seenYear := make(map[int]struct{})
	for _, r := range records {
		e.countries[r.Country] = struct{}{}
		if _, ok := seenYear[r.Year]; !ok {
			seenYear[r.Year] = struct{}{}
			e.years = append(e.years, r.Year)
		}
	}
	sort.Ints(e.years)

	if e.metrics != nil {
		e.metrics.RecordsLoaded.Set(float64(len(records)))
	}
	e.logger.Info("engine ready",
		logging.Int("records", len(records)),
		logging.Int("countries", len(e.countries)),
		logging.Int("years", len(e.years)),
	)
	return e, nil
}

// Years returns the distinct record years in ascending order.
func (e *Engine) Years() []int {
	return append([]int(nil), e.years...)
}

func (e *Engine) Len() int { return len(e.records) }

type RankingView struct {
	Years  []int                       `json:"years"`
	ByYear map[int][]model.RankedEntry `json:"by_year"`
	Series []ranking.Series            `json:"series"`
	Marker *int                        `json:"marker,omitempty"`
}

type HeatmapView struct {
	heatmap.Matrix
	Domain colorscale.Domain       `json:"domain"`
	Legend []colorscale.LegendStop `json:"legend"`
}

// Snapshot holds everything the rendering layer needs for one selection.
type Snapshot struct {
	Selection Selection               `json:"selection"`
	Empty     bool                    `json:"empty"`
	Totals    map[string]float64      `json:"totals"`
	Domain    colorscale.Domain       `json:"domain"`
	Legend    []colorscale.LegendStop `json:"legend"`
	Ranking   RankingView             `json:"ranking"`
	Heatmap   HeatmapView             `json:"heatmap"`
}

// Snapshot validates sel and returns the derived view, from cache when the
// same selection was computed before.
func (e *Engine) Snapshot(sel Selection) (*Snapshot, error) {
	sel, err := sel.Normalize()
	if err != nil {
		return nil, err
	}

	if snap, ok := e.cache.Get(sel); ok {
		e.countBuild("hit")
		e.logger.Debug("snapshot cache hit", logging.String("indicator", string(sel.Indicator)), logging.Int("year", sel.Year))
		return snap, nil
	}
	e.countBuild("miss")

	start := time.Now()
	snap := e.build(sel)
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.SnapshotDuration.Observe(elapsed.Seconds())
	}

	if snap.Empty {
		if e.metrics != nil {
			e.metrics.EmptySnapshots.Inc()
		}
		e.logger.Debug("no data for selection",
			logging.String("indicator", string(sel.Indicator)),
			logging.Int("year", sel.Year),
			logging.Bool("all_years", sel.AllYears),
		)
	}
	e.logger.Debug("snapshot built",
		logging.String("indicator", string(sel.Indicator)),
		logging.Int("year", sel.Year),
		logging.Int("countries", len(snap.Totals)),
		logging.Duration("elapsed", elapsed),
	)

	e.cache.Add(sel, snap)
	return snap, nil
}

func (e *Engine) build(sel Selection) *Snapshot {
	kind := colorscale.KindFor(sel.Indicator)

	domain := colorscale.Compute(ReferenceRecords(e.records, sel), sel.Indicator, kind)
	scale := e.scale(domain)

	reduce := aggregate.SumAbs(sel.Indicator)
	if kind == colorscale.Divergent {
		reduce = aggregate.Sum(sel.Indicator)
	}
	totals := aggregate.By(
		DisplayRecords(e.records, sel),
		aggregate.ByCountry,
		reduce,
		aggregate.HasValue(sel.Indicator),
	).Map()

	allYears := sel
	allYears.AllYears = true
	result := ranking.Compute(DisplayRecords(e.records, allYears), sel.Indicator, e.topN)

	periods, _ := heatmap.PeriodDomain(sel.PeriodMode)
	matrix := heatmap.Build(toggled(e.records, sel), sel.Indicator, periods, e.topK)
	heatDomain := matrix.Domain(kind)

	return &Snapshot{
		Selection: sel,
		Empty:     len(totals) == 0,
		Totals:    totals,
		Domain:    scale.Domain(),
		Legend:    scale.Legend(e.legendStops),
		Ranking: RankingView{
			Years:  result.Rankings.Years,
			ByYear: result.Rankings.ByYear,
			Series: result.Series,
			Marker: yearMarker(sel, result.Rankings.Years),
		},
		Heatmap: HeatmapView{
			Matrix: matrix,
			Domain: heatDomain,
			Legend: e.scale(heatDomain).Legend(e.legendStops),
		},
	}
}

func (e *Engine) scale(domain colorscale.Domain) colorscale.Scale {
	return colorscale.NewScale(domain, colorscale.WithExponent(e.exponent))
}

// yearMarker returns the selected year when it falls inside the ranked
// year range.
func yearMarker(sel Selection, years []int) *int {
	if sel.AllYears || len(years) == 0 {
		return nil
	}
	if sel.Year < years[0] || sel.Year > years[len(years)-1] {
		return nil
	}
	year := sel.Year
	return &year
}

func (e *Engine) countBuild(outcome string) {
	if e.metrics != nil {
		e.metrics.SnapshotBuilds.WithLabelValues(outcome).Inc()
	}
}

type Fill struct {
	GeoName string  `json:"geo_name"`
	Country string  `json:"country"`
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
	Color   string  `json:"color"`
	Label   string  `json:"label"`
}

// Choropleth resolves every feature name into the trade vocabulary and
// colors it from the snapshot totals. Unmapped names come out as no data.
func (e *Engine) Choropleth(sel Selection, features []geo.Feature) ([]Fill, error) {
	snap, err := e.Snapshot(sel)
	if err != nil {
		return nil, err
	}
	scale := e.scale(snap.Domain)

	fills := make([]Fill, 0, len(features))
	for _, f := range features {
		country := e.resolver.Resolve(f.Name)
		value, ok := snap.Totals[country]
		color, hasData := scale.Fill(value, ok)
		fill := Fill{
			GeoName: f.Name,
			Country: country,
			Value:   value,
			HasData: hasData,
			Color:   color,
		}
		if hasData {
			fill.Label = humanize.Comma(int64(math.Round(value)))
		}
		fills = append(fills, fill)
	}
	return fills, nil
}

// MappingGaps lists feature names that the resolver does not know and that
// do not appear verbatim as a country in the records. Sorted, no duplicates.
func (e *Engine) MappingGaps(features []geo.Feature) []string {
	seen := make(map[string]struct{})
	gaps := make([]string, 0)
	for _, f := range features {
		if e.resolver.Known(f.Name) {
			continue
		}
		if _, ok := e.countries[f.Name]; ok {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		gaps = append(gaps, f.Name)
	}
	sort.Strings(gaps)
	return gaps
}
