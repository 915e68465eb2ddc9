package colorscale

import (
	"fmt"
	"math"
)

const (
	DefaultExponent = 0.5
	NoDataColor     = "#ececec"
)

type rgb struct{ r, g, b float64 }

// Ramp is a list of evenly spaced color stops.
type Ramp []rgb

// YlOrRd is the sequential choropleth ramp.
var YlOrRd = Ramp{
	{255, 255, 204}, {255, 237, 160}, {254, 217, 118}, {254, 178, 76},
	{253, 141, 60}, {252, 78, 42}, {227, 26, 28}, {189, 0, 38}, {128, 0, 38},
}

// RdBu is the divergent ramp: red for deficits, blue for surpluses, near
// white at zero.
var RdBu = Ramp{
	{103, 0, 31}, {178, 24, 43}, {214, 96, 77}, {244, 165, 130}, {247, 247, 247},
	{146, 197, 222}, {67, 147, 195}, {33, 102, 172}, {5, 48, 97},
}

// YlGnBu is the sequential heatmap ramp.
var YlGnBu = Ramp{
	{255, 255, 217}, {237, 248, 177}, {199, 233, 180}, {127, 205, 187},
	{65, 182, 196}, {29, 145, 192}, {34, 94, 168}, {37, 52, 148}, {8, 29, 88},
}

// At interpolates the ramp at t in [0, 1].
func (r Ramp) At(t float64) string {
	if len(r) == 0 {
		return NoDataColor
	}
	t = clamp01(t)
	if len(r) == 1 {
		return r[0].hex()
	}
	pos := t * float64(len(r)-1)
	i := int(math.Floor(pos))
	if i >= len(r)-1 {
		return r[len(r)-1].hex()
	}
	frac := pos - float64(i)
	a, b := r[i], r[i+1]
	return rgb{
		r: a.r + (b.r-a.r)*frac,
		g: a.g + (b.g-a.g)*frac,
		b: a.b + (b.b-a.b)*frac,
	}.hex()
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.r), channel(c.g), channel(c.b))
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

type Option func(*Scale)

// WithExponent sets the sequential response curve exponent. Values outside
// (0, 1] are ignored.
func WithExponent(exponent float64) Option {
	return func(s *Scale) {
		if exponent > 0 && exponent <= 1 {
			s.exponent = exponent
		}
	}
}

func WithRamp(ramp Ramp) Option {
	return func(s *Scale) {
		if len(ramp) > 0 {
			s.ramp = ramp
		}
	}
}

// Scale maps values of a Domain onto a Ramp.
type Scale struct {
	domain   Domain
	exponent float64
	ramp     Ramp
}

// NewScale builds a scale with YlOrRd for sequential domains and RdBu for
// divergent ones unless WithRamp overrides it.
func NewScale(domain Domain, opts ...Option) Scale {
	s := Scale{domain: domain, exponent: DefaultExponent, ramp: YlOrRd}
	if domain.Kind == Divergent {
		s.ramp = RdBu
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.domain.Span() <= 0 || math.IsNaN(s.domain.Span()) {
		s.domain.Max = s.domain.Min + DefaultSpan
	}
	return s
}

func (s Scale) Domain() Domain { return s.domain }

// Normalize maps v to [0, 1]. Divergent domains put zero at 0.5. Sequential
// domains apply the power curve so small values stay distinguishable next to
// a few dominant ones.
func (s Scale) Normalize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if s.domain.Kind == Divergent {
		magnitude := math.Max(math.Abs(s.domain.Min), math.Abs(s.domain.Max))
		return clamp01(0.5 + 0.5*v/magnitude)
	}
	t := clamp01((v - s.domain.Min) / s.domain.Span())
	return math.Pow(t, s.exponent)
}

func (s Scale) Color(v float64) string {
	return s.ramp.At(s.Normalize(v))
}

// Fill returns the color for a choropleth cell. Sequential scales treat
// non-positive values as no data; divergent scales only treat absent values
// that way.
func (s Scale) Fill(v float64, present bool) (string, bool) {
	if !present {
		return NoDataColor, false
	}
	if s.domain.Kind == Sequential && v <= 0 {
		return NoDataColor, false
	}
	return s.Color(v), true
}

type LegendStop struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Legend returns n evenly spaced stops from Min to Max (n < 2 yields 2).
func (s Scale) Legend(n int) []LegendStop {
	if n < 2 {
		n = 2
	}
	stops := make([]LegendStop, 0, n)
	step := s.domain.Span() / float64(n-1)
	for i := 0; i < n; i++ {
		v := s.domain.Min + step*float64(i)
		if i == n-1 {
			v = s.domain.Max
		}
		stops = append(stops, LegendStop{Value: v, Color: s.Color(v)})
	}
	return stops
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
