// Package prophet evaluates a fitted additive time-series model: a
// piecewise-linear (or flat) trend plus Fourier seasonalities, each either
// additive or multiplicative. The artifact carries the fitted parameters;
// nothing is re-estimated here.
package prophet

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Mode is how a seasonality combines with the trend.
type Mode string

const (
	Additive       Mode = "additive"
	Multiplicative Mode = "multiplicative"
)

// Seasonality is one fitted Fourier component.
type Seasonality struct {
	Name         string    `json:"name"`
	Period       float64   `json:"period"` // days
	FourierOrder int       `json:"fourier_order"`
	Mode         Mode      `json:"mode"`
	Beta         []float64 `json:"beta"` // sin1, cos1, sin2, cos2, ...
}

// Params are the fitted trend parameters in scaled units.
type Params struct {
	K     float64   `json:"k"`
	M     float64   `json:"m"`
	Delta []float64 `json:"delta"`
}

type modelDoc struct {
	Growth        string        `json:"growth"`
	Start         string        `json:"start"`
	TScale        float64       `json:"t_scale"` // seconds
	YScale        float64       `json:"y_scale"`
	ChangepointsT []float64     `json:"changepoints_t"`
	Params        Params        `json:"params"`
	Seasonalities []Seasonality `json:"seasonalities"`
}

// Model is a loaded, immutable forecasting model.
type Model struct {
	growth        string
	start         time.Time
	tScale        float64
	yScale        float64
	changepointsT []float64
	params        Params
	seasonalities []Seasonality
}

// Point is the model output for one timestamp.
type Point struct {
	DS                  time.Time
	Trend               float64
	AdditiveTerms       float64
	MultiplicativeTerms float64
	Yhat                float64
}

var startLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// Load opens and decodes a JSON model file.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open forecast model: %w", err)
	}
	defer f.Close()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("forecast model %s: %w", path, err)
	}
	return m, nil
}

// Decode reads a JSON model from r and validates it.
func Decode(r io.Reader) (*Model, error) {
	var doc modelDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	m := &Model{
		growth:        strings.ToLower(doc.Growth),
		tScale:        doc.TScale,
		yScale:        doc.YScale,
		changepointsT: doc.ChangepointsT,
		params:        doc.Params,
	}
	if m.growth == "" {
		m.growth = "linear"
	}
	if m.growth != "linear" && m.growth != "flat" {
		return nil, fmt.Errorf("unsupported growth %q", doc.Growth)
	}
	var err error
	if m.start, err = parseStart(doc.Start); err != nil {
		return nil, err
	}
	if m.tScale <= 0 {
		return nil, fmt.Errorf("t_scale must be positive, got %v", m.tScale)
	}
	if m.yScale == 0 {
		m.yScale = 1
	}
	if len(m.params.Delta) != len(m.changepointsT) {
		return nil, fmt.Errorf("%d deltas for %d changepoints", len(m.params.Delta), len(m.changepointsT))
	}
	for _, s := range doc.Seasonalities {
		if s.Period <= 0 {
			return nil, fmt.Errorf("seasonality %q: period must be positive", s.Name)
		}
		if s.FourierOrder <= 0 || len(s.Beta) != 2*s.FourierOrder {
			return nil, fmt.Errorf("seasonality %q: %d coefficients for order %d", s.Name, len(s.Beta), s.FourierOrder)
		}
		switch s.Mode {
		case "":
			s.Mode = Additive
		case Additive, Multiplicative:
		default:
			return nil, fmt.Errorf("seasonality %q: unknown mode %q", s.Name, s.Mode)
		}
		m.seasonalities = append(m.seasonalities, s)
	}
	return m, nil
}

func parseStart(s string) (time.Time, error) {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("start %q is not a timestamp", s)
}

// Seasonalities returns the names of the fitted seasonal components.
func (m *Model) Seasonalities() []string {
	out := make([]string, len(m.seasonalities))
	for i, s := range m.seasonalities {
		out[i] = s.Name
	}
	return out
}

// Predict evaluates the model at every timestamp, in input order.
func (m *Model) Predict(ds []time.Time) ([]Point, error) {
	out := make([]Point, len(ds))
	for i, d := range ds {
		t := d.Sub(m.start).Seconds() / m.tScale
		trend := m.trend(t) * m.yScale
		var add, mult float64
		days := float64(d.Unix()) / (3600 * 24)
		for _, s := range m.seasonalities {
			v := floats.Dot(fourier(days, s.Period, s.FourierOrder), s.Beta)
			if s.Mode == Multiplicative {
				mult += v
			} else {
				add += v * m.yScale
			}
		}
		yhat := trend*(1+mult) + add
		if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
			return nil, fmt.Errorf("non-finite forecast at %s", d.Format(time.RFC3339))
		}
		out[i] = Point{DS: d, Trend: trend, AdditiveTerms: add, MultiplicativeTerms: mult, Yhat: yhat}
	}
	return out, nil
}

func (m *Model) trend(t float64) float64 {
	if m.growth == "flat" {
		return m.params.M
	}
	k, off := m.params.K, m.params.M
	for j, cp := range m.changepointsT {
		if cp <= t {
			k += m.params.Delta[j]
			off -= cp * m.params.Delta[j]
		}
	}
	return k*t + off
}

func fourier(days, period float64, order int) []float64 {
	x := make([]float64, 0, 2*order)
	for i := 1; i <= order; i++ {
		a := 2 * math.Pi * float64(i) * days / period
		x = append(x, math.Sin(a), math.Cos(a))
	}
	return x
}

// FutureDates returns periods daily timestamps starting the day after last.
func FutureDates(last time.Time, periods int) []time.Time {
	out := make([]time.Time, periods)
	for i := range out {
		out[i] = last.AddDate(0, 0, i+1)
	}
	return out
}
