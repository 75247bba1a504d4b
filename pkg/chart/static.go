package chart

import (
	"context"
)

// StaticSeries is a series captured as tooltip text, one entry per point.
type StaticSeries struct {
	Name     string   `json:"name" yaml:"name"`
	Tooltips []string `json:"tooltips" yaml:"tooltips"`
}

// StaticProvider serves captured series.
type StaticProvider struct {
	series []StaticSeries
}

// NewStaticProvider creates a provider over captured series, in the given order.
func NewStaticProvider(series ...StaticSeries) *StaticProvider {
	return &StaticProvider{series: series}
}

// Series implements Provider.
func (p *StaticProvider) Series(ctx context.Context) ([]Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Series, len(p.series))
	for i := range p.series {
		out[i] = staticSeries{captured: p.series[i]}
	}
	return out, nil
}

type staticSeries struct {
	captured StaticSeries
}

func (s staticSeries) Name() string { return s.captured.Name }

func (s staticSeries) Points() []Point {
	points := make([]Point, len(s.captured.Tooltips))
	for i, text := range s.captured.Tooltips {
		points[i] = staticPoint(text)
	}
	return points
}

type staticPoint string

func (p staticPoint) Activate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(p), nil
}
