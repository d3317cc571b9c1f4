package metrics

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
)

// Provider collects metric points from a single source.
type Provider interface {
	Name() string
	Collect(ctx context.Context) ([]MetricPoint, error)
}

// Dimension is a single key/value attribute attached to a metric point.
// It is a slice element rather than a map entry so JSON output is stable.
type Dimension struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MetricPoint is a single observed value.
type MetricPoint struct {
	Key        string      `json:"key"`
	Value      float64     `json:"value"`
	Unit       string      `json:"unit,omitempty"`
	Timestamp  string      `json:"timestamp"`
	Source     string      `json:"source"`
	Dimensions []Dimension `json:"dimensions,omitempty"`
}

// CanonicalizePoints returns a copy of points with trimmed keys, canonical
// dimensions, and a total order: key, dimensions, source, timestamp, value.
func CanonicalizePoints(points []MetricPoint) []MetricPoint {
	out := make([]MetricPoint, len(points))
	for i, p := range points {
		p.Key = strings.TrimSpace(p.Key)
		p.Dimensions = CanonicalizeDimensions(p.Dimensions)
		out[i] = p
	}
	slices.SortStableFunc(out, comparePoints)
	return out
}

func comparePoints(a, b MetricPoint) int {
	if c := cmp.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	if c := slices.CompareFunc(a.Dimensions, b.Dimensions, compareDimension); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Value, b.Value)
}

func compareDimension(a, b Dimension) int {
	if c := cmp.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	return cmp.Compare(a.Value, b.Value)
}

// CanonicalizeDimensions trims dimensions, drops incomplete and repeated
// ones, and sorts the rest. It returns nil when nothing is left.
func CanonicalizeDimensions(dimensions []Dimension) []Dimension {
	var out []Dimension
	for _, d := range dimensions {
		d.Key, d.Value = strings.TrimSpace(d.Key), strings.TrimSpace(d.Value)
		if d.Key != "" && d.Value != "" {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, compareDimension)
	return slices.Compact(out)
}

// Timestamp formats t the way metric points and snapshots store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Find returns the first point with key whose dimensions include every dim.
func Find(points []MetricPoint, key string, dims ...Dimension) (MetricPoint, bool) {
	for _, p := range points {
		if p.Key == key && hasAll(p.Dimensions, dims) {
			return p, true
		}
	}
	return MetricPoint{}, false
}

func hasAll(have, want []Dimension) bool {
	for _, d := range want {
		if !slices.Contains(have, d) {
			return false
		}
	}
	return true
}
