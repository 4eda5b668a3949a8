package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gocarina/gocsv"
	"github.com/travigo/transitrecon/pkg/segments"
	"golang.org/x/exp/slices"
)

const DefaultAssumedSpeedKMH = 20.0

var ErrInvalidSpeed = errors.New("assumed speed must be greater than zero")

// LineMetric is the travel estimate for one transit line. Duration assumes a
// constant speed with no dwell or congestion.
type LineMetric struct {
	LineLabel       string  `csv:"line" json:"line"`
	LengthKM        float64 `csv:"length_km" json:"length_km"`
	AssumedSpeedKMH float64 `csv:"speed_kmh" json:"speed_kmh"`
	DurationMinutes float64 `csv:"duration_minutes" json:"duration_minutes"`
	SegmentCount    int     `csv:"segments" json:"segments"`
}

func validSpeed(speedKMH float64) error {
	if speedKMH <= 0 || math.IsNaN(speedKMH) || math.IsInf(speedKMH, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speedKMH)
	}

	return nil
}

func durationMinutes(lengthKM float64, speedKMH float64) float64 {
	return lengthKM / speedKMH * 60
}

type accumulator struct {
	order  []string
	totals map[string]*LineMetric
}

func newAccumulator() *accumulator {
	return &accumulator{totals: map[string]*LineMetric{}}
}

func (a *accumulator) add(row *segments.RoadSegment) {
	metric, exists := a.totals[row.LineLabel]
	if !exists {
		metric = &LineMetric{LineLabel: row.LineLabel}
		a.totals[row.LineLabel] = metric
		a.order = append(a.order, row.LineLabel)
	}

	metric.LengthKM += row.LengthKM
	metric.SegmentCount++
}

func (a *accumulator) metrics(labels []string, speedKMH float64) []LineMetric {
	out := make([]LineMetric, 0, len(labels))
	for _, label := range labels {
		metric := *a.totals[label]
		metric.AssumedSpeedKMH = speedKMH
		metric.DurationMinutes = durationMinutes(metric.LengthKM, speedKMH)
		out = append(out, metric)
	}

	return out
}

// Aggregate groups every labelled row by line label. Rows are not deduplicated
// by canonical id first, a segment shared by two lines counts for both.
func Aggregate(rows []*segments.RoadSegment, speedKMH float64) ([]LineMetric, error) {
	if err := validSpeed(speedKMH); err != nil {
		return nil, err
	}

	totals := newAccumulator()
	for _, row := range rows {
		if row.HasLineLabel() {
			totals.add(row)
		}
	}

	labels := slices.Clone(totals.order)
	slices.Sort(labels)

	return totals.metrics(labels, speedKMH), nil
}

// ForSegment returns the metrics of every line passing over the segment with
// the given canonical id, in the order the lines were first seen
func ForSegment(rows []*segments.RoadSegment, canonicalID string, speedKMH float64) ([]LineMetric, error) {
	if err := validSpeed(speedKMH); err != nil {
		return nil, err
	}

	var labels []string
	for _, row := range rows {
		if row.CanonicalID == canonicalID && row.HasLineLabel() && !slices.Contains(labels, row.LineLabel) {
			labels = append(labels, row.LineLabel)
		}
	}

	totals := newAccumulator()
	for _, row := range rows {
		if slices.Contains(labels, row.LineLabel) {
			totals.add(row)
		}
	}

	return totals.metrics(labels, speedKMH), nil
}

func WriteCSV(w io.Writer, metrics []LineMetric) error {
	if err := gocsv.Marshal(&metrics, w); err != nil {
		return fmt.Errorf("writing metrics csv: %w", err)
	}

	return nil
}
