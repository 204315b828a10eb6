package domain

import (
	"encoding/json"
	"strconv"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
)

// AggregationTemporality is the normalized metric temporality. Unknown
// ordinals collapse to Delta.
type AggregationTemporality string

const (
	TemporalityDelta      AggregationTemporality = "Delta"
	TemporalityCumulative AggregationTemporality = "Cumulative"
)

// Metric data discriminators carried in the "t" field.
const (
	metricTypeGauge     = "Gauge"
	metricTypeSum       = "Sum"
	metricTypeHistogram = "Histogram"
)

// MetricData is the type-specific part of a metric: GaugeMetric, SumMetric
// or HistogramMetric. Each carries a short "t" discriminator in JSON.
type MetricData interface {
	metricData()
}

// MetricDto is the normalized form of one OTLP metric. Data is nil (JSON
// null) for metric types the inspector does not break down, such as
// exponential histograms and summaries.
type MetricDto struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Unit        string       `json:"unit"`
	Scope       string       `json:"scope"`
	Resource    ResourceInfo `json:"resource"`
	Data        MetricData   `json:"data"`
}

// GaugeMetric is a set of instantaneous measurements.
type GaugeMetric struct {
	T          string            `json:"t"`
	DataPoints []NumberDataPoint `json:"data_points"`
}

// SumMetric is a scalar sum, either delta or cumulative, optionally
// monotonic.
type SumMetric struct {
	T                      string                 `json:"t"`
	DataPoints             []NumberDataPoint      `json:"data_points"`
	AggregationTemporality AggregationTemporality `json:"aggregation_temporality"`
	IsMonotonic            bool                   `json:"is_monotonic"`
}

// HistogramMetric is a bucketed distribution of measurements.
type HistogramMetric struct {
	T                      string                 `json:"t"`
	DataPoints             []HistogramDataPoint   `json:"data_points"`
	AggregationTemporality AggregationTemporality `json:"aggregation_temporality"`
}

func (GaugeMetric) metricData()     {}
func (SumMetric) metricData()       {}
func (HistogramMetric) metricData() {}

// NumberDataPoint is one gauge or sum measurement.
type NumberDataPoint struct {
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	TimeUnixNano      Nanoseconds       `json:"time_unix_nano"`
	Value             *NumberValue      `json:"value,omitempty"`
	Attributes        map[string]string `json:"attributes"`
	Exemplars         []Exemplar        `json:"exemplars"`
}

// HistogramDataPoint is one histogram measurement window.
type HistogramDataPoint struct {
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	TimeUnixNano      Nanoseconds       `json:"time_unix_nano"`
	Count             uint64            `json:"count"`
	Sum               *float64          `json:"sum,omitempty"`
	BucketCounts      []uint64          `json:"bucket_counts"`
	ExplicitBounds    []float64         `json:"explicit_bounds"`
	Exemplars         []Exemplar        `json:"exemplars"`
	Min               *float64          `json:"min,omitempty"`
	Max               *float64          `json:"max,omitempty"`
	Attributes        map[string]string `json:"attributes"`
}

// Exemplar is an example measurement attached to a data point, optionally
// correlated with a trace.
type Exemplar struct {
	TimeUnixNano Nanoseconds  `json:"time_unix_nano"`
	TraceID      TraceID      `json:"trace_id,omitempty"`
	SpanID       SpanID       `json:"span_id,omitempty"`
	Value        *NumberValue `json:"value,omitempty"`
}

// NumberValue is a measurement that is either an integer or a double. It
// marshals untagged, as the bare JSON number.
type NumberValue struct {
	intVal    int64
	doubleVal float64
	isInt     bool
}

// IntValue wraps an integer measurement.
func IntValue(v int64) *NumberValue {
	return &NumberValue{intVal: v, isInt: true}
}

// DoubleValue wraps a floating-point measurement.
func DoubleValue(v float64) *NumberValue {
	return &NumberValue{doubleVal: v}
}

func (v NumberValue) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return strconv.AppendInt(nil, v.intVal, 10), nil
	}
	return json.Marshal(v.doubleVal)
}

// MetricFromOTLP normalizes one OTLP metric with its surrounding scope and
// resource. It never fails; metric types without a breakdown keep Data nil.
func MetricFromOTLP(metric *metricspb.Metric, scope *commonpb.InstrumentationScope, resource *resourcepb.Resource) MetricDto {
	return MetricDto{
		Name:        metric.GetName(),
		Description: metric.GetDescription(),
		Unit:        metric.GetUnit(),
		Scope:       scopeName(scope),
		Resource:    ResourceInfoFromOTLP(resource),
		Data:        metricDataFromOTLP(metric),
	}
}

func metricDataFromOTLP(metric *metricspb.Metric) MetricData {
	switch data := metric.GetData().(type) {
	case *metricspb.Metric_Gauge:
		return GaugeMetric{
			T:          metricTypeGauge,
			DataPoints: numberDataPoints(data.Gauge.GetDataPoints()),
		}
	case *metricspb.Metric_Sum:
		return SumMetric{
			T:                      metricTypeSum,
			DataPoints:             numberDataPoints(data.Sum.GetDataPoints()),
			AggregationTemporality: temporalityFromOTLP(data.Sum.GetAggregationTemporality()),
			IsMonotonic:            data.Sum.GetIsMonotonic(),
		}
	case *metricspb.Metric_Histogram:
		return HistogramMetric{
			T:                      metricTypeHistogram,
			DataPoints:             histogramDataPoints(data.Histogram.GetDataPoints()),
			AggregationTemporality: temporalityFromOTLP(data.Histogram.GetAggregationTemporality()),
		}
	default:
		return nil
	}
}

func numberDataPoints(points []*metricspb.NumberDataPoint) []NumberDataPoint {
	out := make([]NumberDataPoint, 0, len(points))
	for _, dp := range points {
		var value *NumberValue
		switch v := dp.GetValue().(type) {
		case *metricspb.NumberDataPoint_AsInt:
			value = IntValue(v.AsInt)
		case *metricspb.NumberDataPoint_AsDouble:
			value = DoubleValue(v.AsDouble)
		}
		out = append(out, NumberDataPoint{
			StartTimeUnixNano: Nanoseconds(dp.GetStartTimeUnixNano()),
			TimeUnixNano:      Nanoseconds(dp.GetTimeUnixNano()),
			Value:             value,
			Attributes:        flattenAttributes(dp.GetAttributes()),
			Exemplars:         exemplars(dp.GetExemplars()),
		})
	}
	return out
}

func histogramDataPoints(points []*metricspb.HistogramDataPoint) []HistogramDataPoint {
	out := make([]HistogramDataPoint, 0, len(points))
	for _, dp := range points {
		bucketCounts := dp.GetBucketCounts()
		if bucketCounts == nil {
			bucketCounts = []uint64{}
		}
		explicitBounds := dp.GetExplicitBounds()
		if explicitBounds == nil {
			explicitBounds = []float64{}
		}
		out = append(out, HistogramDataPoint{
			StartTimeUnixNano: Nanoseconds(dp.GetStartTimeUnixNano()),
			TimeUnixNano:      Nanoseconds(dp.GetTimeUnixNano()),
			Count:             dp.GetCount(),
			Sum:               dp.Sum,
			BucketCounts:      bucketCounts,
			ExplicitBounds:    explicitBounds,
			Exemplars:         exemplars(dp.GetExemplars()),
			Min:               dp.Min,
			Max:               dp.Max,
			Attributes:        flattenAttributes(dp.GetAttributes()),
		})
	}
	return out
}

func exemplars(in []*metricspb.Exemplar) []Exemplar {
	out := make([]Exemplar, 0, len(in))
	for _, e := range in {
		var value *NumberValue
		switch v := e.GetValue().(type) {
		case *metricspb.Exemplar_AsInt:
			value = IntValue(v.AsInt)
		case *metricspb.Exemplar_AsDouble:
			value = DoubleValue(v.AsDouble)
		}
		out = append(out, Exemplar{
			TimeUnixNano: Nanoseconds(e.GetTimeUnixNano()),
			TraceID:      TraceIDFromBytes(e.GetTraceId()),
			SpanID:       SpanIDFromBytes(e.GetSpanId()),
			Value:        value,
		})
	}
	return out
}

func temporalityFromOTLP(at metricspb.AggregationTemporality) AggregationTemporality {
	if at == metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE {
		return TemporalityCumulative
	}
	return TemporalityDelta
}
