package domain

import (
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
)

// SpanKind mirrors the OTLP span kind as a readable string.
type SpanKind string

const (
	SpanKindUnspecified SpanKind = "Unspecified"
	SpanKindInternal    SpanKind = "Internal"
	SpanKindServer      SpanKind = "Server"
	SpanKindClient      SpanKind = "Client"
	SpanKindProducer    SpanKind = "Producer"
	SpanKindConsumer    SpanKind = "Consumer"
)

// SpanStatusCode mirrors the OTLP span status code as a readable string.
type SpanStatusCode string

const (
	StatusCodeUnset SpanStatusCode = "Unset"
	StatusCodeOk    SpanStatusCode = "Ok"
	StatusCodeError SpanStatusCode = "Error"
)

// SpanStatus is the normalized span outcome. A span without a status
// reports an empty message and the Unset code.
type SpanStatus struct {
	Message string         `json:"message"`
	Code    SpanStatusCode `json:"code"`
}

// SpanEvent is a timestamped annotation on a span.
type SpanEvent struct {
	Name       string            `json:"name"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes"`
}

// SpanLink points at a related span, usually in another trace.
type SpanLink struct {
	TraceID    TraceID           `json:"trace_id,omitempty"`
	SpanID     SpanID            `json:"span_id,omitempty"`
	TraceState string            `json:"trace_state"`
	Attributes map[string]string `json:"attributes"`
}

// SpanDto is the normalized form of one OTLP span.
type SpanDto struct {
	StartTime         time.Time         `json:"start_time"`
	EndTime           time.Time         `json:"end_time"`
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	EndTimeUnixNano   Nanoseconds       `json:"end_time_unix_nano"`
	Scope             string            `json:"scope"`
	Name              string            `json:"name"`
	TraceID           TraceID           `json:"trace_id,omitempty"`
	SpanID            SpanID            `json:"span_id,omitempty"`
	ParentSpanID      SpanID            `json:"parent_span_id,omitempty"`
	Resource          ResourceInfo      `json:"resource"`
	Kind              SpanKind          `json:"kind"`
	Status            SpanStatus        `json:"status"`
	Events            []SpanEvent       `json:"events"`
	Links             []SpanLink        `json:"links"`
	Tags              map[string]string `json:"tags"`
}

// SpanFromOTLP normalizes one OTLP span with its surrounding scope and
// resource. It never fails; missing subfields degrade to empty values.
func SpanFromOTLP(span *tracepb.Span, scope *commonpb.InstrumentationScope, resource *resourcepb.Resource) SpanDto {
	start := Nanoseconds(span.GetStartTimeUnixNano())
	end := Nanoseconds(span.GetEndTimeUnixNano())

	events := make([]SpanEvent, 0, len(span.GetEvents()))
	for _, e := range span.GetEvents() {
		events = append(events, SpanEvent{
			Name:       e.GetName(),
			Timestamp:  Nanoseconds(e.GetTimeUnixNano()).Time(),
			Attributes: flattenAttributes(e.GetAttributes()),
		})
	}

	links := make([]SpanLink, 0, len(span.GetLinks()))
	for _, l := range span.GetLinks() {
		links = append(links, SpanLink{
			TraceID:    TraceIDFromBytes(l.GetTraceId()),
			SpanID:     SpanIDFromBytes(l.GetSpanId()),
			TraceState: l.GetTraceState(),
			Attributes: flattenAttributes(l.GetAttributes()),
		})
	}

	return SpanDto{
		StartTime:         start.Time(),
		EndTime:           end.Time(),
		StartTimeUnixNano: start,
		EndTimeUnixNano:   end,
		Scope:             scopeName(scope),
		Name:              span.GetName(),
		TraceID:           TraceIDFromBytes(span.GetTraceId()),
		SpanID:            SpanIDFromBytes(span.GetSpanId()),
		ParentSpanID:      SpanIDFromBytes(span.GetParentSpanId()),
		Resource:          ResourceInfoFromOTLP(resource),
		Kind:              spanKindFromOTLP(span.GetKind()),
		Status:            spanStatusFromOTLP(span.GetStatus()),
		Events:            events,
		Links:             links,
		Tags:              flattenAttributes(span.GetAttributes()),
	}
}

func spanKindFromOTLP(kind tracepb.Span_SpanKind) SpanKind {
	switch kind {
	case tracepb.Span_SPAN_KIND_INTERNAL:
		return SpanKindInternal
	case tracepb.Span_SPAN_KIND_SERVER:
		return SpanKindServer
	case tracepb.Span_SPAN_KIND_CLIENT:
		return SpanKindClient
	case tracepb.Span_SPAN_KIND_PRODUCER:
		return SpanKindProducer
	case tracepb.Span_SPAN_KIND_CONSUMER:
		return SpanKindConsumer
	default:
		return SpanKindUnspecified
	}
}

func spanStatusFromOTLP(status *tracepb.Status) SpanStatus {
	if status == nil {
		return SpanStatus{Code: StatusCodeUnset}
	}
	code := StatusCodeUnset
	switch status.GetCode() {
	case tracepb.Status_STATUS_CODE_OK:
		code = StatusCodeOk
	case tracepb.Status_STATUS_CODE_ERROR:
		code = StatusCodeError
	}
	return SpanStatus{Message: status.GetMessage(), Code: code}
}
