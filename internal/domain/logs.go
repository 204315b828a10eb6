package domain

import (
	"strings"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
)

// Severity is the normalized log level. Levels outside the OTel bands keep
// the producer's original text and serialize as that bare string.
type Severity string

const (
	SeverityTrace Severity = "Trace"
	SeverityDebug Severity = "Debug"
	SeverityInfo  Severity = "Info"
	SeverityWarn  Severity = "Warn"
	SeverityError Severity = "Error"
	SeverityFatal Severity = "Fatal"
)

// LogDto is the normalized form of one OTLP log record.
type LogDto struct {
	Timestamp    time.Time         `json:"timestamp"`
	TimeUnixNano Nanoseconds       `json:"time_unix_nano"`
	Severity     Severity          `json:"severity"`
	Message      string            `json:"message"`
	Scope        string            `json:"scope"`
	TraceID      TraceID           `json:"trace_id,omitempty"`
	SpanID       SpanID            `json:"span_id,omitempty"`
	EventName    string            `json:"event_name,omitempty"`
	Resource     ResourceInfo      `json:"resource"`
	Tags         map[string]string `json:"tags"`
}

// LogFromOTLP normalizes one OTLP log record with its surrounding scope and
// resource. It never fails; missing subfields degrade to empty values.
func LogFromOTLP(record *logspb.LogRecord, scope *commonpb.InstrumentationScope, resource *resourcepb.Resource) LogDto {
	ts := logTimestamp(record)
	return LogDto{
		Timestamp:    ts.Time(),
		TimeUnixNano: ts,
		Severity:     severityFromOTLP(record.GetSeverityNumber(), record.GetSeverityText()),
		Message:      anyValueToString(record.GetBody()),
		Scope:        scopeName(scope),
		TraceID:      TraceIDFromBytes(record.GetTraceId()),
		SpanID:       SpanIDFromBytes(record.GetSpanId()),
		EventName:    record.GetEventName(),
		Resource:     ResourceInfoFromOTLP(resource),
		Tags:         flattenAttributes(record.GetAttributes()),
	}
}

// logTimestamp picks the record timestamp: time_unix_nano when set,
// otherwise observed_time_unix_nano, otherwise epoch.
func logTimestamp(record *logspb.LogRecord) Nanoseconds {
	if t := record.GetTimeUnixNano(); t > 0 {
		return Nanoseconds(t)
	}
	return Nanoseconds(record.GetObservedTimeUnixNano())
}

// severityFromOTLP maps the OTel severity number bands (1-4 Trace, 5-8
// Debug, 9-12 Info, 13-16 Warn, 17-20 Error, 21-24 Fatal). Numbers outside
// the bands fall back to case-insensitive severity text; unmatched text is
// carried through unchanged.
func severityFromOTLP(num logspb.SeverityNumber, text string) Severity {
	switch n := int32(num); {
	case n >= 1 && n <= 4:
		return SeverityTrace
	case n >= 5 && n <= 8:
		return SeverityDebug
	case n >= 9 && n <= 12:
		return SeverityInfo
	case n >= 13 && n <= 16:
		return SeverityWarn
	case n >= 17 && n <= 20:
		return SeverityError
	case n >= 21 && n <= 24:
		return SeverityFatal
	}
	switch strings.ToLower(text) {
	case "trace":
		return SeverityTrace
	case "debug":
		return SeverityDebug
	case "info", "information":
		return SeverityInfo
	case "warn", "warning":
		return SeverityWarn
	case "error":
		return SeverityError
	case "fatal", "critical":
		return SeverityFatal
	default:
		return Severity(text)
	}
}
