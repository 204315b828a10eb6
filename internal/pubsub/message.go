// Package pubsub implements the in-process fan-out hub: a topic registry
// whose per-topic broadcast channels deliver events to many concurrent
// subscribers. Delivery is intentionally lossy: every receiver owns a small
// bounded buffer and slow receivers lose their oldest unread events instead
// of stalling publishers.
package pubsub

import (
	"github.com/Indomitable/opentelemetry-inspect/internal/domain"
)

// Topics produced by the OTLP receivers. Subscribers may ask for any
// free-form topic name; only these carry engine-generated events.
const (
	TopicLogs    = "logs"
	TopicTraces  = "traces"
	TopicMetrics = "metrics"
)

// Message is one event on a topic. The payload serializes untagged: its
// shape alone tells subscribers what kind of event they received.
type Message struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// LogMessage wraps a normalized log record for the logs topic.
func LogMessage(dto domain.LogDto) Message {
	return Message{Topic: TopicLogs, Payload: dto}
}

// SpanMessage wraps a normalized span for the traces topic.
func SpanMessage(dto domain.SpanDto) Message {
	return Message{Topic: TopicTraces, Payload: dto}
}

// MetricMessage wraps a normalized metric for the metrics topic.
func MetricMessage(dto domain.MetricDto) Message {
	return Message{Topic: TopicMetrics, Payload: dto}
}

// RawMessage wraps an arbitrary string payload. Nothing in the engine
// produces these; they exist for exercising the hub with plain values.
func RawMessage(topic, payload string) Message {
	return Message{Topic: topic, Payload: payload}
}
