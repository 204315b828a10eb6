// Package processor turns OTLP export requests into normalized events on
// the hub.
package processor

import (
	"go.uber.org/zap"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"

	"github.com/Indomitable/opentelemetry-inspect/internal/domain"
	"github.com/Indomitable/opentelemetry-inspect/internal/pubsub"
)

// Processor walks the OTLP envelope hierarchy (resource batch → scope batch
// → records), normalizes each record and publishes it. It is stateless and
// never rejects input: partial or malformed batches are processed
// best-effort, record by record.
type Processor struct {
	manager *pubsub.Manager
	logger  *zap.Logger
}

// New creates a Processor publishing to manager.
func New(manager *pubsub.Manager, logger *zap.Logger) *Processor {
	return &Processor{manager: manager, logger: logger}
}

// ProcessLogs publishes every log record in the request on the logs topic.
func (p *Processor) ProcessLogs(req *collogspb.ExportLogsServiceRequest) {
	records, deliveries := 0, 0
	for _, rl := range req.GetResourceLogs() {
		resource := rl.GetResource()
		for _, sl := range rl.GetScopeLogs() {
			scope := sl.GetScope()
			for _, record := range sl.GetLogRecords() {
				deliveries += p.manager.PublishLog(domain.LogFromOTLP(record, scope, resource))
				records++
			}
		}
	}
	p.logger.Debug("processed log export",
		zap.Int("records", records),
		zap.Int("deliveries", deliveries))
}

// ProcessTraces publishes every span in the request on the traces topic.
func (p *Processor) ProcessTraces(req *coltracepb.ExportTraceServiceRequest) {
	records, deliveries := 0, 0
	for _, rs := range req.GetResourceSpans() {
		resource := rs.GetResource()
		for _, ss := range rs.GetScopeSpans() {
			scope := ss.GetScope()
			for _, span := range ss.GetSpans() {
				deliveries += p.manager.PublishSpan(domain.SpanFromOTLP(span, scope, resource))
				records++
			}
		}
	}
	p.logger.Debug("processed trace export",
		zap.Int("spans", records),
		zap.Int("deliveries", deliveries))
}

// ProcessMetrics publishes every metric in the request on the metrics
// topic.
func (p *Processor) ProcessMetrics(req *colmetricspb.ExportMetricsServiceRequest) {
	records, deliveries := 0, 0
	for _, rm := range req.GetResourceMetrics() {
		resource := rm.GetResource()
		for _, sm := range rm.GetScopeMetrics() {
			scope := sm.GetScope()
			for _, metric := range sm.GetMetrics() {
				deliveries += p.manager.PublishMetric(domain.MetricFromOTLP(metric, scope, resource))
				records++
			}
		}
	}
	p.logger.Debug("processed metric export",
		zap.Int("metrics", records),
		zap.Int("deliveries", deliveries))
}
