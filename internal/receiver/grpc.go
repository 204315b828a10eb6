package receiver

import (
	"context"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/grpc"

	"github.com/Indomitable/opentelemetry-inspect/internal/processor"
)

// The three OTLP services share one unary Export signature each, so every
// service gets its own small server struct delegating to the processor.

type logsService struct {
	collogspb.UnimplementedLogsServiceServer
	processor *processor.Processor
}

func (s *logsService) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	s.processor.ProcessLogs(req)
	ingestRequests.WithLabelValues("logs", "grpc", "success").Inc()
	return &collogspb.ExportLogsServiceResponse{}, nil
}

type traceService struct {
	coltracepb.UnimplementedTraceServiceServer
	processor *processor.Processor
}

func (s *traceService) Export(ctx context.Context, req *coltracepb.ExportTraceServiceRequest) (*coltracepb.ExportTraceServiceResponse, error) {
	s.processor.ProcessTraces(req)
	ingestRequests.WithLabelValues("traces", "grpc", "success").Inc()
	return &coltracepb.ExportTraceServiceResponse{}, nil
}

type metricsService struct {
	colmetricspb.UnimplementedMetricsServiceServer
	processor *processor.Processor
}

func (s *metricsService) Export(ctx context.Context, req *colmetricspb.ExportMetricsServiceRequest) (*colmetricspb.ExportMetricsServiceResponse, error) {
	s.processor.ProcessMetrics(req)
	ingestRequests.WithLabelValues("metrics", "grpc", "success").Inc()
	return &colmetricspb.ExportMetricsServiceResponse{}, nil
}

// RegisterGRPC registers the three OTLP export services on the server.
func RegisterGRPC(server *grpc.Server, proc *processor.Processor) {
	collogspb.RegisterLogsServiceServer(server, &logsService{processor: proc})
	coltracepb.RegisterTraceServiceServer(server, &traceService{processor: proc})
	colmetricspb.RegisterMetricsServiceServer(server, &metricsService{processor: proc})
}
