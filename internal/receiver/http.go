// Package receiver exposes the ingest surface: the three OTLP gRPC export
// services on one socket and the HTTP endpoints (OTLP ingest, WebSocket
// streaming, Prometheus metrics, bundled UI) on the other.
package receiver

import (
	"io"
	"mime"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/Indomitable/opentelemetry-inspect/internal/processor"
	"github.com/Indomitable/opentelemetry-inspect/internal/ws"
)

var ingestRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otelinspect_ingest_requests_total",
		Help: "Total number of OTLP export requests received",
	},
	[]string{"signal", "protocol", "status"},
)

const (
	contentTypeProto = "application/x-protobuf"
	contentTypeJSON  = "application/json"
)

// HTTPReceiver handles the OTLP HTTP export endpoints.
type HTTPReceiver struct {
	processor *processor.Processor
	logger    *zap.Logger
}

// NewHTTPReceiver creates an HTTPReceiver delegating to the processor.
func NewHTTPReceiver(proc *processor.Processor, logger *zap.Logger) *HTTPReceiver {
	return &HTTPReceiver{processor: proc, logger: logger}
}

// NewMux assembles the full HTTP surface. OTLP ingest and the WebSocket
// endpoint are fixed routes; everything unmatched falls through to the
// static frontend served from staticDir.
func NewMux(recv *HTTPReceiver, hub *ws.Hub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/logs", recv.handleLogs)
	mux.HandleFunc("POST /v1/traces", recv.handleTraces)
	mux.HandleFunc("POST /v1/metrics", recv.handleMetrics)
	mux.HandleFunc("GET /ws", hub.HandleWebSocket)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", newSPAHandler(staticDir))
	return mux
}

func (h *HTTPReceiver) handleLogs(w http.ResponseWriter, r *http.Request) {
	req := &collogspb.ExportLogsServiceRequest{}
	if !h.decode(w, r, "logs", req) {
		return
	}
	h.processor.ProcessLogs(req)
	h.respond(w, "logs", &collogspb.ExportLogsServiceResponse{})
}

func (h *HTTPReceiver) handleTraces(w http.ResponseWriter, r *http.Request) {
	req := &coltracepb.ExportTraceServiceRequest{}
	if !h.decode(w, r, "traces", req) {
		return
	}
	h.processor.ProcessTraces(req)
	h.respond(w, "traces", &coltracepb.ExportTraceServiceResponse{})
}

func (h *HTTPReceiver) handleMetrics(w http.ResponseWriter, r *http.Request) {
	req := &colmetricspb.ExportMetricsServiceRequest{}
	if !h.decode(w, r, "metrics", req) {
		return
	}
	h.processor.ProcessMetrics(req)
	h.respond(w, "metrics", &colmetricspb.ExportMetricsServiceResponse{})
}

// decode reads and unmarshals the request body according to the
// Content-Type header: application/x-protobuf or application/json, media
// type parameters tolerated, anything else rejected. It writes the error
// response itself and reports whether the request was decoded.
func (h *HTTPReceiver) decode(w http.ResponseWriter, r *http.Request, signal string, req proto.Message) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		ingestRequests.WithLabelValues(signal, "http", "error").Inc()
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	defer r.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case contentTypeProto:
		err = proto.Unmarshal(body, req)
	case contentTypeJSON:
		err = protojson.Unmarshal(body, req)
	default:
		ingestRequests.WithLabelValues(signal, "http", "unsupported").Inc()
		http.Error(w, "Not supported content type", http.StatusBadRequest)
		return false
	}
	if err != nil {
		ingestRequests.WithLabelValues(signal, "http", "error").Inc()
		h.logger.Debug("failed to decode export request",
			zap.String("signal", signal),
			zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respond writes the empty default export response in protobuf form.
func (h *HTTPReceiver) respond(w http.ResponseWriter, signal string, resp proto.Message) {
	data, _ := proto.Marshal(resp)
	ingestRequests.WithLabelValues(signal, "http", "success").Inc()
	w.Header().Set("Content-Type", contentTypeProto)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
