package domain

import (
	"encoding/json"
	"testing"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
)

func TestSeverityFromNumberBands(t *testing.T) {
	tests := []struct {
		number int32
		want   Severity
	}{
		{1, SeverityTrace},
		{4, SeverityTrace},
		{5, SeverityDebug},
		{8, SeverityDebug},
		{9, SeverityInfo},
		{12, SeverityInfo},
		{13, SeverityWarn},
		{16, SeverityWarn},
		{17, SeverityError},
		{20, SeverityError},
		{21, SeverityFatal},
		{24, SeverityFatal},
	}

	for _, tt := range tests {
		// The text must not matter while the number is in a band.
		got := severityFromOTLP(logspb.SeverityNumber(tt.number), "fatal")
		if got != tt.want {
			t.Errorf("severityFromOTLP(%d) = %q, want %q", tt.number, got, tt.want)
		}
	}
}

func TestSeverityFromTextFallback(t *testing.T) {
	tests := []struct {
		text string
		want Severity
	}{
		{"trace", SeverityTrace},
		{"TRACE", SeverityTrace},
		{"debug", SeverityDebug},
		{"info", SeverityInfo},
		{"Information", SeverityInfo},
		{"warn", SeverityWarn},
		{"Warning", SeverityWarn},
		{"error", SeverityError},
		{"fatal", SeverityFatal},
		{"CRITICAL", SeverityFatal},
		{"whatever", Severity("whatever")},
		{"", Severity("")},
	}

	for _, tt := range tests {
		// 0 and 25 are outside every band and trigger the text fallback.
		for _, number := range []int32{0, 25} {
			got := severityFromOTLP(logspb.SeverityNumber(number), tt.text)
			if got != tt.want {
				t.Errorf("severityFromOTLP(%d, %q) = %q, want %q", number, tt.text, got, tt.want)
			}
		}
	}
}

func TestLogFromOTLP(t *testing.T) {
	record := &logspb.LogRecord{
		TimeUnixNano:   1700000000000000000,
		SeverityNumber: logspb.SeverityNumber_SEVERITY_NUMBER_INFO,
		SeverityText:   "INFO",
		Body:           strValue("hello"),
		Attributes: []*commonpb.KeyValue{
			{Key: "http.method", Value: strValue("GET")},
			{Key: "retries", Value: intValue(3)},
		},
		TraceId:   []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanId:    []byte{1, 2, 3, 4, 5, 6, 7, 8},
		EventName: "user.login",
	}
	scope := &commonpb.InstrumentationScope{Name: "test-lib", Version: "0.1.0"}
	resource := &resourcepb.Resource{Attributes: []*commonpb.KeyValue{
		{Key: "service.name", Value: strValue("svc-a")},
	}}

	dto := LogFromOTLP(record, scope, resource)

	if got := dto.Timestamp.Format(time.RFC3339); got != "2023-11-14T22:13:20Z" {
		t.Errorf("Timestamp = %s", got)
	}
	if dto.TimeUnixNano != 1700000000000000000 {
		t.Errorf("TimeUnixNano = %d", dto.TimeUnixNano)
	}
	if dto.Severity != SeverityInfo {
		t.Errorf("Severity = %q", dto.Severity)
	}
	if dto.Message != "hello" {
		t.Errorf("Message = %q", dto.Message)
	}
	if dto.Scope != "test-lib" {
		t.Errorf("Scope = %q", dto.Scope)
	}
	if dto.TraceID != "0102030405060708090a0b0c0d0e0f10" {
		t.Errorf("TraceID = %q", dto.TraceID)
	}
	if dto.SpanID != "0102030405060708" {
		t.Errorf("SpanID = %q", dto.SpanID)
	}
	if dto.EventName != "user.login" {
		t.Errorf("EventName = %q", dto.EventName)
	}
	if dto.Resource.ServiceName != "svc-a" {
		t.Errorf("Resource.ServiceName = %q", dto.Resource.ServiceName)
	}
	if dto.Tags["http.method"] != "GET" || dto.Tags["retries"] != "3" {
		t.Errorf("Tags = %v", dto.Tags)
	}
}

func TestLogFromOTLPTimestampFallback(t *testing.T) {
	// No time_unix_nano: fall back to the observed time.
	record := &logspb.LogRecord{ObservedTimeUnixNano: 1700000000000000001}
	dto := LogFromOTLP(record, nil, nil)
	if dto.TimeUnixNano != 1700000000000000001 {
		t.Errorf("TimeUnixNano = %d, want observed time", dto.TimeUnixNano)
	}

	// Neither set: epoch.
	dto = LogFromOTLP(&logspb.LogRecord{}, nil, nil)
	if !dto.Timestamp.Equal(time.Unix(0, 0)) {
		t.Errorf("Timestamp = %v, want epoch", dto.Timestamp)
	}
}

func TestLogFromOTLPDegradesToEmpty(t *testing.T) {
	dto := LogFromOTLP(&logspb.LogRecord{}, nil, nil)

	if dto.Message != "" || dto.Scope != "" || dto.EventName != "" {
		t.Errorf("expected empty strings, got message=%q scope=%q event=%q", dto.Message, dto.Scope, dto.EventName)
	}
	if dto.TraceID != "" || dto.SpanID != "" {
		t.Errorf("expected absent ids, got trace=%q span=%q", dto.TraceID, dto.SpanID)
	}
	if dto.Tags == nil || dto.Resource.Attributes == nil {
		t.Error("maps must be allocated even when empty")
	}
}

func TestLogDtoJSON(t *testing.T) {
	dto := LogDto{
		Timestamp:    time.Date(2025, 1, 12, 14, 23, 20, 0, time.UTC),
		TimeUnixNano: 1641996200000000000,
		Severity:     SeverityError,
		Message:      "test",
		Scope:        "TestScope",
		Resource: ResourceInfo{
			ServiceName:       "test service",
			ServiceVersion:    "1.0",
			ServiceNamespace:  "test",
			ServiceInstanceID: "1-2-3",
			Attributes:        map[string]string{},
		},
		Tags: map[string]string{},
	}

	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"timestamp":"2025-01-12T14:23:20Z","time_unix_nano":"1641996200000000000",` +
		`"severity":"Error","message":"test","scope":"TestScope",` +
		`"resource":{"service_name":"test service","service_version":"1.0",` +
		`"service_namespace":"test","service_instance_id":"1-2-3","attributes":{}},"tags":{}}`
	if string(data) != want {
		t.Errorf("marshal mismatch\n got: %s\nwant: %s", data, want)
	}
}

func TestLogDtoJSONUnknownSeverity(t *testing.T) {
	dto := LogFromOTLP(&logspb.LogRecord{SeverityText: "bizarre"}, nil, nil)
	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["severity"] != "bizarre" {
		t.Errorf("severity = %v, want bare original text", decoded["severity"])
	}
	if _, ok := decoded["trace_id"]; ok {
		t.Error("trace_id key must be absent for invalid ids")
	}
	if _, ok := decoded["event_name"]; ok {
		t.Error("event_name key must be absent when empty")
	}
}
