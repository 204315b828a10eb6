package domain

import (
	"encoding/json"
	"testing"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

func TestTraceIDFromBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  TraceID
	}{
		{
			name:  "valid id",
			bytes: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			want:  "0102030405060708090a0b0c0d0e0f10",
		},
		{
			name:  "single non-zero byte",
			bytes: append(make([]byte, 15), 0xff),
			want:  "000000000000000000000000000000ff",
		},
		{
			name:  "all zeros",
			bytes: make([]byte, 16),
			want:  "",
		},
		{
			name:  "too short",
			bytes: []byte{1, 2, 3},
			want:  "",
		},
		{
			name:  "too long",
			bytes: make([]byte, 17),
			want:  "",
		},
		{
			name:  "empty",
			bytes: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TraceIDFromBytes(tt.bytes); got != tt.want {
				t.Errorf("TraceIDFromBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpanIDFromBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  SpanID
	}{
		{
			name:  "valid id",
			bytes: []byte{1, 2, 3, 4, 5, 6, 7, 8},
			want:  "0102030405060708",
		},
		{
			name:  "all zeros",
			bytes: make([]byte, 8),
			want:  "",
		},
		{
			name:  "trace id length rejected",
			bytes: make([]byte, 16),
			want:  "",
		},
		{
			name:  "empty",
			bytes: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpanIDFromBytes(tt.bytes); got != tt.want {
				t.Errorf("SpanIDFromBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNanosecondsJSON(t *testing.T) {
	data, err := json.Marshal(Nanoseconds(1700000000123456789))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1700000000123456789"` {
		t.Errorf("marshal = %s, want quoted decimal string", data)
	}

	var back Nanoseconds
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != 1700000000123456789 {
		t.Errorf("round trip = %d", back)
	}
}

func strValue(s string) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: s}}
}

func intValue(i int64) *commonpb.AnyValue {
	return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: i}}
}

func TestAnyValueToString(t *testing.T) {
	tests := []struct {
		name  string
		value *commonpb.AnyValue
		want  string
	}{
		{"nil value", nil, ""},
		{"empty value", &commonpb.AnyValue{}, ""},
		{"string", strValue("hello"), "hello"},
		{
			"bool",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_BoolValue{BoolValue: true}},
			"true",
		},
		{"int", intValue(-42), "-42"},
		{
			"double",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: 3.14}},
			"3.14",
		},
		{
			"double whole",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_DoubleValue{DoubleValue: 10}},
			"10",
		},
		{
			"bytes lowercase hex",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_BytesValue{BytesValue: []byte{0xDE, 0xAD, 0xBE, 0xEF}}},
			"deadbeef",
		},
		{
			"array joined",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_ArrayValue{ArrayValue: &commonpb.ArrayValue{
				Values: []*commonpb.AnyValue{strValue("a"), intValue(1), strValue("b")},
			}}},
			"a, 1, b",
		},
		{
			"kvlist",
			&commonpb.AnyValue{Value: &commonpb.AnyValue_KvlistValue{KvlistValue: &commonpb.KeyValueList{
				Values: []*commonpb.KeyValue{
					{Key: "k1", Value: strValue("v1")},
					{Key: "k2", Value: intValue(2)},
				},
			}}},
			"k1=v1, k2=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := anyValueToString(tt.value); got != tt.want {
				t.Errorf("anyValueToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlattenAttributesNeverNil(t *testing.T) {
	m := flattenAttributes(nil)
	if m == nil {
		t.Fatal("flattenAttributes(nil) returned nil map")
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}
