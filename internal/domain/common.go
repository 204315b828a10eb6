// Package domain holds the normalized telemetry shapes delivered to
// subscribers and the conversions from OTLP wire types into them.
// Conversions never fail; malformed subfields degrade to absent or empty
// values so a DTO is always produced.
package domain

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
)

// TraceID is the canonical lowercase-hex form of a valid OTLP trace id.
// The zero value means "absent" and is omitted from JSON.
type TraceID string

// SpanID is the canonical lowercase-hex form of a valid OTLP span id.
// The zero value means "absent" and is omitted from JSON.
type SpanID string

const (
	traceIDLen = 16
	spanIDLen  = 8
)

// TraceIDFromBytes validates raw trace id bytes. Anything other than 16
// bytes with at least one non-zero byte yields the absent id.
func TraceIDFromBytes(b []byte) TraceID {
	if !validID(b, traceIDLen) {
		return ""
	}
	return TraceID(hex.EncodeToString(b))
}

// SpanIDFromBytes validates raw span id bytes. Anything other than 8 bytes
// with at least one non-zero byte yields the absent id.
func SpanIDFromBytes(b []byte) SpanID {
	if !validID(b, spanIDLen) {
		return ""
	}
	return SpanID(hex.EncodeToString(b))
}

func validID(b []byte, size int) bool {
	if len(b) != size {
		return false
	}
	for _, c := range b {
		if c != 0 {
			return true
		}
	}
	return false
}

// Nanoseconds is a unix timestamp in nanoseconds. It marshals as a decimal
// string so JSON consumers can parse it into a 64-bit integer without
// precision loss.
type Nanoseconds uint64

func (n Nanoseconds) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, strconv.FormatUint(uint64(n), 10)), nil
}

func (n *Nanoseconds) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*n = Nanoseconds(v)
	return nil
}

// Time returns the timestamp as UTC wall-clock time.
func (n Nanoseconds) Time() time.Time {
	return time.Unix(0, int64(n)).UTC()
}

// anyValueToString flattens an OTLP AnyValue into a single string for the
// tags/attributes maps: scalars use their textual form, bytes become
// lowercase hex, arrays join their flattened elements with ", ", and kvlists
// render as "k=v, k=v". A missing value is the empty string.
func anyValueToString(v *commonpb.AnyValue) string {
	if v == nil {
		return ""
	}
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_BoolValue:
		return strconv.FormatBool(val.BoolValue)
	case *commonpb.AnyValue_IntValue:
		return strconv.FormatInt(val.IntValue, 10)
	case *commonpb.AnyValue_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'g', -1, 64)
	case *commonpb.AnyValue_BytesValue:
		return hex.EncodeToString(val.BytesValue)
	case *commonpb.AnyValue_ArrayValue:
		elems := val.ArrayValue.GetValues()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = anyValueToString(e)
		}
		return strings.Join(parts, ", ")
	case *commonpb.AnyValue_KvlistValue:
		kvs := val.KvlistValue.GetValues()
		parts := make([]string, len(kvs))
		for i, kv := range kvs {
			parts[i] = kv.GetKey() + "=" + anyValueToString(kv.GetValue())
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// flattenAttributes converts an OTLP KeyValue list to a flat string map.
// The result is never nil; subscribers see {} rather than null.
func flattenAttributes(kvs []*commonpb.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.GetKey()] = anyValueToString(kv.GetValue())
	}
	return m
}

// scopeName extracts the instrumentation scope name, empty when the scope
// is not set.
func scopeName(scope *commonpb.InstrumentationScope) string {
	return scope.GetName()
}
