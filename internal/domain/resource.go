package domain

import (
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
)

// Well-known resource attribute keys promoted into ResourceInfo fields.
const (
	attrServiceName       = "service.name"
	attrServiceVersion    = "service.version"
	attrServiceNamespace  = "service.namespace"
	attrServiceInstanceID = "service.instance.id"
)

// ResourceInfo identifies the producer of a batch of telemetry. The four
// service.* attributes are hoisted into named fields (empty when missing)
// and never duplicated in Attributes.
type ResourceInfo struct {
	ServiceName       string            `json:"service_name"`
	ServiceVersion    string            `json:"service_version"`
	ServiceNamespace  string            `json:"service_namespace"`
	ServiceInstanceID string            `json:"service_instance_id"`
	Attributes        map[string]string `json:"attributes"`
}

// ResourceInfoFromOTLP extracts producer identity from an OTLP Resource.
// A nil resource yields an all-empty ResourceInfo with a non-nil
// attribute map.
func ResourceInfoFromOTLP(res *resourcepb.Resource) ResourceInfo {
	info := ResourceInfo{Attributes: make(map[string]string, len(res.GetAttributes()))}
	for _, kv := range res.GetAttributes() {
		value := anyValueToString(kv.GetValue())
		switch kv.GetKey() {
		case attrServiceName:
			info.ServiceName = value
		case attrServiceVersion:
			info.ServiceVersion = value
		case attrServiceNamespace:
			info.ServiceNamespace = value
		case attrServiceInstanceID:
			info.ServiceInstanceID = value
		default:
			info.Attributes[kv.GetKey()] = value
		}
	}
	return info
}
