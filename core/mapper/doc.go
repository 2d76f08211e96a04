// Package mapper translates raw cloud-provider payloads into canonical documents.
//
// A translation flattens the payload, copies each canonical field from the
// flattened source path named by the field map, keeps the untouched payload in
// cloud_meta and validates the result against the resource type's schema.
// Translation is deterministic: it never reads the clock or generates ids.
//
// Failures are returned as *MappingResolutionError. Use IsConfigurationError and
// IsUnsupportedResourceType to tell a configuration gap from a bad payload.
package mapper
