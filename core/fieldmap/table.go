package fieldmap

import (
	"fmt"
	"sort"
	"strings"

	"cloudsync/core/schema"

	"gopkg.in/yaml.v3"
)

// FieldMap maps a canonical field name to the flattened source path it is
// copied from.
type FieldMap map[string]string

// Fields returns the canonical field names in sorted order.
func (m FieldMap) Fields() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is the parsed declarative field-map resource, keyed by cloud type and
// lower-cased resource type. It is immutable once parsed.
type Table struct {
	entries map[string]map[string]FieldMap
	origin  string
}

// Parse decodes a YAML table of the form
//
//	openstack:
//	  image:
//	    reference_id: id
//	    size: size
//
// and validates every entry against the canonical schemas.
func Parse(data []byte, origin string) (*Table, error) {
	var raw map[string]map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Reason: "invalid field map " + origin, Err: err}
	}

	t := &Table{entries: make(map[string]map[string]FieldMap, len(raw)), origin: origin}
	for cloudType, resources := range raw {
		ct := strings.ToLower(strings.TrimSpace(cloudType))
		byResource := make(map[string]FieldMap, len(resources))
		for resource, fields := range resources {
			rt, err := schema.ParseResourceType(resource)
			if err != nil {
				return nil, &ConfigurationError{CloudType: ct, ResourceType: resource, Reason: "unknown resource type", Err: err}
			}
			s, _ := schema.Lookup(rt)
			fm := make(FieldMap, len(fields))
			for canonical, source := range fields {
				if !s.Has(canonical) {
					return nil, &ConfigurationError{
						CloudType:    ct,
						ResourceType: resource,
						Reason:       fmt.Sprintf("field %q is not part of the %s schema", canonical, rt),
					}
				}
				fm[canonical] = source
			}
			byResource[rt.Key()] = fm
		}
		t.entries[ct] = byResource
	}
	return t, nil
}

// Resolve returns the field map for a (cloud type, resource type) pair.
// The resource type is matched case-insensitively. A missing pair is a
// *ConfigurationError.
func (t *Table) Resolve(cloudType, resourceType string) (FieldMap, error) {
	ct := strings.ToLower(strings.TrimSpace(cloudType))
	resources, ok := t.entries[ct]
	if !ok {
		return nil, &ConfigurationError{CloudType: cloudType, ResourceType: resourceType, Reason: "cloud type not configured"}
	}
	fm, ok := resources[strings.ToLower(strings.TrimSpace(resourceType))]
	if !ok {
		return nil, &ConfigurationError{CloudType: cloudType, ResourceType: resourceType, Reason: "resource type not configured"}
	}

	out := make(FieldMap, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out, nil
}

// CloudTypes lists the configured cloud types.
func (t *Table) CloudTypes() []string {
	out := make([]string, 0, len(t.entries))
	for ct := range t.entries {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out
}

// Resources lists the resource keys configured for a cloud type.
func (t *Table) Resources(cloudType string) []string {
	resources := t.entries[strings.ToLower(cloudType)]
	out := make([]string, 0, len(resources))
	for r := range resources {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Origin describes where the table was loaded from.
func (t *Table) Origin() string {
	return t.origin
}
