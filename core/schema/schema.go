package schema

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Kind is the value kind a schema field accepts.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "any"
	}
}

// Field describes one canonical document field.
type Field struct {
	Name string
	Kind Kind
	// Default is applied when the field is absent from the input.
	Default any
}

// Schema is the canonical document layout of one resource type.
type Schema struct {
	Type   ResourceType
	fields []Field
	index  map[string]int
}

func newSchema(t ResourceType, specific ...Field) *Schema {
	fields := make([]Field, 0, len(baseFields)+len(specific))
	fields = append(fields, baseFields...)
	index := make(map[string]int, cap(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	for _, f := range specific {
		// a type-specific field overrides the base definition of the same name
		if i, ok := index[f.Name]; ok {
			fields[i] = f
			continue
		}
		index[f.Name] = len(fields)
		fields = append(fields, f)
	}
	return &Schema{Type: t, fields: fields, index: index}
}

// Fields returns the field definitions in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether the schema declares the field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Build validates values against the schema and returns the document.
//
// Every declared field present in values is coerced to its kind and kept,
// including nil values. Absent fields receive their default when one is
// declared. Keys the schema does not declare are dropped.
func (s *Schema) Build(values map[string]any) (*Document, error) {
	doc := &Document{Type: s.Type, values: make(map[string]any, len(values))}
	for _, f := range s.fields {
		v, present := values[f.Name]
		if !present {
			if f.Default != nil {
				doc.values[f.Name] = f.Default
			}
			continue
		}
		coerced, err := coerce(f.Kind, v)
		if err != nil {
			return nil, &ValidationError{Type: s.Type, Field: f.Name, Kind: f.Kind, Err: err}
		}
		doc.values[f.Name] = coerced
	}
	return doc, nil
}

func coerce(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindString:
		var out string
		err := mapstructure.WeakDecode(v, &out)
		return out, err
	case KindInt:
		var out int64
		err := mapstructure.WeakDecode(v, &out)
		return out, err
	case KindFloat:
		var out float64
		err := mapstructure.WeakDecode(v, &out)
		return out, err
	case KindBool:
		var out bool
		err := mapstructure.WeakDecode(v, &out)
		return out, err
	case KindList:
		var out []any
		err := mapstructure.WeakDecode(v, &out)
		return out, err
	case KindMap:
		if _, ok := v.(map[string]any); ok {
			return v, nil
		}
		var out map[string]any
		if err := mapstructure.WeakDecode(v, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return v, nil
	}
}

// Lookup returns the schema registered for t.
func Lookup(t ResourceType) (*Schema, error) {
	s, ok := registry[t]
	if !ok {
		return nil, &UnsupportedResourceTypeError{Name: t.String()}
	}
	return s, nil
}

// LookupName resolves name to a resource type and returns its schema.
func LookupName(name string) (*Schema, error) {
	t, err := ParseResourceType(name)
	if err != nil {
		return nil, err
	}
	return Lookup(t)
}

// Document is a canonical resource document produced by Schema.Build.
type Document struct {
	Type   ResourceType
	values map[string]any
}

// Get returns a field value and whether the document carries the field.
func (d *Document) Get(field string) (any, bool) {
	v, ok := d.values[field]
	return v, ok
}

// ReferenceID returns the provider identifier, or "" when unset.
func (d *Document) ReferenceID() string {
	if v, ok := d.values[FieldReferenceID].(string); ok {
		return v
	}
	return ""
}

// ToMap returns a copy of the document's fields.
func (d *Document) ToMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out
}

// Len returns the number of fields the document carries.
func (d *Document) Len() int {
	return len(d.values)
}

func (d *Document) String() string {
	return fmt.Sprintf("%s(%s)", d.Type, d.ReferenceID())
}
