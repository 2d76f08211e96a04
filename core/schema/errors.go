package schema

import "fmt"

// UnsupportedResourceTypeError is returned when no canonical schema matches a
// resource type name.
type UnsupportedResourceTypeError struct {
	Name string
}

func (e *UnsupportedResourceTypeError) Error() string {
	return fmt.Sprintf("unsupported resource type %q", e.Name)
}

// ValidationError is returned when a value cannot be coerced to the kind its
// schema field declares.
type ValidationError struct {
	Type  ResourceType
	Field string
	Kind  Kind
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: expected %s: %v", e.Type, e.Field, e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
