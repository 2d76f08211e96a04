package flatten

import (
	"fmt"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

// Separator joins ancestor keys and list indices in flattened keys.
const Separator = "."

// Mappable is implemented by provider response types that can expose their
// fields as a plain mapping.
type Mappable interface {
	AsMap() (map[string]any, error)
}

// Flattener turns nested mappings into single-level mappings keyed by
// dot-joined paths.
type Flattener struct {
	logger *zap.Logger
}

// New creates a Flattener. A nil logger discards diagnostics.
func New(logger *zap.Logger) *Flattener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flattener{logger: logger}
}

// Flatten returns the flat view of obj.
//
// Nested mappings and sequences are expanded with Separator-joined keys
// ("a.b.2.c"). A sequence holding only strings is kept as-is under its
// parent key. Values that cannot be coerced to a mapping are opaque leaves.
// Flatten never fails: on an internal error it logs and returns what it has
// collected so far.
func (f *Flattener) Flatten(obj any) (out map[string]any) {
	out = make(map[string]any)
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Flatten aborted, returning partial result",
				zap.Any("panic", r),
				zap.Int("collected", len(out)),
			)
		}
	}()

	m, ok := f.toMap(obj)
	if !ok {
		f.logger.Warn("Flatten input is not a mapping", zap.String("type", fmt.Sprintf("%T", obj)))
		return out
	}
	for k, v := range m {
		f.flattenValue(out, k, v)
	}
	return out
}

// Flatten is a convenience wrapper around a Flattener without logging.
func Flatten(obj any) map[string]any {
	return New(nil).Flatten(obj)
}

// ToMap coerces obj to a mapping when it is one, or when it implements
// Mappable. The boolean reports whether coercion succeeded.
func ToMap(obj any) (map[string]any, bool) {
	return New(nil).toMap(obj)
}

func (f *Flattener) flattenValue(out map[string]any, key string, v any) {
	if m, ok := f.toMap(v); ok {
		for k, nested := range m {
			f.flattenValue(out, key+Separator+k, nested)
		}
		return
	}

	if items, ok := asSlice(v); ok {
		if allStrings(items) {
			out[key] = v
			return
		}
		for i, item := range items {
			f.flattenValue(out, key+Separator+strconv.Itoa(i), item)
		}
		return
	}

	out[key] = v
}

func (f *Flattener) toMap(obj any) (map[string]any, bool) {
	switch v := obj.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return v, true
	case Mappable:
		m, err := v.AsMap()
		if err != nil {
			f.logger.Debug("Mappable coercion failed, treating value as opaque", zap.Error(err))
			return nil, false
		}
		return m, m != nil
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		items := make([]any, len(s))
		for i := range s {
			items[i] = s[i]
		}
		return items, true
	case []byte:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// allStrings is true for an empty sequence too.
func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}
