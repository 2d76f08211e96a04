// Package flatten converts nested provider payloads into flat mappings.
//
// A payload such as
//
//	{"a": 1, "b": {"c": 2}, "e": [8, {"a": 5}]}
//
// becomes
//
//	{"a": 1, "b.c": 2, "e.0": 8, "e.1.a": 5}
//
// Sequences made only of strings (tags, security group names) are kept whole.
// Provider wrapper types take part by implementing Mappable; anything else that
// is not a map is stored as an opaque leaf.
//
// The field-map resolver addresses source values by these flat keys.
package flatten
