// Package utils provides loose type conversion helpers for document values that
// arrive as decoded JSON, YAML or database scans of uncertain type.
package utils
