package docstore

import (
	"context"
	"errors"
)

// Document is a schemaless resource document keyed by field name.
type Document = map[string]any

// Filter selects documents by equality on indexed columns. A nil value matches
// NULL.
type Filter map[string]any

// Update is one conditional update staged by the reconciler. Filter must name
// the document's uuid.
type Update struct {
	Filter Filter
	Set    Document
}

// Store is the persistence capability the reconciler and the orchestrator
// depend on. One collection holds the documents of one resource type.
type Store interface {
	// Find returns every document of collection matching filter.
	Find(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// InsertMany inserts docs in one round trip.
	InsertMany(ctx context.Context, collection string, docs []Document) error
	// UpdateOne applies patch to the document selected by a uuid filter and
	// returns the number of modified documents.
	UpdateOne(ctx context.Context, collection string, filter Filter, patch Document) (int64, error)
	// BulkUpdate applies all updates atomically and returns the number of
	// modified documents.
	BulkUpdate(ctx context.Context, collection string, updates []Update) (int64, error)
}

var (
	// ErrMissingUUIDFilter is returned for updates that are not keyed by uuid.
	ErrMissingUUIDFilter = errors.New("update filter must contain uuid")
	// ErrUnknownFilterField is returned when a filter names a field that is not an indexed column.
	ErrUnknownFilterField = errors.New("filter field is not a column")
	// ErrInvalidCollection is returned for empty or malformed collection names.
	ErrInvalidCollection = errors.New("invalid collection name")
)
