// Package docstore persists canonical resource documents.
//
// Each resource type owns one collection. GormStore maps a collection to a
// table whose indexed fields (uuid, reference_id, cloud, source, active and
// a few descriptive strings) are columns, while the type-specific fields are
// kept in a JSON column. Documents read back from the store merge both into
// a single flat map.
package docstore
