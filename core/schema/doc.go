// Package schema defines the canonical resource documents stored by the sync service.
//
// Every ResourceType maps to exactly one Schema through a static table built at
// package initialisation. A Schema is the shared base fields (name, cloud,
// reference_id, source, active, cloud_meta, ...) plus the type-specific fields.
// Schema.Build coerces loosely typed provider values to each field's Kind and
// fills declared defaults, so "active" is ACTIVE for every freshly built document.
package schema
