// Package fieldmap resolves which flattened provider field feeds each canonical
// document field.
//
// The table is a YAML document keyed by cloud type, then lower-cased resource
// type, then canonical field name:
//
//	openstack:
//	  flavor:
//	    reference_id: id
//	    ram: ram
//	    cloud_meta_note: extra_specs.note   # rejected: not a Flavor field
//
// Load reads it once at startup, from a file search path or from the object
// storage bucket, and the resulting Table is passed to the mapper. Entries are
// checked against the canonical schemas while parsing, so a typo in the table
// stops the process instead of silently producing empty fields.
package fieldmap
