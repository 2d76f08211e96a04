// Package openstack lists OpenStack resources through gophercloud.
//
// Listings bypass the typed gophercloud result structs and keep every item
// as the decoded JSON map, which is exactly what the mapper and the
// cloud_meta field expect. The pager understands the next-page links of
// nova, neutron, cinder, glance, keystone, heat and magnum.
//
// The Lister also implements cloud.StackWalker: it walks heat stacks and
// fetches the detail of every resource whose heat type maps to a known
// collection, tagging each payload with source_id set to the stack id.
package openstack
