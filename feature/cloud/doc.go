// Package cloud holds the registry of configured clouds and the capability
// interfaces the sync feature consumes.
//
// The registry is read once from a clouds file:
//
//	clouds:
//	  regionone:
//	    type: openstack
//	    region_name: RegionOne
//	    auth:
//	      auth_url: https://keystone.example.com/v3
//	      username: sync
//	      password: secret
//	      project_name: admin
//	      user_domain_name: Default
//	      project_domain_name: Default
//
// Backends live in sub-packages (openstack, aws, gcp) and are wired into a
// Connector by cloud type.
package cloud
