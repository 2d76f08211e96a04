package openstack

import (
	"strings"

	"cloudsync/core/schema"
)

// Service identifies one OpenStack API service.
type Service int

const (
	Compute Service = iota
	Network
	BlockStorage
	Image
	Identity
	Orchestration
	ContainerInfra
)

var serviceNames = [...]string{"compute", "network", "block-storage", "image", "identity", "orchestration", "container-infra"}

func (s Service) String() string {
	if int(s) < len(serviceNames) {
		return serviceNames[s]
	}
	return "unknown"
}

// endpoint describes how a resource type is listed and fetched.
type endpoint struct {
	service Service
	// list is the collection path; listKey the body key holding the items.
	list    []string
	listKey string
	// base is the path detail lookups append the id to; getKey the body key
	// wrapping a single item, empty when the item is returned bare.
	base   string
	getKey string
	// itemKey unwraps list items nested one level deeper.
	itemKey string
}

var endpoints = map[schema.ResourceType]endpoint{
	schema.Image:             {service: Image, list: []string{"images"}, listKey: "images", base: "images"},
	schema.Network:           {service: Network, list: []string{"networks"}, listKey: "networks", base: "networks", getKey: "network"},
	schema.Instance:          {service: Compute, list: []string{"servers", "detail"}, listKey: "servers", base: "servers", getKey: "server"},
	schema.FloatingIP:        {service: Network, list: []string{"floatingips"}, listKey: "floatingips", base: "floatingips", getKey: "floatingip"},
	schema.Port:              {service: Network, list: []string{"ports"}, listKey: "ports", base: "ports", getKey: "port"},
	schema.Router:            {service: Network, list: []string{"routers"}, listKey: "routers", base: "routers", getKey: "router"},
	schema.SecurityGroup:     {service: Network, list: []string{"security-groups"}, listKey: "security_groups", base: "security-groups", getKey: "security_group"},
	schema.SecurityGroupRule: {service: Network, list: []string{"security-group-rules"}, listKey: "security_group_rules", base: "security-group-rules", getKey: "security_group_rule"},
	schema.Subnet:            {service: Network, list: []string{"subnets"}, listKey: "subnets", base: "subnets", getKey: "subnet"},
	schema.Project:           {service: Identity, list: []string{"projects"}, listKey: "projects", base: "projects", getKey: "project"},
	schema.KeyPair:           {service: Compute, list: []string{"os-keypairs"}, listKey: "keypairs", base: "os-keypairs", getKey: "keypair", itemKey: "keypair"},
	schema.Flavor:            {service: Compute, list: []string{"flavors", "detail"}, listKey: "flavors", base: "flavors", getKey: "flavor"},
	schema.VolumeSnapshot:    {service: BlockStorage, list: []string{"snapshots", "detail"}, listKey: "snapshots", base: "snapshots", getKey: "snapshot"},
	schema.Volume:            {service: BlockStorage, list: []string{"volumes", "detail"}, listKey: "volumes", base: "volumes", getKey: "volume"},
	schema.ClusterTemplate:   {service: ContainerInfra, list: []string{"clustertemplates"}, listKey: "clustertemplates", base: "clustertemplates"},
	schema.Cluster:           {service: ContainerInfra, list: []string{"clusters"}, listKey: "clusters", base: "clusters"},
}

// stackTypes maps the last segment of a heat resource type (OS::Nova::Server)
// to the resource type whose collection receives it.
var stackTypes = map[string]schema.ResourceType{
	"Flavor":            schema.Flavor,
	"FloatingIP":        schema.FloatingIP,
	"Image":             schema.Image,
	"KeyPair":           schema.KeyPair,
	"Net":               schema.Network,
	"Project":           schema.Project,
	"Router":            schema.Router,
	"Server":            schema.Instance,
	"SecurityGroup":     schema.SecurityGroup,
	"SecurityGroupRule": schema.SecurityGroupRule,
	"Subnet":            schema.Subnet,
	"Volume":            schema.Volume,
}

// stackResourceType resolves a heat resource type by its last segment.
func stackResourceType(heatType string) (schema.ResourceType, bool) {
	name := heatType
	if i := strings.LastIndex(heatType, "::"); i >= 0 {
		name = heatType[i+len("::"):]
	}
	rt, ok := stackTypes[name]
	return rt, ok
}

// StackResourceTypes returns the resource types the stack walker discovers.
func StackResourceTypes() []schema.ResourceType {
	seen := make(map[schema.ResourceType]struct{}, len(stackTypes))
	out := make([]schema.ResourceType, 0, len(stackTypes))
	for _, rt := range schema.AllResourceTypes() {
		for _, mapped := range stackTypes {
			if mapped != rt {
				continue
			}
			if _, ok := seen[rt]; !ok {
				seen[rt] = struct{}{}
				out = append(out, rt)
			}
		}
	}
	return out
}
