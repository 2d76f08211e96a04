package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ResourceType identifies a kind of cloud resource. Each type has exactly one
// canonical schema and one document collection.
type ResourceType int

const (
	Image ResourceType = iota + 1
	Network
	Instance
	FloatingIP
	Port
	Bucket
	Router
	SecurityGroup
	SecurityGroupRule
	Subnet
	Project
	KeyPair
	Flavor
	VolumeSnapshot
	Volume
	ClusterTemplate
	Cluster
)

var typeNames = map[ResourceType]string{
	Image:             "Image",
	Network:           "Network",
	Instance:          "Instance",
	FloatingIP:        "FloatingIP",
	Port:              "Port",
	Bucket:            "Bucket",
	Router:            "Router",
	SecurityGroup:     "SecurityGroup",
	SecurityGroupRule: "SecurityGroupRule",
	Subnet:            "Subnet",
	Project:           "Project",
	KeyPair:           "KeyPair",
	Flavor:            "Flavor",
	VolumeSnapshot:    "VolumeSnapshot",
	Volume:            "Volume",
	ClusterTemplate:   "ClusterTemplate",
	Cluster:           "Cluster",
}

// String returns the type name, which is also its collection name.
func (t ResourceType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ResourceType(%d)", int(t))
}

// Collection returns the document collection holding resources of this type.
func (t ResourceType) Collection() string {
	return t.String()
}

// Key returns the lower-cased name used by the field-map table.
func (t ResourceType) Key() string {
	return strings.ToLower(t.String())
}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseResourceType resolves a resource type name case-insensitively, so
// "floatingip", "Floatingip" and "FloatingIP" all resolve to FloatingIP.
func ParseResourceType(name string) (ResourceType, error) {
	trimmed := strings.TrimSpace(name)
	for t, n := range typeNames {
		if strings.EqualFold(n, trimmed) {
			return t, nil
		}
	}
	return 0, &UnsupportedResourceTypeError{Name: name}
}

// MustParseResourceType is ParseResourceType for static names. It panics on an
// unknown name.
func MustParseResourceType(name string) ResourceType {
	t, err := ParseResourceType(name)
	if err != nil {
		panic(err)
	}
	return t
}

// AllResourceTypes returns every known type ordered by name.
func AllResourceTypes() []ResourceType {
	types := make([]ResourceType, 0, len(typeNames))
	for t := range typeNames {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}
