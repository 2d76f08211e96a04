package schema

// Base field names shared by every canonical document.
const (
	FieldUUID         = "uuid"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldCloud        = "cloud"
	FieldOrgID        = "org_id"
	FieldProjectID    = "project_id"
	FieldReferenceID  = "reference_id"
	FieldSource       = "source"
	FieldSourceID     = "source_id"
	FieldActive       = "active"
	FieldCloudMeta    = "cloud_meta"
	FieldTerminatedAt = "terminated_at"
	FieldCreatedAt    = "created_at"
	FieldCreatedBy    = "created_by"
	FieldUpdatedAt    = "updated_at"
	FieldUpdatedBy    = "updated_by"
)

var baseFields = []Field{
	{Name: FieldName, Kind: KindString},
	{Name: FieldDescription, Kind: KindString},
	{Name: FieldCloud, Kind: KindString},
	{Name: FieldOrgID, Kind: KindString},
	{Name: FieldProjectID, Kind: KindString},
	{Name: FieldReferenceID, Kind: KindString},
	{Name: FieldSource, Kind: KindString},
	{Name: FieldSourceID, Kind: KindString},
	{Name: FieldActive, Kind: KindInt, Default: int64(StatusActive)},
	{Name: FieldCloudMeta, Kind: KindMap},
	{Name: FieldCreatedBy, Kind: KindString},
	{Name: FieldUpdatedBy, Kind: KindString},
}

func str(name string) Field { return Field{Name: name, Kind: KindString} }
func integer(name string) Field { return Field{Name: name, Kind: KindInt} }
func boolean(name string) Field { return Field{Name: name, Kind: KindBool} }
func boolDefault(name string, d bool) Field { return Field{Name: name, Kind: KindBool, Default: d} }
func list(name string) Field { return Field{Name: name, Kind: KindList} }
func mapping(name string) Field { return Field{Name: name, Kind: KindMap} }

var schemas = []*Schema{
	newSchema(Image,
		str("status"), str("visibility"), boolean("is_protected"), boolean("is_hidden"),
		str("disk_format"), integer("size"), str("container_format"), list("tags"),
	),
	newSchema(Network,
		str("status"), str("router"), list("availability_zones"), str("admin_state"), boolean("shared"),
	),
	newSchema(Instance,
		str("image"), str("flavor"), list("security_groups"), str("vm_state"), str("task_state"),
		str("availability_zone"), str("admin_password"), list("volumes"), list("networks"),
		str("interface"), str("private_v4"), str("private_v6"), str("public_v4"), str("public_v6"),
		str("key_name"), str("user_data"), str("host"), str("launched_at"), str(FieldTerminatedAt),
		str("root_device"), str("power_state"), str("status"), list("tags"), mapping("metadata"),
	),
	newSchema(FloatingIP,
		str("status"), str("floating_ip_address"), str("fixed_ip_address"), str("network_id"),
		str("port_id"), str("router_id"),
	),
	newSchema(Port,
		str("network_id"), str("mac_address"), boolDefault("admin_state", true), str("attached_device"),
		str("status"), list("fixed_ips"),
	),
	newSchema(Bucket),
	newSchema(Router,
		boolDefault("admin_state_up", true), str("network_id"), boolean("enable_snat"), list("ext_fixed_ips"),
		list("availability_zone_hints"), list("availability_zones"), str("status"),
	),
	newSchema(SecurityGroup),
	newSchema(SecurityGroupRule,
		str("security_group_id"), str("direction"), str("ip_protocol"), str("ether_type"),
		str("port_range_min"), str("port_range_max"), str("remote_ip_prefix"), str("remote_group_id"),
	),
	newSchema(Subnet,
		str("network_id"), str("cidr"), integer("ip_version"), boolDefault("enable_dhcp", true),
		str("gateway_ip"), boolDefault("disable_gateway_ip", false), list("allocation_pools"),
		list("dns_nameservers"),
	),
	newSchema(Project,
		str("domain_name"), boolDefault("enable", true),
	),
	newSchema(KeyPair,
		str("public_key"), str("private_key"), str("fingerprint"), str("type"),
	),
	newSchema(Flavor,
		integer("ram"), integer("vcpus"), integer("disk"), integer("ephemeral"), Field{Name: "swap", Kind: KindAny},
		boolean("disabled"), str("zone"), Field{Name: "rxtx_factor", Kind: KindFloat}, boolean("is_public"),
	),
	newSchema(VolumeSnapshot,
		str("volume_id"), str("status"), integer("size"),
	),
	newSchema(Volume,
		integer("size"), boolean("bootable"), str("status"), str("host"), list("attachments"),
		str("availability_zone"), str("volume_type"), boolean("is_bootable"), boolean("is_encrypted"),
		boolean("is_multiattach"),
	),
	newSchema(ClusterTemplate,
		str("image_id"), str("keypair_id"), str("coe"), boolDefault("public", false), boolDefault("hidden", false),
		boolDefault("registry_enabled", false), boolDefault("tls_disabled", false), str("flavor_id"),
		str("master_flavor_id"), str("volume_driver"), str("docker_storage_driver"), str("docker_volume_size"),
		str("network_driver"), str("http_proxy"), str("https_proxy"), str("no_proxy"),
		str("external_network_id"), str("fixed_network"), str("fixed_subnet"), str("dns_nameserver"),
		boolDefault("master_lb_enabled", false), boolDefault("floating_ip_enabled", false), mapping("labels"),
	),
	newSchema(Cluster,
		str("cluster_template_id"), str("availability_zone"), Field{Name: "master_count", Kind: KindInt, Default: int64(1)},
		str("master_flavor_id"), Field{Name: "node_count", Kind: KindInt, Default: int64(1)}, str("flavor_id"),
		str("status"), str("stack_id"),
	),
}

var registry = make(map[ResourceType]*Schema, len(schemas))

func init() {
	for _, s := range schemas {
		registry[s.Type] = s
	}
}
