package cloud

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported cloud types.
const (
	TypeOpenStack = "openstack"
	TypeAWS       = "aws"
	TypeGCP       = "gcp"
)

// DefaultSearchPaths is the lookup order for the clouds file when no
// explicit path is configured.
var DefaultSearchPaths = []string{
	"/etc/cloudsync/clouds.yaml",
	"./clouds.yaml",
	"../clouds.yaml",
}

// Auth holds the credentials of one cloud. Empty fields are left to the
// backend's own configuration lookup.
type Auth struct {
	AuthURL                     string `yaml:"auth_url"`
	Username                    string `yaml:"username"`
	UserID                      string `yaml:"user_id"`
	Password                    string `yaml:"password"`
	ProjectName                 string `yaml:"project_name"`
	ProjectID                   string `yaml:"project_id"`
	UserDomainName              string `yaml:"user_domain_name"`
	UserDomainID                string `yaml:"user_domain_id"`
	ProjectDomainName           string `yaml:"project_domain_name"`
	ProjectDomainID             string `yaml:"project_domain_id"`
	ApplicationCredentialID     string `yaml:"application_credential_id"`
	ApplicationCredentialSecret string `yaml:"application_credential_secret"`
}

// Cloud is one named cloud instance.
type Cloud struct {
	Name       string `yaml:"-"`
	Type       string `yaml:"type"`
	RegionName string `yaml:"region_name"`
	Auth       Auth   `yaml:"auth"`
}

// Registry is the immutable set of configured clouds.
type Registry struct {
	clouds map[string]Cloud
	origin string
}

type registryFile struct {
	Clouds map[string]Cloud `yaml:"clouds"`
}

// NewRegistry builds a registry from clouds. Cloud types are lowercased.
func NewRegistry(clouds ...Cloud) (*Registry, error) {
	r := &Registry{clouds: make(map[string]Cloud, len(clouds))}
	for _, c := range clouds {
		if err := r.add(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(c Cloud) error {
	if c.Name == "" {
		return errors.New("cloud without a name")
	}
	if _, dup := r.clouds[c.Name]; dup {
		return fmt.Errorf("cloud %s declared twice", c.Name)
	}
	c.Type = strings.ToLower(c.Type)
	switch c.Type {
	case TypeOpenStack, TypeAWS, TypeGCP:
	case "":
		c.Type = TypeOpenStack
	default:
		return fmt.Errorf("cloud %s: %w: %q", c.Name, ErrUnsupportedCloudType, c.Type)
	}
	r.clouds[c.Name] = c
	return nil
}

// ParseRegistry decodes a clouds document.
func ParseRegistry(data []byte, origin string) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", origin, err)
	}
	r := &Registry{clouds: make(map[string]Cloud, len(file.Clouds)), origin: origin}
	for name, c := range file.Clouds {
		c.Name = name
		if err := r.add(c); err != nil {
			return nil, fmt.Errorf("%s: %w", origin, err)
		}
	}
	return r, nil
}

// LoadRegistry reads the first existing file of paths, or of
// DefaultSearchPaths when paths is empty.
func LoadRegistry(paths ...string) (*Registry, error) {
	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		return ParseRegistry(data, p)
	}
	return nil, fmt.Errorf("no clouds file found in %s", strings.Join(paths, ", "))
}

// Get returns the cloud called name.
func (r *Registry) Get(name string) (Cloud, error) {
	c, ok := r.clouds[name]
	if !ok {
		return Cloud{}, fmt.Errorf("%w: %s", ErrUnknownCloud, name)
	}
	return c, nil
}

// CloudType returns the type of the cloud called name.
func (r *Registry) CloudType(name string) (string, error) {
	c, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return c.Type, nil
}

// Names returns every cloud name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clouds))
	for name := range r.clouds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Origin returns where the registry was loaded from.
func (r *Registry) Origin() string {
	return r.origin
}

// Config locates the clouds file.
type Config struct {
	// Path overrides DefaultSearchPaths when set.
	Path string `mapstructure:"path" default:""`
}

// Load reads the registry from the configured path or the default locations.
func (c Config) Load() (*Registry, error) {
	if c.Path != "" {
		return LoadRegistry(c.Path)
	}
	return LoadRegistry()
}
