package openstack

import (
	"context"
	"fmt"

	"cloudsync/feature/cloud"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/utils/openstack/clientconfig"
	"go.uber.org/zap"
)

// Connect implements cloud.ConnectFunc. Credentials come from the registry
// entry when it names an auth_url, otherwise from the cloud of the same name
// in the standard clouds.yaml lookup (or OS_* variables).
func Connect(ctx context.Context, c cloud.Cloud, logger *zap.Logger) (cloud.Lister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ao, err := authOptions(c)
	if err != nil {
		return nil, err
	}
	provider, err := openstack.AuthenticatedClient(*ao)
	if err != nil {
		return nil, fmt.Errorf("keystone authentication failed: %w", err)
	}
	logger.Debug("Authenticated against keystone", zap.String("region", c.RegionName))
	return NewLister(c.Name, serviceClients(provider, c.RegionName), logger), nil
}

func authOptions(c cloud.Cloud) (*gophercloud.AuthOptions, error) {
	if c.Auth.AuthURL == "" {
		ao, err := clientconfig.AuthOptions(&clientconfig.ClientOpts{Cloud: c.Name})
		if err != nil {
			return nil, fmt.Errorf("cannot find OpenStack credentials for %s: %w", c.Name, err)
		}
		ao.AllowReauth = true
		return ao, nil
	}

	a := c.Auth
	ao := &gophercloud.AuthOptions{
		IdentityEndpoint:            a.AuthURL,
		Username:                    a.Username,
		UserID:                      a.UserID,
		Password:                    a.Password,
		DomainName:                  a.UserDomainName,
		DomainID:                    a.UserDomainID,
		ApplicationCredentialID:     a.ApplicationCredentialID,
		ApplicationCredentialSecret: a.ApplicationCredentialSecret,
		AllowReauth:                 true,
	}
	if a.ApplicationCredentialID == "" && (a.ProjectName != "" || a.ProjectID != "") {
		ao.Scope = &gophercloud.AuthScope{
			ProjectID:   a.ProjectID,
			ProjectName: a.ProjectName,
			DomainName:  a.ProjectDomainName,
			DomainID:    a.ProjectDomainID,
		}
		if ao.Scope.DomainName == "" && ao.Scope.DomainID == "" && a.ProjectID == "" {
			ao.Scope.DomainName = a.UserDomainName
			ao.Scope.DomainID = a.UserDomainID
		}
	}
	return ao, nil
}

func newServiceClient(provider *gophercloud.ProviderClient, eo gophercloud.EndpointOpts, s Service) (*gophercloud.ServiceClient, error) {
	switch s {
	case Compute:
		return openstack.NewComputeV2(provider, eo)
	case Network:
		return openstack.NewNetworkV2(provider, eo)
	case BlockStorage:
		return openstack.NewBlockStorageV3(provider, eo)
	case Image:
		return openstack.NewImageServiceV2(provider, eo)
	case Identity:
		return openstack.NewIdentityV3(provider, eo)
	case Orchestration:
		return openstack.NewOrchestrationV1(provider, eo)
	case ContainerInfra:
		return openstack.NewContainerInfraV1(provider, eo)
	}
	return nil, fmt.Errorf("unknown service %d", s)
}
