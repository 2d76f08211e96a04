package openstack

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/pagination"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClientSource returns the service client of one OpenStack service.
type ClientSource func(Service) (*gophercloud.ServiceClient, error)

// DefaultDetailConcurrency bounds parallel detail lookups of the stack walker.
const DefaultDetailConcurrency = 8

// stackNestedDepth makes the walker also report resources of nested stacks.
const stackNestedDepth = 3

// Lister lists OpenStack resources as raw API payloads.
type Lister struct {
	cloud       string
	clients     ClientSource
	logger      *zap.Logger
	concurrency int
}

var (
	_ cloud.Lister      = (*Lister)(nil)
	_ cloud.StackWalker = (*Lister)(nil)
)

// NewLister creates a Lister for the named cloud.
func NewLister(name string, clients ClientSource, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{cloud: name, clients: clients, logger: logger, concurrency: DefaultDetailConcurrency}
}

// List implements cloud.Lister.
func (l *Lister) List(ctx context.Context, rt schema.ResourceType) ([]any, error) {
	ep, ok := endpoints[rt]
	if !ok {
		return nil, fmt.Errorf("%s on openstack: %w", rt, cloud.ErrNotImplemented)
	}
	client, err := l.clients(ep.service)
	if err != nil {
		return nil, fmt.Errorf("no %s client: %w", ep.service, err)
	}

	var out []any
	err = l.eachItem(ctx, client, client.ServiceURL(ep.list...), ep.listKey, func(item map[string]any) {
		if ep.itemKey != "" {
			if inner, ok := item[ep.itemKey].(map[string]any); ok {
				item = inner
			}
		}
		out = append(out, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rt, err)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// Get fetches the detail payload of one resource.
func (l *Lister) Get(ctx context.Context, rt schema.ResourceType, id string) (map[string]any, error) {
	ep, ok := endpoints[rt]
	if !ok {
		return nil, fmt.Errorf("%s on openstack: %w", rt, cloud.ErrNotImplemented)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := l.clients(ep.service)
	if err != nil {
		return nil, fmt.Errorf("no %s client: %w", ep.service, err)
	}

	var body map[string]any
	if _, err := client.Get(client.ServiceURL(ep.base, id), &body, nil); err != nil {
		return nil, err
	}
	if ep.getKey != "" {
		if inner, ok := body[ep.getKey].(map[string]any); ok {
			return inner, nil
		}
	}
	return body, nil
}

// WalkStacks implements cloud.StackWalker. It lists every stack and its
// resources, then fetches the detail payload of each resource whose heat
// type maps to a known collection. Lookups that fail are logged and skipped.
func (l *Lister) WalkStacks(ctx context.Context) (*cloud.StackInventory, error) {
	client, err := l.clients(Orchestration)
	if err != nil {
		return nil, fmt.Errorf("no %s client: %w", Orchestration, err)
	}

	type pending struct {
		rt         schema.ResourceType
		stackID    string
		physicalID string
	}
	var todo []pending

	err = l.eachItem(ctx, client, client.ServiceURL("stacks"), "stacks", func(stack map[string]any) {
		stackID, _ := stack["id"].(string)
		stackName, _ := stack["stack_name"].(string)
		if stackID == "" {
			return
		}
		resURL := client.ServiceURL("stacks", stackName, stackID, "resources") + fmt.Sprintf("?nested_depth=%d", stackNestedDepth)
		rerr := l.eachItem(ctx, client, resURL, "resources", func(res map[string]any) {
			heatType, _ := res["resource_type"].(string)
			physicalID, _ := res["physical_resource_id"].(string)
			rt, ok := stackResourceType(heatType)
			if !ok || physicalID == "" {
				return
			}
			todo = append(todo, pending{rt: rt, stackID: stackID, physicalID: physicalID})
		})
		if rerr != nil {
			l.logger.Warn("Failed to list stack resources", zap.String("stack_id", stackID), zap.Error(rerr))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stacks: %w", err)
	}

	inv := &cloud.StackInventory{
		Types:   StackResourceTypes(),
		Records: make(map[schema.ResourceType][]cloud.StackRecord),
	}
	records := make([]*cloud.StackRecord, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range todo {
		g.Go(func() error {
			payload, err := l.Get(gctx, p.rt, p.physicalID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				l.logger.Warn("Failed to fetch stack resource",
					zap.String("resource_type", p.rt.String()),
					zap.String("physical_id", p.physicalID),
					zap.Error(err),
				)
				return nil
			}
			payload[schema.FieldSourceID] = p.stackID
			records[i] = &cloud.StackRecord{StackID: p.stackID, PhysicalID: p.physicalID, Payload: payload}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, rec := range records {
		if rec != nil {
			rt := todo[i].rt
			inv.Records[rt] = append(inv.Records[rt], *rec)
		}
	}
	return inv, nil
}

func (l *Lister) eachItem(ctx context.Context, client *gophercloud.ServiceClient, url, key string, fn func(map[string]any)) error {
	pager := pagination.NewPager(client, url, newRawPage(key))
	return pager.EachPage(func(page pagination.Page) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		items, err := page.(rawPage).items()
		if err != nil {
			return false, err
		}
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				fn(m)
			}
		}
		return true, nil
	})
}

// serviceClients builds service clients lazily from an authenticated provider.
func serviceClients(provider *gophercloud.ProviderClient, region string) ClientSource {
	var mu sync.Mutex
	cache := make(map[Service]*gophercloud.ServiceClient)
	eo := gophercloud.EndpointOpts{Region: region, Availability: gophercloud.AvailabilityPublic}

	return func(s Service) (*gophercloud.ServiceClient, error) {
		mu.Lock()
		defer mu.Unlock()
		if c, ok := cache[s]; ok {
			return c, nil
		}
		c, err := newServiceClient(provider, eo, s)
		if err != nil {
			return nil, err
		}
		cache[s] = c
		return c, nil
	}
}
