package cloud

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ConnectFunc authenticates against one cloud and returns its lister.
type ConnectFunc func(ctx context.Context, c Cloud, logger *zap.Logger) (Lister, error)

// Connector hands out one lister per cloud, connecting lazily. Concurrent
// callers for the same cloud share a single connection attempt.
type Connector struct {
	registry *Registry
	connect  map[string]ConnectFunc
	logger   *zap.Logger

	mu      sync.RWMutex
	listers map[string]Lister
	sf      singleflight.Group
}

// NewConnector creates a Connector dispatching on cloud type.
func NewConnector(registry *Registry, connect map[string]ConnectFunc, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{
		registry: registry,
		connect:  connect,
		logger:   logger,
		listers:  make(map[string]Lister),
	}
}

// Registry returns the registry the connector resolves names against.
func (c *Connector) Registry() *Registry {
	return c.registry
}

// Lister returns the lister of the named cloud.
func (c *Connector) Lister(ctx context.Context, name string) (Lister, error) {
	c.mu.RLock()
	l, ok := c.listers[name]
	c.mu.RUnlock()
	if ok {
		return l, nil
	}

	v, err, _ := c.sf.Do(name, func() (any, error) {
		c.mu.RLock()
		l, ok := c.listers[name]
		c.mu.RUnlock()
		if ok {
			return l, nil
		}

		cl, err := c.registry.Get(name)
		if err != nil {
			return nil, err
		}
		fn, ok := c.connect[cl.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCloudType, cl.Type)
		}
		l, err = fn(ctx, cl, c.logger.With(zap.String("cloud", name)))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cloud %s: %w", name, err)
		}

		c.mu.Lock()
		c.listers[name] = l
		c.mu.Unlock()
		c.logger.Info("Connected to cloud", zap.String("cloud", name), zap.String("type", cl.Type))
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Lister), nil
}

// Forget drops the cached lister of name, forcing a reconnect on next use.
func (c *Connector) Forget(name string) {
	c.mu.Lock()
	delete(c.listers, name)
	c.mu.Unlock()
}
