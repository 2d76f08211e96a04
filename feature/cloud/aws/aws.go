// Package aws is the placeholder backend for AWS clouds. Every listing
// reports cloud.ErrNotImplemented so that sync jobs fail loudly.
package aws

import (
	"context"
	"fmt"

	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"go.uber.org/zap"
)

// Lister implements cloud.Lister for AWS.
type Lister struct {
	name string
}

// Connect implements cloud.ConnectFunc.
func Connect(ctx context.Context, c cloud.Cloud, logger *zap.Logger) (cloud.Lister, error) {
	return &Lister{name: c.Name}, nil
}

// List implements cloud.Lister.
func (l *Lister) List(ctx context.Context, rt schema.ResourceType) ([]any, error) {
	return nil, fmt.Errorf("aws cloud %s, %s: %w", l.name, rt, cloud.ErrNotImplemented)
}
