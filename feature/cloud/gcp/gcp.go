// Package gcp is the placeholder backend for GCP clouds. Every listing
// reports cloud.ErrNotImplemented so that sync jobs fail loudly.
package gcp

import (
	"context"
	"fmt"

	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"go.uber.org/zap"
)

// Lister implements cloud.Lister for GCP.
type Lister struct {
	name string
}

// Connect implements cloud.ConnectFunc.
func Connect(ctx context.Context, c cloud.Cloud, logger *zap.Logger) (cloud.Lister, error) {
	return &Lister{name: c.Name}, nil
}

// List implements cloud.Lister.
func (l *Lister) List(ctx context.Context, rt schema.ResourceType) ([]any, error) {
	return nil, fmt.Errorf("gcp cloud %s, %s: %w", l.name, rt, cloud.ErrNotImplemented)
}
