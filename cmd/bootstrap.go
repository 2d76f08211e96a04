package cmd

import (
	"context"
	"fmt"

	"cloudsync/core/config"
	"cloudsync/core/database"
	"cloudsync/core/docstore"
	"cloudsync/core/fieldmap"
	"cloudsync/core/mapper"
	"cloudsync/core/reconcile"
	"cloudsync/core/scheduler"
	"cloudsync/core/storage"
	"cloudsync/feature/cloud"
	"cloudsync/feature/cloud/aws"
	"cloudsync/feature/cloud/gcp"
	"cloudsync/feature/cloud/openstack"
	cloudSync "cloudsync/feature/sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// services is the wired object graph shared by the server and the CLI commands.
type services struct {
	registry *cloud.Registry
	service  *cloudSync.Service
}

// connectors maps every supported cloud type to its backend.
var connectors = map[string]cloud.ConnectFunc{
	cloud.TypeOpenStack: openstack.Connect,
	cloud.TypeAWS:       aws.Connect,
	cloud.TypeGCP:       gcp.Connect,
}

// loadMapper builds the mapper from the configured field map and clouds file.
// The storage client is only created when the field map lives in a bucket.
func loadMapper(ctx context.Context, cfg *config.Config, l *zap.Logger) (*mapper.Mapper, *cloud.Registry, error) {
	var client storage.Client
	if cfg.Mapping.Object != "" {
		c, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		client = c
	}

	table, err := fieldmap.Load(ctx, cfg.Mapping, client, cfg.Storage.Bucket, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load field map: %w", err)
	}

	registry, err := cfg.Clouds.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load clouds: %w", err)
	}
	l.Info("Clouds loaded", zap.String("origin", registry.Origin()), zap.Strings("clouds", registry.Names()))

	return mapper.New(table, registry, l), registry, nil
}

// bootstrap wires the database, field map, clouds and sync service. reg may be
// nil to leave metrics unregistered, sched may be nil for one-shot commands.
func bootstrap(ctx context.Context, cfg *config.Config, l *zap.Logger, reg prometheus.Registerer, sched *scheduler.Scheduler) (*services, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	l.Info("Connected to document database", zap.String("driver", cfg.Database.Driver))

	m, registry, err := loadMapper(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	connector := cloud.NewConnector(registry, connectors, l)
	store := docstore.NewGormStore(db, l)
	syncer := reconcile.NewSyncer(store, m, l, reconcile.Options{BatchSize: cfg.Sync.BatchSize})
	orchestrator := cloudSync.NewOrchestrator(syncer, m, cloudSync.NewMetrics(reg), l)

	return &services{
		registry: registry,
		service:  cloudSync.NewService(cfg.Sync, connector, orchestrator, sched, m, l),
	}, nil
}
