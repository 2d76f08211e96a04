package sync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloudsync/core/database"
	"cloudsync/core/docstore"
	"cloudsync/core/fieldmap"
	"cloudsync/core/mapper"
	"cloudsync/core/reconcile"
	"cloudsync/core/scheduler"
	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTable = `
openstack:
  image:
    name: name
    reference_id: id
    status: status
    visibility: visibility
  volume:
    name: name
    reference_id: id
    status: status
    size: size
  flavor:
    name: name
    reference_id: id
    vcpus: vcpus
    ram: ram
  instance:
    name: name
    reference_id: id
    status: status
  network:
    name: name
    reference_id: id
`

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeLister serves canned payloads and stack inventories.
type fakeLister struct {
	items    map[schema.ResourceType][]any
	listErr  error
	stacks   *cloud.StackInventory
	walkErr  error
	listCall int
}

func (f *fakeLister) List(_ context.Context, rt schema.ResourceType) ([]any, error) {
	f.listCall++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items[rt], nil
}

func (f *fakeLister) WalkStacks(context.Context) (*cloud.StackInventory, error) {
	if f.walkErr != nil {
		return nil, f.walkErr
	}
	return f.stacks, nil
}

// plainLister cannot walk stacks.
type plainLister struct{}

func (plainLister) List(context.Context, schema.ResourceType) ([]any, error) {
	return nil, cloud.ErrNotImplemented
}

// blockingLister holds List until release is closed.
type blockingLister struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingLister) List(ctx context.Context, _ schema.ResourceType) ([]any, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []any{}, nil
}

type testEnv struct {
	store        *docstore.GormStore
	mapper       *mapper.Mapper
	orchestrator *Orchestrator
	registry     *cloud.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	store := docstore.NewGormStore(db, zap.NewNop())

	registry, err := cloud.NewRegistry(
		cloud.Cloud{Name: "regionone", Type: cloud.TypeOpenStack},
		cloud.Cloud{Name: "aws-east", Type: cloud.TypeAWS},
	)
	require.NoError(t, err)

	tbl, err := fieldmap.Parse([]byte(testTable), "test")
	require.NoError(t, err)
	m := mapper.New(tbl, registry, zap.NewNop())

	n := 0
	syncer := reconcile.NewSyncer(store, m, zap.NewNop(), reconcile.Options{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("uuid-%d", n)
		},
	})
	return &testEnv{
		store:        store,
		mapper:       m,
		orchestrator: NewOrchestrator(syncer, m, nil, zap.NewNop()),
		registry:     registry,
	}
}

// newService wires a Service whose clouds connect to the given listers.
func (e *testEnv) newService(t *testing.T, cfg Config, sched *scheduler.Scheduler, listers map[string]cloud.Lister) (*Service, *int) {
	t.Helper()
	connects := 0
	connect := func(_ context.Context, c cloud.Cloud, _ *zap.Logger) (cloud.Lister, error) {
		connects++
		l, ok := listers[c.Name]
		if !ok {
			return nil, fmt.Errorf("no lister for %s", c.Name)
		}
		return l, nil
	}
	connector := cloud.NewConnector(e.registry, map[string]cloud.ConnectFunc{
		cloud.TypeOpenStack: connect,
		cloud.TypeAWS:       connect,
	}, zap.NewNop())
	return NewService(cfg, connector, e.orchestrator, sched, e.mapper, zap.NewNop()), &connects
}

func (e *testEnv) find(t *testing.T, collection string, filter docstore.Filter) []docstore.Document {
	t.Helper()
	docs, err := e.store.Find(context.Background(), collection, filter)
	require.NoError(t, err)
	return docs
}

func image(id, status string) map[string]any {
	return map[string]any{"id": id, "name": "img-" + id, "status": status, "visibility": "public"}
}
