package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloudsync/core/database"
	"cloudsync/core/docstore"
	"cloudsync/core/docstore/mocks"
	"cloudsync/core/fieldmap"
	"cloudsync/core/mapper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }, NewID: sequentialIDs()}
}

func newSQLiteStore(t *testing.T) *docstore.GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return docstore.NewGormStore(db, zap.NewNop())
}

func TestSyncer_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	require.NoError(t, store.InsertMany(ctx, "Instance", []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "cloud": "regionone", "active": 1, "status": "ACTIVE"},
	}))
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	live := NewLiveSet()
	require.NoError(t, live.AddWithRef("r1", docstore.Document{"status": "BUILD"}))
	require.NoError(t, live.AddWithRef("r2", docstore.Document{"status": "ACTIVE"}))

	result, err := syncer.SyncAndAddInDB(ctx, "Instance", live, "regionone", SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 0, result.Deleted)

	docs, err := store.Find(ctx, "Instance", docstore.Filter{"uuid": "u1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "BUILD", docs[0]["status"])

	docs, err = store.Find(ctx, "Instance", docstore.Filter{"reference_id": "r2"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new-1", docs[0]["uuid"])
	assert.Equal(t, "ACTIVE", docs[0]["status"])
	assert.Equal(t, "regionone", docs[0]["cloud"])
	assert.Equal(t, 1, docs[0]["active"])

	// the second run converges to no writes
	live = NewLiveSet()
	require.NoError(t, live.AddWithRef("r1", docstore.Document{"status": "BUILD"}))
	require.NoError(t, live.AddWithRef("r2", docstore.Document{"status": "ACTIVE"}))
	result, err = syncer.SyncAndAddInDB(ctx, "Instance", live, "regionone", SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Unchanged)
}

func TestSyncer_DeletedIsNotResurrected(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	require.NoError(t, store.InsertMany(ctx, "Volume", []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "cloud": "regionone", "active": 1},
	}))
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	_, err := syncer.SyncAndAddInDB(ctx, "Volume", NewLiveSet(), "regionone", SyncOptions{})
	require.NoError(t, err)

	docs, err := store.Find(ctx, "Volume", docstore.Filter{"uuid": "u1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, -1, docs[0]["active"])
	assert.NotNil(t, docs[0]["terminated_at"])

	result, err := syncer.SyncAndAddInDB(ctx, "Volume", mustLive(t, docstore.Document{"reference_id": "r1"}), "regionone", SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	docs, err = store.Find(ctx, "Volume", docstore.Filter{"uuid": "u1"})
	require.NoError(t, err)
	assert.Equal(t, -1, docs[0]["active"])
}

func TestSyncer_PartitionBySource(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	require.NoError(t, store.InsertMany(ctx, "Volume", []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "cloud": "regionone", "active": 1},
		{"uuid": "u2", "reference_id": "r2", "cloud": "regionone", "source": "stack", "active": 1},
		{"uuid": "u3", "reference_id": "r3", "cloud": "other", "active": 1},
	}))
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	result, err := syncer.SyncAndAddInDB(ctx, "Volume", NewLiveSet(), "regionone", SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)

	active, err := store.Find(ctx, "Volume", docstore.Filter{"active": 1})
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSyncer_DryRunWritesNothing(t *testing.T) {
	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", mock.Anything).Return([]docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "active": 1},
	}, nil)
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	result, err := syncer.SyncAndAddInDB(context.Background(), "Volume",
		mustLive(t, docstore.Document{"reference_id": "r2"}), "regionone", SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Inserted)
	store.AssertNotCalled(t, "BulkUpdate", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncer_PartitionFilter(t *testing.T) {
	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", docstore.Filter{"active": 1, "cloud": "regionone", "source": "stack"}).
		Return([]docstore.Document{}, nil).Once()
	store.On("Find", mock.Anything, "Volume", docstore.Filter{"active": 1, "cloud": "regionone", "source": nil}).
		Return([]docstore.Document{}, nil).Once()
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	_, err := syncer.Reconcile(context.Background(), "Volume", NewLiveSet(), "regionone", "stack")
	require.NoError(t, err)
	_, err = syncer.Reconcile(context.Background(), "Volume", NewLiveSet(), "regionone", "")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSyncer_SingleBatchedUpdate(t *testing.T) {
	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", mock.Anything).Return([]docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "status": "a"},
		{"uuid": "u2", "reference_id": "r2", "status": "a"},
		{"uuid": "u3", "reference_id": "r3", "status": "a"},
	}, nil)
	store.On("BulkUpdate", mock.Anything, "Volume", mock.MatchedBy(func(u []docstore.Update) bool {
		return len(u) == 3
	})).Return(int64(3), nil).Once()
	syncer := NewSyncer(store, nil, zap.NewNop(), testOptions())

	residual, err := syncer.Reconcile(context.Background(), "Volume", mustLive(t,
		docstore.Document{"reference_id": "r1", "status": "b"},
		docstore.Document{"reference_id": "r2", "status": "b"},
	), "regionone", "")
	require.NoError(t, err)
	assert.Equal(t, 0, residual.Len())
	store.AssertNumberOfCalls(t, "BulkUpdate", 1)
}

func TestSyncer_ErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", mock.Anything).Return(nil, boom)
	_, err := NewSyncer(store, nil, zap.NewNop(), testOptions()).Reconcile(context.Background(), "Volume", NewLiveSet(), "c", "")
	assert.ErrorIs(t, err, boom)

	store = new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", mock.Anything).Return([]docstore.Document{{"uuid": "u1", "reference_id": "r1"}}, nil)
	store.On("BulkUpdate", mock.Anything, "Volume", mock.Anything).Return(int64(0), boom)
	_, err = NewSyncer(store, nil, zap.NewNop(), testOptions()).SyncAndAddInDB(context.Background(), "Volume", NewLiveSet(), "c", SyncOptions{})
	assert.ErrorIs(t, err, boom)
	store.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncer_ChunkFailureDoesNotAbort(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", mock.Anything).Return([]docstore.Document{}, nil)
	store.On("InsertMany", mock.Anything, "Volume", mock.Anything).Return(errors.New("duplicate")).Once()
	store.On("InsertMany", mock.Anything, "Volume", mock.Anything).Return(nil)

	records := make([]docstore.Document, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, docstore.Document{"reference_id": fmt.Sprintf("r%d", i)})
	}
	opts := testOptions()
	opts.BatchSize = 2
	syncer := NewSyncer(store, nil, zap.New(core), opts)

	result, err := syncer.SyncAndAddInDB(context.Background(), "Volume", mustLive(t, records...), "c", SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 3, result.Inserted)
	store.AssertNumberOfCalls(t, "InsertMany", 3)
	assert.Equal(t, 1, logs.FilterMessage("Failed to insert chunk").Len())
}

const volumeMapping = `
openstack:
  volume:
    name: name
    reference_id: id
    status: status
    size: size
`

func TestSyncer_UnmappedTranslatesResidual(t *testing.T) {
	tbl, err := fieldmap.Parse([]byte(volumeMapping), "test")
	require.NoError(t, err)
	m := mapper.New(tbl, nil, zap.NewNop())

	var inserted []docstore.Document
	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Volume", docstore.Filter{"active": 1, "cloud": "regionone", "source": "stack"}).
		Return([]docstore.Document{}, nil)
	store.On("InsertMany", mock.Anything, "Volume", mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(2).([]docstore.Document) }).
		Return(nil)

	live := NewLiveSet()
	require.NoError(t, live.AddWithRef("vol-1", docstore.Document{"id": "vol-1", "name": "data", "size": float64(5), "source_id": "stack-1"}))
	require.NoError(t, live.AddWithRef("vol-2", docstore.Document{"id": "vol-2", "name": "logs"}))

	syncer := NewSyncer(store, m, zap.NewNop(), testOptions())
	result, err := syncer.SyncAndAddInDB(context.Background(), "Volume", live, "regionone", SyncOptions{
		Source:       "stack",
		SourceID:     "fallback",
		Unmapped:     true,
		ResourceType: "Volume",
		CloudType:    "openstack",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, inserted, 2)

	assert.Equal(t, "vol-1", inserted[0]["reference_id"])
	assert.Equal(t, int64(5), inserted[0]["size"])
	assert.Equal(t, "stack-1", inserted[0]["source_id"])
	assert.Equal(t, "stack", inserted[0]["source"])
	assert.Equal(t, "new-1", inserted[0]["uuid"])
	assert.Equal(t, "fallback", inserted[1]["source_id"])
	assert.NotContains(t, inserted[0], "id")
	assert.Contains(t, inserted[0], "cloud_meta")
}

func TestSyncer_UnmappedConfigurationErrorAborts(t *testing.T) {
	tbl, err := fieldmap.Parse([]byte(volumeMapping), "test")
	require.NoError(t, err)
	m := mapper.New(tbl, nil, zap.NewNop())

	store := new(mocks.Store)
	store.On("Find", mock.Anything, "Subnet", mock.Anything).Return([]docstore.Document{}, nil)

	_, err = NewSyncer(store, m, zap.NewNop(), testOptions()).SyncAndAddInDB(context.Background(), "Subnet",
		mustLive(t, docstore.Document{"reference_id": "s1"}), "regionone",
		SyncOptions{Unmapped: true, ResourceType: "Subnet", CloudType: "openstack"})
	require.Error(t, err)
	assert.True(t, mapper.IsConfigurationError(err))
	store.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything, mock.Anything)
}
