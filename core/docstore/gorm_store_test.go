package docstore

import (
	"context"
	"testing"
	"time"

	"cloudsync/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return NewGormStore(db, zap.NewNop())
}

func seed(t *testing.T, s *GormStore) {
	t.Helper()
	err := s.InsertMany(context.Background(), "Volume", []Document{
		{"uuid": "u-1", "reference_id": "vol-1", "name": "data", "cloud": "regionone", "active": 1, "size": 10, "cloud_meta": map[string]any{"id": "vol-1", "size": 10, "ratio": 0.5, "attachments": []any{map[string]any{"device": 1}}}},
		{"uuid": "u-2", "reference_id": "vol-2", "name": "logs", "cloud": "regionone", "active": 1, "size": 20},
		{"uuid": "u-3", "reference_id": "vol-3", "name": "old", "cloud": "regionone", "active": -1},
		{"uuid": "u-4", "reference_id": "vol-4", "name": "stack", "cloud": "regionone", "source": "stack", "source_id": "st-1", "active": 1},
	})
	require.NoError(t, err)
}

func TestGormStore_FindPartition(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	docs, err := s.Find(ctx, "Volume", Filter{"cloud": "regionone", "active": 1, "source": nil})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "vol-1", docs[0]["reference_id"])
	assert.Equal(t, "vol-2", docs[1]["reference_id"])
	assert.Nil(t, docs[0]["source"])
	assert.Equal(t, map[string]any{
		"id":          "vol-1",
		"size":        int64(10),
		"ratio":       0.5,
		"attachments": []any{map[string]any{"device": int64(1)}},
	}, docs[0]["cloud_meta"])
	assert.Equal(t, int64(10), docs[0]["size"])

	stacks, err := s.Find(ctx, "Volume", Filter{"cloud": "regionone", "active": 1, "source": "stack"})
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.Equal(t, "st-1", stacks[0]["source_id"])
}

func TestGormStore_FindUnknownField(t *testing.T) {
	s := newStore(t)
	_, err := s.Find(context.Background(), "Volume", Filter{"size": 10})
	assert.ErrorIs(t, err, ErrUnknownFilterField)
}

func TestGormStore_InvalidCollection(t *testing.T) {
	s := newStore(t)
	_, err := s.Find(context.Background(), "drop table;", nil)
	assert.ErrorIs(t, err, ErrInvalidCollection)
}

func TestGormStore_InsertRequiresUUID(t *testing.T) {
	s := newStore(t)
	err := s.InsertMany(context.Background(), "Volume", []Document{{"name": "x"}})
	assert.Error(t, err)
}

func TestGormStore_InsertDuplicateUUID(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	err := s.InsertMany(context.Background(), "Volume", []Document{{"uuid": "u-1"}})
	assert.Error(t, err)
}

func TestGormStore_BulkUpdate(t *testing.T) {
	s := newStore(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	seed(t, s)
	ctx := context.Background()

	n, err := s.BulkUpdate(ctx, "Volume", []Update{
		{Filter: Filter{"uuid": "u-1"}, Set: Document{"size": 15, "name": "data2", "uuid": "hijack"}},
		{Filter: Filter{"uuid": "u-2"}, Set: Document{"active": -1, "terminated_at": "2024-05-01T12:00:00Z"}},
		{Filter: Filter{"uuid": "missing"}, Set: Document{"active": -1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	docs, err := s.Find(ctx, "Volume", Filter{"uuid": "u-1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "data2", docs[0]["name"])
	assert.Equal(t, int64(15), docs[0]["size"])
	assert.Equal(t, "u-1", docs[0]["uuid"])

	docs, err = s.Find(ctx, "Volume", Filter{"uuid": "u-2"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, -1, docs[0]["active"])
	assert.Equal(t, "2024-05-01T12:00:00Z", docs[0]["terminated_at"])
	assert.Equal(t, int64(20), docs[0]["size"])
}

func TestGormStore_BulkUpdateRequiresUUID(t *testing.T) {
	s := newStore(t)
	_, err := s.BulkUpdate(context.Background(), "Volume", []Update{{Filter: Filter{"reference_id": "vol-1"}, Set: Document{"active": 0}}})
	assert.ErrorIs(t, err, ErrMissingUUIDFilter)
}

func TestGormStore_UpdateOne(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	n, err := s.UpdateOne(ctx, "Volume", Filter{"uuid": "u-4"}, Document{"active": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	docs, err := s.Find(ctx, "Volume", Filter{"active": 0})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u-4", docs[0]["uuid"])
}

func TestGormStore_Describe(t *testing.T) {
	s := newStore(t)
	cols, err := s.Describe(context.Background(), "Flavor")
	require.NoError(t, err)

	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Field)
	}
	assert.Contains(t, names, "uuid")
	assert.Contains(t, names, "reference_id")
	assert.Contains(t, names, "fields")
}

func TestRecordRoundTrip(t *testing.T) {
	rec := toRecord(Document{"uuid": "u", "name": "n", "description": nil, "active": int64(1), "ram": 512})
	assert.Equal(t, "u", rec.UUID)
	require.NotNil(t, rec.Name)
	assert.Nil(t, rec.Description)
	assert.Equal(t, 1, rec.Active)
	assert.Equal(t, 512, rec.Fields["ram"])

	doc := rec.toDocument()
	assert.Equal(t, "n", doc["name"])
	assert.Nil(t, doc["description"])
	assert.Equal(t, 512, doc["ram"])
	assert.True(t, IsColumn("reference_id"))
	assert.False(t, IsColumn("ram"))
}
