package reconcile

import (
	"testing"
	"time"

	"cloudsync/core/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mustLive(t *testing.T, records ...docstore.Document) *LiveSet {
	t.Helper()
	live, err := KeyByReferenceID(records)
	require.NoError(t, err)
	return live
}

func TestKeyByReferenceID_Duplicate(t *testing.T) {
	_, err := KeyByReferenceID([]docstore.Document{
		{"reference_id": "r1"},
		{"reference_id": "r1"},
	})
	assert.ErrorIs(t, err, ErrDuplicateReferenceID)
}

func TestLiveSet_UnkeyedRecords(t *testing.T) {
	live := mustLive(t,
		docstore.Document{"name": "a"},
		docstore.Document{"reference_id": nil, "name": "b"},
		docstore.Document{"reference_id": "r1"},
	)
	assert.Equal(t, 3, live.Len())
	assert.Equal(t, []string{"r1"}, live.Refs())
	_, ok := live.Get("")
	assert.False(t, ok)
}

func TestBuildPlan_ConsumedMatching(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "active": 1, "status": "ACTIVE", "size": float64(10)},
	}
	live := mustLive(t, docstore.Document{"reference_id": "r1", "status": "ACTIVE", "size": int64(10)})

	plan := BuildPlan(docs, live, fixedNow)
	assert.Empty(t, plan.Updates)
	assert.Equal(t, 1, plan.Unchanged)
	assert.Equal(t, 0, plan.Residual.Len())
	assert.Equal(t, 1, live.Len(), "input set must not be modified")
}

func TestBuildPlan_Divergence(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "active": 1, "status": "ACTIVE", "name": "vm", "size": 1},
	}
	live := mustLive(t, docstore.Document{
		"reference_id": "r1",
		"status":       "BUILD",
		"name":         "vm",
		"extra":        "not persisted",
		"uuid":         nil,
		"active":       int64(1),
	})

	plan := BuildPlan(docs, live, fixedNow)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, docstore.Filter{"uuid": "u1"}, plan.Updates[0].Filter)
	assert.Equal(t, docstore.Document{"status": "BUILD"}, plan.Updates[0].Set)
	require.Len(t, plan.Changed, 1)
	assert.Equal(t, []string{"status"}, plan.Changed[0].Fields)
}

func TestBuildPlan_NestedFieldReplacedWhole(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "cloud_meta": map[string]any{"a": 1, "b": map[string]any{"c": 1}}},
	}
	liveMeta := map[string]any{"a": 1, "b": map[string]any{"c": 2}}
	live := mustLive(t, docstore.Document{"reference_id": "r1", "cloud_meta": liveMeta})

	plan := BuildPlan(docs, live, fixedNow)
	require.Len(t, plan.Updates, 1)
	assert.Equal(t, liveMeta, plan.Updates[0].Set["cloud_meta"])
}

func TestBuildPlan_Deletion(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "active": 1},
		{"uuid": "u2", "reference_id": nil, "active": 1},
	}
	plan := BuildPlan(docs, NewLiveSet(), fixedNow)

	require.Len(t, plan.Updates, 2)
	assert.Equal(t, []string{"u1", "u2"}, plan.Deleted)
	for _, u := range plan.Updates {
		assert.Equal(t, -1, u.Set["active"])
		assert.Equal(t, "2024-05-01T12:00:00Z", u.Set["terminated_at"])
	}
}

func TestBuildPlan_DuplicatePersistedRef(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1", "status": "A"},
		{"uuid": "u2", "reference_id": "r1", "status": "A"},
	}
	plan := BuildPlan(docs, mustLive(t, docstore.Document{"reference_id": "r1", "status": "A"}), fixedNow)

	assert.Equal(t, 1, plan.Unchanged)
	assert.Equal(t, []string{"u2"}, plan.Deleted)
}

func TestBuildPlan_ResidualCorrectness(t *testing.T) {
	docs := []docstore.Document{
		{"uuid": "u1", "reference_id": "r1"},
		{"uuid": "u3", "reference_id": "r3"},
	}
	live := mustLive(t,
		docstore.Document{"reference_id": "r1"},
		docstore.Document{"reference_id": "r2"},
		docstore.Document{"name": "no ref"},
		docstore.Document{"reference_id": "r4"},
	)

	plan := BuildPlan(docs, live, fixedNow)
	matched := 1
	assert.Equal(t, live.Len()-matched, plan.Residual.Len())
	assert.Equal(t, []string{"r2", "r4"}, plan.Residual.Refs())
	assert.Equal(t, []string{"u3"}, plan.Deleted)
}

func TestEqualValues(t *testing.T) {
	assert.True(t, equalValues(int64(3), float64(3)))
	assert.True(t, equalValues(3, int64(3)))
	assert.True(t, equalValues(nil, nil))
	assert.True(t, equalValues([]any{"a", float64(1)}, []any{"a", 1}))
	assert.True(t, equalValues(map[string]any{"x": 1}, map[string]any{"x": float64(1)}))
	assert.False(t, equalValues("1", 1))
	assert.False(t, equalValues(nil, ""))
	assert.False(t, equalValues([]any{"a"}, []any{"a", "b"}))
}
