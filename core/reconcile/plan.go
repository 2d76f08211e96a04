package reconcile

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"cloudsync/core/docstore"
	"cloudsync/core/schema"
	"cloudsync/core/utils"
)

// ownedFields are maintained by the store and the reconciler itself and are
// never compared against live data.
var ownedFields = map[string]struct{}{
	schema.FieldUUID:      {},
	schema.FieldActive:    {},
	schema.FieldCreatedAt: {},
	schema.FieldCreatedBy: {},
	schema.FieldUpdatedAt: {},
	schema.FieldUpdatedBy: {},
}

// Change describes one staged field-level update.
type Change struct {
	UUID        string   `json:"uuid"`
	ReferenceID string   `json:"reference_id"`
	Fields      []string `json:"fields"`
}

// Plan is the outcome of diffing one partition against a live set. It is
// computed without side effects and applied with Syncer.Apply.
type Plan struct {
	Updates   []docstore.Update `json:"-"`
	Changed   []Change          `json:"changed"`
	Deleted   []string          `json:"deleted"`
	Unchanged int               `json:"unchanged"`
	Residual  *LiveSet          `json:"-"`
}

// HasUpdates reports whether the plan stages any write.
func (p *Plan) HasUpdates() bool {
	return len(p.Updates) > 0
}

// BuildPlan diffs the persisted docs against live. live is not modified;
// the unmatched live records are returned as the plan's residual.
func BuildPlan(docs []docstore.Document, live *LiveSet, now time.Time) *Plan {
	if live == nil {
		live = NewLiveSet()
	}
	plan := &Plan{}
	consumed := make(map[string]struct{}, len(docs))
	terminatedAt := now.UTC().Format(time.RFC3339)

	for _, doc := range docs {
		id := utils.ToString(doc[schema.FieldUUID])
		ref := referenceOf(doc)

		record, ok := live.Get(ref)
		if _, taken := consumed[ref]; ok && taken {
			// a second document on the same ref has no live counterpart left
			ok = false
		}
		if !ok {
			plan.Deleted = append(plan.Deleted, id)
			plan.Updates = append(plan.Updates, docstore.Update{
				Filter: docstore.Filter{schema.FieldUUID: id},
				Set: docstore.Document{
					schema.FieldActive:       int(schema.StatusDeleted),
					schema.FieldTerminatedAt: terminatedAt,
				},
			})
			continue
		}
		consumed[ref] = struct{}{}

		patch := diffShared(doc, record)
		if len(patch) == 0 {
			plan.Unchanged++
			continue
		}
		plan.Changed = append(plan.Changed, Change{UUID: id, ReferenceID: ref, Fields: sortedKeys(patch)})
		plan.Updates = append(plan.Updates, docstore.Update{
			Filter: docstore.Filter{schema.FieldUUID: id},
			Set:    patch,
		})
	}

	plan.Residual = live.without(consumed)
	return plan
}

// diffShared returns the live values of every field present in both doc and
// live whose values differ.
func diffShared(doc, live docstore.Document) docstore.Document {
	patch := docstore.Document{}
	for k, liveVal := range live {
		if _, owned := ownedFields[k]; owned {
			continue
		}
		docVal, ok := doc[k]
		if !ok {
			continue
		}
		if !equalValues(docVal, liveVal) {
			patch[k] = liveVal
		}
	}
	return patch
}

// equalValues compares two field values by their JSON form, so that numbers
// decoded from the store compare equal to the integers a mapper produces.
func equalValues(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	if bytes.Equal(ja, jb) {
		return true
	}
	var na, nb any
	if json.Unmarshal(ja, &na) != nil || json.Unmarshal(jb, &nb) != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func sortedKeys(m docstore.Document) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
