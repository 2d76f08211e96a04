package cloud

import (
	"context"

	"cloudsync/core/schema"
)

// Lister lists the live resources of one cloud. Each item is the raw
// provider payload as a nested map.
type Lister interface {
	List(ctx context.Context, rt schema.ResourceType) ([]any, error)
}

// StackRecord is the detail payload of one resource created by a stack.
type StackRecord struct {
	StackID    string
	PhysicalID string
	Payload    map[string]any
}

// StackInventory groups the stack-created resources of a cloud by type.
// Types lists every type the walker can discover, including those with no
// records, so that vanished resources are still detected.
type StackInventory struct {
	Types   []schema.ResourceType
	Records map[schema.ResourceType][]StackRecord
}

// StackWalker is implemented by listers of clouds with an orchestration
// service.
type StackWalker interface {
	WalkStacks(ctx context.Context) (*StackInventory, error)
}
