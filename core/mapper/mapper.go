package mapper

import (
	"context"
	"fmt"

	"cloudsync/core/fieldmap"
	"cloudsync/core/flatten"
	"cloudsync/core/schema"
	"cloudsync/core/tenancy"

	"go.uber.org/zap"
)

// Resolver returns the field map for a (cloud type, resource type) pair.
type Resolver interface {
	Resolve(cloudType, resourceType string) (fieldmap.FieldMap, error)
}

// CloudRegistry resolves a named cloud to its cloud type.
type CloudRegistry interface {
	CloudType(cloud string) (string, error)
}

// Target names the cloud a payload came from. Empty fields are resolved from
// the tenancy scope and the cloud registry.
type Target struct {
	Cloud     string
	CloudType string
}

// Mapper translates provider payloads into canonical documents.
type Mapper struct {
	resolver  Resolver
	clouds    CloudRegistry
	flattener *flatten.Flattener
	logger    *zap.Logger
}

// New creates a Mapper. clouds may be nil when every call supplies a full Target.
func New(resolver Resolver, clouds CloudRegistry, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{
		resolver:  resolver,
		clouds:    clouds,
		flattener: flatten.New(logger),
		logger:    logger,
	}
}

// Translate maps one payload to a canonical document of resourceType.
//
// The payload is flattened, every field of the resolved field map is copied
// from its source path (nil when the path is absent), cloud_meta keeps the
// untouched payload and cloud is set to the target cloud.
func (m *Mapper) Translate(ctx context.Context, raw any, resourceType string, target Target) (*schema.Document, error) {
	target, err := m.resolveTarget(ctx, target)
	if err != nil {
		return nil, m.fail(resourceType, target, raw, err)
	}

	s, err := schema.LookupName(resourceType)
	if err != nil {
		return nil, m.fail(resourceType, target, raw, err)
	}

	fm, err := m.resolver.Resolve(target.CloudType, resourceType)
	if err != nil {
		return nil, m.fail(resourceType, target, raw, err)
	}

	original, ok := flatten.ToMap(raw)
	if !ok {
		return nil, m.fail(resourceType, target, raw, fmt.Errorf("%w: %T", ErrNotMapping, raw))
	}

	flat := m.flattener.Flatten(original)
	values := make(map[string]any, len(flat)+len(fm)+2)
	for k, v := range flat {
		values[k] = v
	}
	values[schema.FieldCloudMeta] = original
	values[schema.FieldCloud] = target.Cloud
	for canonical, source := range fm {
		values[canonical] = flat[source]
	}

	doc, err := s.Build(values)
	if err != nil {
		return nil, m.fail(resourceType, target, raw, err)
	}
	return doc, nil
}

// TranslateAll maps each payload in order. It stops at the first failure; the
// caller decides whether to skip the item or abort.
func (m *Mapper) TranslateAll(ctx context.Context, raws []any, resourceType string, target Target) ([]*schema.Document, error) {
	docs := make([]*schema.Document, 0, len(raws))
	for i, raw := range raws {
		doc, err := m.Translate(ctx, raw, resourceType, target)
		if err != nil {
			return docs, fmt.Errorf("item %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *Mapper) resolveTarget(ctx context.Context, target Target) (Target, error) {
	if target.Cloud == "" {
		cloud, ok := tenancy.Cloud(ctx)
		if !ok {
			return target, ErrNoCloud
		}
		target.Cloud = cloud
	}
	if target.CloudType == "" {
		if m.clouds == nil {
			return target, fmt.Errorf("cloud type of %q unknown and no cloud registry configured", target.Cloud)
		}
		ct, err := m.clouds.CloudType(target.Cloud)
		if err != nil {
			return target, err
		}
		target.CloudType = ct
	}
	return target, nil
}

func (m *Mapper) fail(resourceType string, target Target, raw any, err error) error {
	m.logger.Error("Translation failed",
		zap.String("resource_type", resourceType),
		zap.String("cloud", target.Cloud),
		zap.String("cloud_type", target.CloudType),
		zap.Any("payload", raw),
		zap.Error(err),
	)
	return &MappingResolutionError{
		ResourceType: resourceType,
		Cloud:        target.Cloud,
		CloudType:    target.CloudType,
		Payload:      raw,
		Err:          err,
	}
}
