package reconcile

import (
	"context"
	"fmt"
	"time"

	"cloudsync/core/docstore"
	"cloudsync/core/mapper"
	"cloudsync/core/schema"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of documents inserted per round trip.
const DefaultBatchSize = 100

// Translator converts a raw provider record into a canonical document.
type Translator interface {
	Translate(ctx context.Context, raw any, resourceType string, target mapper.Target) (*schema.Document, error)
}

// Options tunes a Syncer. Zero values select the defaults.
type Options struct {
	BatchSize int
	Now       func() time.Time
	NewID     func() string
}

// SyncOptions scopes one SyncAndAddInDB call.
type SyncOptions struct {
	// Source and SourceID tag the provenance of new documents. An empty
	// Source selects documents whose source is unset.
	Source   string
	SourceID string
	// Unmapped marks live records as raw provider payloads that must be
	// translated to ResourceType before insertion.
	Unmapped     bool
	ResourceType string
	CloudType    string
	// DryRun computes the plan without writing anything.
	DryRun bool
}

// Result summarises one sync cycle.
type Result struct {
	Collection string `json:"collection"`
	Cloud      string `json:"cloud"`
	Source     string `json:"source,omitempty"`
	Live       int    `json:"live"`
	Updated    int    `json:"updated"`
	Deleted    int    `json:"deleted"`
	Unchanged  int    `json:"unchanged"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	DryRun     bool   `json:"dry_run"`
	Plan       *Plan  `json:"plan,omitempty"`
}

// Syncer reconciles persisted documents against live cloud state.
type Syncer struct {
	store      docstore.Store
	translator Translator
	logger     *zap.Logger
	batchSize  int
	now        func() time.Time
	newID      func() string
}

// NewSyncer creates a Syncer. translator is only needed for unmapped syncs.
func NewSyncer(store docstore.Store, translator Translator, logger *zap.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Syncer{
		store:      store,
		translator: translator,
		logger:     logger,
		batchSize:  opts.BatchSize,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Plan loads the ACTIVE documents of the partition and diffs them against live.
func (s *Syncer) Plan(ctx context.Context, collection string, live *LiveSet, cloud, source string) (*Plan, error) {
	docs, err := s.store.Find(ctx, collection, partition(cloud, source))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s documents: %w", collection, err)
	}
	return BuildPlan(docs, live, s.now()), nil
}

// Apply writes every staged update of plan in one batched call.
func (s *Syncer) Apply(ctx context.Context, collection string, plan *Plan) (int64, error) {
	if !plan.HasUpdates() {
		return 0, nil
	}
	n, err := s.store.BulkUpdate(ctx, collection, plan.Updates)
	if err != nil {
		return 0, fmt.Errorf("failed to apply %d updates to %s: %w", len(plan.Updates), collection, err)
	}
	return n, nil
}

// Reconcile runs Plan then Apply and returns the live records that no
// persisted document matched.
func (s *Syncer) Reconcile(ctx context.Context, collection string, live *LiveSet, cloud, source string) (*LiveSet, error) {
	plan, err := s.Plan(ctx, collection, live, cloud, source)
	if err != nil {
		return nil, err
	}
	if _, err := s.Apply(ctx, collection, plan); err != nil {
		return nil, err
	}
	return plan.Residual, nil
}

// SyncAndAddInDB reconciles the partition and inserts the residual as new
// documents. Insert failures are logged per chunk and do not stop the
// remaining chunks; the next cycle picks up what was missed.
func (s *Syncer) SyncAndAddInDB(ctx context.Context, collection string, live *LiveSet, cloud string, opts SyncOptions) (*Result, error) {
	log := s.logger.With(
		zap.String("collection", collection),
		zap.String("cloud", cloud),
		zap.String("source", opts.Source),
	)
	result := &Result{Collection: collection, Cloud: cloud, Source: opts.Source, Live: live.Len(), DryRun: opts.DryRun}

	plan, err := s.Plan(ctx, collection, live, cloud, opts.Source)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.Updated = len(plan.Changed)
	result.Deleted = len(plan.Deleted)
	result.Unchanged = plan.Unchanged

	if !opts.DryRun {
		if _, err := s.Apply(ctx, collection, plan); err != nil {
			return nil, err
		}
	}

	docs, skipped, err := s.prepare(ctx, plan.Residual, cloud, opts, log)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	if opts.DryRun {
		result.Inserted = len(docs)
		log.Info("Dry run complete",
			zap.Int("would_update", result.Updated),
			zap.Int("would_delete", result.Deleted),
			zap.Int("would_insert", result.Inserted),
		)
		return result, nil
	}

	result.Inserted, result.Failed = s.insertChunks(ctx, collection, docs, log)
	log.Info("Sync complete",
		zap.Int("live", result.Live),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
		zap.Int("inserted", result.Inserted),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// prepare turns residual records into insertable documents. Configuration
// and schema errors abort the cycle; any other translation failure skips
// the record.
func (s *Syncer) prepare(ctx context.Context, residual *LiveSet, cloud string, opts SyncOptions, log *zap.Logger) ([]docstore.Document, int, error) {
	docs := make([]docstore.Document, 0, residual.Len())
	skipped := 0

	for _, e := range residual.entries {
		rec := e.record
		doc := rec
		if opts.Unmapped {
			if s.translator == nil {
				return nil, skipped, fmt.Errorf("unmapped sync of %s requires a translator", opts.ResourceType)
			}
			translated, err := s.translator.Translate(ctx, rec, opts.ResourceType, mapper.Target{Cloud: cloud, CloudType: opts.CloudType})
			if err != nil {
				if mapper.IsConfigurationError(err) || mapper.IsUnsupportedResourceType(err) {
					return nil, skipped, err
				}
				log.Warn("Skipping record that failed to translate", zap.Error(err))
				skipped++
				continue
			}
			doc = translated.ToMap()
		} else {
			doc = copyDocument(rec)
		}

		doc[schema.FieldUUID] = s.newID()
		if v, ok := doc[schema.FieldReferenceID]; (!ok || v == nil) && e.ref != "" {
			doc[schema.FieldReferenceID] = e.ref
		}
		if v, ok := rec[schema.FieldSourceID]; ok && v != nil {
			doc[schema.FieldSourceID] = v
		} else if opts.SourceID != "" {
			doc[schema.FieldSourceID] = opts.SourceID
		}
		if opts.Source != "" {
			doc[schema.FieldSource] = opts.Source
		}
		if v, ok := doc[schema.FieldCloud]; !ok || v == nil {
			doc[schema.FieldCloud] = cloud
		}
		if v, ok := doc[schema.FieldActive]; !ok || v == nil {
			doc[schema.FieldActive] = int(schema.StatusActive)
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

func (s *Syncer) insertChunks(ctx context.Context, collection string, docs []docstore.Document, log *zap.Logger) (inserted, failed int) {
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		chunk := docs[start:end]
		if err := ctx.Err(); err != nil {
			log.Warn("Sync cancelled before insert", zap.Int("remaining", len(docs)-start), zap.Error(err))
			return inserted, failed + len(docs) - start
		}
		if err := s.store.InsertMany(ctx, collection, chunk); err != nil {
			log.Error("Failed to insert chunk",
				zap.Int("offset", start),
				zap.Int("size", len(chunk)),
				zap.Error(err),
			)
			failed += len(chunk)
			continue
		}
		inserted += len(chunk)
	}
	return inserted, failed
}

func partition(cloud, source string) docstore.Filter {
	filter := docstore.Filter{
		schema.FieldActive: int(schema.StatusActive),
		schema.FieldCloud:  cloud,
		schema.FieldSource: nil,
	}
	if source != "" {
		filter[schema.FieldSource] = source
	}
	return filter
}

func copyDocument(doc docstore.Document) docstore.Document {
	out := make(docstore.Document, len(doc)+4)
	for k, v := range doc {
		out[k] = v
	}
	return out
}
