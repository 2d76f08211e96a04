package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"cloudsync/core/docstore"
	"cloudsync/core/logger"
	"cloudsync/core/mapper"
	"cloudsync/core/reconcile"
	"cloudsync/core/schema"
	"cloudsync/core/tenancy"
	"cloudsync/feature/cloud"

	"go.uber.org/zap"
)

// StackSource tags documents created by infrastructure stacks.
const StackSource = "stack"

// Report is the outcome of the last run of a job.
type Report struct {
	Job      string              `json:"job"`
	Started  time.Time           `json:"started"`
	Finished time.Time           `json:"finished"`
	Error    string              `json:"error,omitempty"`
	Results  []*reconcile.Result `json:"results,omitempty"`
}

// Orchestrator drives sync cycles for one resource type on one cloud.
type Orchestrator struct {
	syncer     *reconcile.Syncer
	translator reconcile.Translator
	metrics    *Metrics
	logger     *zap.Logger
	now        func() time.Time

	mu      gosync.Mutex
	reports map[string]*Report
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(syncer *reconcile.Syncer, translator reconcile.Translator, metrics *Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		syncer:     syncer,
		translator: translator,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		reports:    make(map[string]*Report),
	}
}

// SyncResources runs one cycle: list the live resources of rt on cloudName,
// translate them, reconcile the collection and insert what is new.
//
// An empty listing is valid and soft-deletes every tracked document. Any
// translation failure aborts the cycle, since a record missing from the live
// set would otherwise be deleted.
func (o *Orchestrator) SyncResources(ctx context.Context, rt schema.ResourceType, lister cloud.Lister, cloudName string, dryRun bool) (*reconcile.Result, error) {
	ctx = tenancy.WithCloud(ctx, cloudName)
	log := logger.WithJob(o.logger, rt.String(), cloudName, "")
	start := o.now()

	result, err := o.syncResources(ctx, rt, lister, cloudName, dryRun, log)
	o.record(JobName(rt.String(), cloudName), start, err, result)

	if err != nil {
		o.metrics.observe(rt.String(), cloudName, 0, 0, 0, o.now().Sub(start), err)
		log.Error("Sync cycle failed", zap.Error(err))
		return nil, err
	}
	if !dryRun {
		o.metrics.observe(rt.String(), cloudName, result.Updated, result.Deleted, result.Inserted, o.now().Sub(start), nil)
	}
	return result, nil
}

func (o *Orchestrator) syncResources(ctx context.Context, rt schema.ResourceType, lister cloud.Lister, cloudName string, dryRun bool, log *zap.Logger) (*reconcile.Result, error) {
	raws, err := lister.List(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rt, err)
	}
	log.Debug("Listed live resources", zap.Int("count", len(raws)))

	records := make([]docstore.Document, 0, len(raws))
	for i, raw := range raws {
		doc, err := o.translator.Translate(ctx, raw, rt.String(), mapper.Target{})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, doc.ToMap())
	}

	live, err := reconcile.KeyByReferenceID(records)
	if err != nil {
		return nil, err
	}
	return o.syncer.SyncAndAddInDB(ctx, rt.Collection(), live, cloudName, reconcile.SyncOptions{
		ResourceType: rt.String(),
		DryRun:       dryRun,
	})
}

// SyncStacks runs the stack variant: resources discovered by walking stacks
// are reconciled in the "stack" source partition of each collection and new
// ones are translated on insertion. A failing type does not stop the others.
func (o *Orchestrator) SyncStacks(ctx context.Context, walker cloud.StackWalker, cloudName, cloudType string, dryRun bool) ([]*reconcile.Result, error) {
	ctx = tenancy.WithCloud(ctx, cloudName)
	log := logger.WithJob(o.logger, "Stack", cloudName, StackSource)
	start := o.now()

	results, err := o.syncStacks(ctx, walker, cloudName, cloudType, dryRun, log)
	o.record(JobName(StackJob, cloudName), start, err, results...)
	if err != nil {
		log.Error("Stack sync failed", zap.Error(err))
	}
	return results, err
}

func (o *Orchestrator) syncStacks(ctx context.Context, walker cloud.StackWalker, cloudName, cloudType string, dryRun bool, log *zap.Logger) ([]*reconcile.Result, error) {
	inv, err := walker.WalkStacks(ctx)
	if err != nil {
		o.metrics.observe(StackJob, cloudName, 0, 0, 0, 0, err)
		return nil, fmt.Errorf("failed to walk stacks: %w", err)
	}

	var (
		results []*reconcile.Result
		errs    []error
	)
	for _, rt := range inv.Types {
		start := o.now()
		result, err := o.syncStackType(ctx, rt, inv.Records[rt], cloudName, cloudType, dryRun)
		if err != nil {
			o.metrics.observe(rt.String(), cloudName, 0, 0, 0, o.now().Sub(start), err)
			log.Error("Stack sync of resource type failed", zap.String("resource_type", rt.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", rt, err))
			continue
		}
		if !dryRun {
			o.metrics.observe(rt.String(), cloudName, result.Updated, result.Deleted, result.Inserted, o.now().Sub(start), nil)
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

func (o *Orchestrator) syncStackType(ctx context.Context, rt schema.ResourceType, records []cloud.StackRecord, cloudName, cloudType string, dryRun bool) (*reconcile.Result, error) {
	live := reconcile.NewLiveSet()
	for _, rec := range records {
		if err := live.AddWithRef(rec.PhysicalID, rec.Payload); err != nil {
			return nil, err
		}
	}
	return o.syncer.SyncAndAddInDB(ctx, rt.Collection(), live, cloudName, reconcile.SyncOptions{
		Source:       StackSource,
		Unmapped:     true,
		ResourceType: rt.String(),
		CloudType:    cloudType,
		DryRun:       dryRun,
	})
}

func (o *Orchestrator) record(job string, start time.Time, err error, results ...*reconcile.Result) {
	report := &Report{Job: job, Started: start, Finished: o.now()}
	for _, r := range results {
		if r != nil {
			report.Results = append(report.Results, r)
		}
	}
	if err != nil {
		report.Error = err.Error()
	}
	o.mu.Lock()
	o.reports[job] = report
	o.mu.Unlock()
}

// LastReport returns the report of the last run of job.
func (o *Orchestrator) LastReport(job string) (*Report, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.reports[job]
	return r, ok
}
