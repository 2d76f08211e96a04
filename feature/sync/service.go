package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloudsync/core/mapper"
	"cloudsync/core/reconcile"
	"cloudsync/core/scheduler"
	"cloudsync/core/schema"
	"cloudsync/feature/cloud"

	"go.uber.org/zap"
)

// StackJob is the resource name of the stack variant job.
const StackJob = "Stack"

// ErrUnknownResource is returned for resource names that are neither a
// resource type nor the stack job.
var ErrUnknownResource = errors.New("unknown resource")

// JobName names the scheduled job of resource on cloud.
func JobName(resource, cloudName string) string {
	return resource + "@" + cloudName
}

// JobStatus combines the scheduler state of a job with its last report.
type JobStatus struct {
	scheduler.Status
	LastReport *Report `json:"last_report,omitempty"`
}

// Service wires clouds, the orchestrator and the scheduler together.
type Service struct {
	cfg          Config
	connector    *cloud.Connector
	orchestrator *Orchestrator
	scheduler    *scheduler.Scheduler
	mapper       *mapper.Mapper
	logger       *zap.Logger
}

// NewService creates a Service. sched may be nil for one-shot use.
func NewService(cfg Config, connector *cloud.Connector, orchestrator *Orchestrator, sched *scheduler.Scheduler, m *mapper.Mapper, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:          cfg,
		connector:    connector,
		orchestrator: orchestrator,
		scheduler:    sched,
		mapper:       m,
		logger:       logger,
	}
}

// RegisterJobs adds one job per (resource type, cloud) pair and one stack job
// per OpenStack cloud.
func (s *Service) RegisterJobs() error {
	if s.scheduler == nil {
		return errors.New("no scheduler configured")
	}
	intervals, err := s.cfg.IntervalTable()
	if err != nil {
		return err
	}
	types, err := s.cfg.EnabledTypes()
	if err != nil {
		return err
	}

	registry := s.connector.Registry()
	for _, name := range registry.Names() {
		for _, rt := range types {
			err := s.scheduler.Add(scheduler.Job{
				Name:     JobName(rt.String(), name),
				Interval: intervals[rt],
				Task: func(ctx context.Context) error {
					_, err := s.SyncOne(ctx, rt, name, false)
					return err
				},
			})
			if err != nil {
				return err
			}
		}

		ct, _ := registry.CloudType(name)
		if !s.cfg.Stacks || ct != cloud.TypeOpenStack {
			continue
		}
		err := s.scheduler.Add(scheduler.Job{
			Name:     JobName(StackJob, name),
			Interval: s.cfg.StackInterval(),
			Task: func(ctx context.Context) error {
				_, err := s.SyncStacks(ctx, name, false)
				return err
			},
		})
		if err != nil {
			return err
		}
	}
	s.logger.Info("Sync jobs registered", zap.Int("jobs", len(s.scheduler.Names())))
	return nil
}

// SyncOne runs a single cycle of rt on cloudName.
func (s *Service) SyncOne(ctx context.Context, rt schema.ResourceType, cloudName string, dryRun bool) (*reconcile.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	lister, err := s.connector.Lister(ctx, cloudName)
	if err != nil {
		return nil, err
	}
	result, err := s.orchestrator.SyncResources(ctx, rt, lister, cloudName, dryRun)
	if err != nil && !errors.Is(err, cloud.ErrNotImplemented) && !mapper.IsConfigurationError(err) {
		// drop the connection so an expired session is rebuilt next time
		s.connector.Forget(cloudName)
	}
	return result, err
}

// SyncStacks runs the stack variant on cloudName.
func (s *Service) SyncStacks(ctx context.Context, cloudName string, dryRun bool) ([]*reconcile.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	ct, err := s.connector.Registry().CloudType(cloudName)
	if err != nil {
		return nil, err
	}
	lister, err := s.connector.Lister(ctx, cloudName)
	if err != nil {
		return nil, err
	}
	walker, ok := lister.(cloud.StackWalker)
	if !ok {
		return nil, fmt.Errorf("stacks on %s: %w", ct, cloud.ErrNotImplemented)
	}
	return s.orchestrator.SyncStacks(ctx, walker, cloudName, ct, dryRun)
}

// SyncAll runs every enabled resource type on each cloud in turn. Failures
// are collected and do not stop the remaining cycles.
func (s *Service) SyncAll(ctx context.Context, clouds []string, dryRun bool) ([]*reconcile.Result, error) {
	types, err := s.cfg.EnabledTypes()
	if err != nil {
		return nil, err
	}
	var (
		results []*reconcile.Result
		errs    []error
	)
	for _, name := range clouds {
		for _, rt := range types {
			r, err := s.SyncOne(ctx, rt, name, dryRun)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", JobName(rt.String(), name), err))
				continue
			}
			results = append(results, r)
		}
	}
	return results, errors.Join(errs...)
}

// Trigger starts the job of resource on cloudName now. resource is a
// resource type name or "stack".
func (s *Service) Trigger(ctx context.Context, resource, cloudName string) (string, error) {
	if s.scheduler == nil {
		return "", errors.New("no scheduler configured")
	}
	job, err := s.jobName(resource, cloudName)
	if err != nil {
		return "", err
	}
	return job, s.scheduler.TriggerNow(ctx, job)
}

func (s *Service) jobName(resource, cloudName string) (string, error) {
	if strings.EqualFold(resource, StackJob) {
		return JobName(StackJob, cloudName), nil
	}
	rt, err := schema.ParseResourceType(resource)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return JobName(rt.String(), cloudName), nil
}

// Jobs returns the status of every scheduled job.
func (s *Service) Jobs() []JobStatus {
	if s.scheduler == nil {
		return nil
	}
	statuses := s.scheduler.Statuses()
	out := make([]JobStatus, len(statuses))
	for i, st := range statuses {
		out[i] = JobStatus{Status: st}
		if r, ok := s.orchestrator.LastReport(st.Name); ok {
			out[i].LastReport = r
		}
	}
	return out
}

// Preview translates payload without persisting it.
func (s *Service) Preview(ctx context.Context, cloudType, resource, cloudName string, payload any) (map[string]any, error) {
	if cloudName == "" {
		cloudName = "preview"
	}
	doc, err := s.mapper.Translate(ctx, payload, resource, mapper.Target{Cloud: cloudName, CloudType: cloudType})
	if err != nil {
		return nil, err
	}
	return doc.ToMap(), nil
}

