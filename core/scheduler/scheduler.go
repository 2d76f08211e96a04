package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrJobRunning is returned by TriggerNow while the job is in flight.
	ErrJobRunning = errors.New("job is already running")
	// ErrUnknownJob is returned for names that were never added.
	ErrUnknownJob = errors.New("unknown job")
	// ErrStopped is returned by TriggerNow after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Task is the unit of work a job runs on every tick.
type Task func(ctx context.Context) error

// Job is a named task run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Task     Task
}

// Status is a snapshot of one job.
type Status struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	Skipped   int           `json:"skipped"`
	Failures  int           `json:"failures"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
}

type entry struct {
	job     Job
	running sync.Mutex

	mu     sync.Mutex
	status Status
}

// Scheduler runs every job on its own ticker. A job never overlaps itself:
// a tick that fires while the previous run is in flight is skipped.
type Scheduler struct {
	logger     *zap.Logger
	now        func() time.Time
	runOnStart bool

	mu      sync.Mutex
	jobs    map[string]*entry
	cancel  context.CancelFunc
	baseCtx context.Context
	wg      sync.WaitGroup
}

// New creates a Scheduler. When runOnStart is set every job runs once as
// soon as Start is called instead of waiting a full interval.
func New(logger *zap.Logger, runOnStart bool) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:     logger,
		now:        time.Now,
		runOnStart: runOnStart,
		jobs:       make(map[string]*entry),
	}
}

// Add registers a job. Jobs added after Start begin ticking immediately.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Task == nil {
		return fmt.Errorf("job needs a name and a task")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.Name]; dup {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	e := &entry{job: job, status: Status{Name: job.Name, Interval: job.Interval}}
	s.jobs[job.Name] = e
	if s.baseCtx != nil {
		s.launch(s.baseCtx, e)
	}
	return nil
}

// Start begins ticking every registered job. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseCtx != nil {
		return
	}
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.jobs {
		s.launch(s.baseCtx, e)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// TriggerNow starts a run of name outside its schedule. It does not wait for
// the run to finish. The run keeps the values of ctx but not its deadline; once
// the scheduler is started, Stop cancels it.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	base := s.baseCtx
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if base != nil && base.Err() != nil {
		return ErrStopped
	}
	if !e.running.TryLock() {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	detach := func() bool { return false }
	if base != nil {
		detach = context.AfterFunc(base, cancel)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer e.running.Unlock()
		defer cancel()
		defer detach()
		s.execute(runCtx, e)
	}()
	return nil
}

// Statuses returns a snapshot of every job ordered by name.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.jobs))
	for _, e := range s.jobs {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	out := make([]Status, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.status)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered job names in order.
func (s *Scheduler) Names() []string {
	statuses := s.Statuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	return names
}

func (s *Scheduler) launch(ctx context.Context, e *entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(e.job.Interval)
		defer ticker.Stop()

		if s.runOnStart {
			s.tick(ctx, e)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, e)
			}
		}
	}()
}

func (s *Scheduler) tick(ctx context.Context, e *entry) {
	if !e.running.TryLock() {
		e.mu.Lock()
		e.status.Skipped++
		e.mu.Unlock()
		s.logger.Warn("Skipping tick, previous run still in flight", zap.String("job", e.job.Name))
		return
	}
	defer e.running.Unlock()
	s.execute(ctx, e)
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	e.mu.Lock()
	e.status.Running = true
	e.mu.Unlock()

	start := s.now()
	err := s.safeRun(ctx, e)
	elapsed := s.now().Sub(start)

	e.mu.Lock()
	e.status.Running = false
	e.status.Runs++
	e.status.LastRun = start
	e.status.LastError = ""
	if err != nil {
		e.status.Failures++
		e.status.LastError = err.Error()
	}
	e.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", e.job.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return
	}
	s.logger.Debug("Job finished", zap.String("job", e.job.Name), zap.Duration("elapsed", elapsed))
}

func (s *Scheduler) safeRun(ctx context.Context, e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", e.job.Name, r)
		}
	}()
	return e.job.Task(ctx)
}
