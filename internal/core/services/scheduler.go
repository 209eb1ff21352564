package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	// DefaultTickInterval is how often due tasks are checked.
	DefaultTickInterval = time.Minute

	// historyKeep is the number of firings kept per task.
	historyKeep = 100
)

// Scheduler submits pipeline jobs to the dispatcher on fixed intervals.
// Task state survives restarts through the scheduler store, so a refresh
// that came due while the server was down fires on the next start.
type Scheduler struct {
	config     domain.SchedulerConfig
	store      driven.SchedulerStore
	dispatcher driving.Dispatcher
	tick       time.Duration
	now        func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler for the configured tasks.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	dispatcher driving.Dispatcher,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		dispatcher: dispatcher,
		tick:       DefaultTickInterval,
		now:        time.Now,
	}
}

// Start fires due tasks until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	defer close(done)

	if err := s.syncTasks(ctx); err != nil {
		logger.Error("scheduler: syncing tasks: %v", err)
	}

	s.fireDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

// Stop ends the loop started by Start and waits for it to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// syncTasks writes the configured tasks to the store, keeping the run
// history of tasks that already exist.
func (s *Scheduler) syncTasks(ctx context.Context) error {
	for _, cfg := range s.config.Tasks {
		if err := s.syncTask(ctx, cfg); err != nil {
			return fmt.Errorf("task %s: %w", cfg.ID, err)
		}
	}
	return nil
}

func (s *Scheduler) syncTask(ctx context.Context, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, cfg.ID)
	if err != nil {
		return err
	}

	now := s.now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:      cfg.ID,
			NextRun: now.Add(cfg.Interval),
		}
	} else if task.Interval != cfg.Interval {
		task.NextRun = now.Add(cfg.Interval)
	}
	task.Name = cfg.Name
	task.Kind = cfg.Kind
	task.Interval = cfg.Interval
	task.Enabled = cfg.Enabled

	return s.store.SaveTask(ctx, task)
}

// fireDue submits every enabled task whose next run has passed.
func (s *Scheduler) fireDue(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: listing tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.fire(ctx, &tasks[i], now)
		}
	}
}

// fire queues the task's job. The job itself runs on the dispatcher worker,
// so a firing succeeds once the job is accepted.
func (s *Scheduler) fire(ctx context.Context, task *domain.ScheduledTask, now time.Time) {
	result := &domain.TaskResult{TaskID: task.ID, FiredAt: now}

	job, err := s.submit(task.Kind)
	if err != nil {
		result.Error = err.Error()
		task.LastError = result.Error
		logger.Warn("scheduler: %s: %v", task.ID, err)
	} else {
		result.JobID = job.ID
		task.LastJobID = job.ID
		task.LastError = ""
		logger.Info("scheduler: %s queued %s job %s", task.ID, task.Kind, job.ID)
	}

	task.LastRun = now
	task.NextRun = now.Add(task.Interval)

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Error("scheduler: saving task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Error("scheduler: recording firing of %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: pruning history: %v", err)
	}
}

func (s *Scheduler) submit(kind domain.JobKind) (*domain.Job, error) {
	if s.dispatcher == nil {
		return nil, domain.ErrDispatcherStopped
	}
	job, err := s.dispatcher.Submit(kind)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", kind, err)
	}
	return job, nil
}
