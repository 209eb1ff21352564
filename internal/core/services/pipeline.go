package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driving.PipelineService = (*PipelineService)(nil)
	_ driving.Dispatcher      = (*Dispatcher)(nil)
)

// PipelineService runs ingestion and training in sequence. Runs are
// serialised, whether they come from Run or from the dispatcher worker, so
// only one job touches the analytical store at a time.
type PipelineService struct {
	ingestion driving.IngestionService
	training  driving.TrainingService
	now       func() time.Time

	runMu sync.Mutex
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(ingestion driving.IngestionService, training driving.TrainingService) *PipelineService {
	return &PipelineService{ingestion: ingestion, training: training, now: time.Now}
}

// Run executes a job synchronously. For ingest-train, training only runs
// when ingestion succeeded.
func (p *PipelineService) Run(ctx context.Context, kind domain.JobKind) (*domain.Job, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidInput, kind)
	}
	job := newJob(kind, p.now())
	p.execute(ctx, job)
	return job, nil
}

func (p *PipelineService) execute(ctx context.Context, job *domain.Job) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	job.State = domain.JobRunning
	job.StartedAt = p.now()
	logger.Info("pipeline: job %s (%s) started", job.ID, job.Kind)

	ok := true
	if job.Kind == domain.JobIngest || job.Kind == domain.JobIngestTrain {
		res := p.ingestion.Ingest(ctx)
		job.Ingest = &res
		ok = res.OK()
		logger.Info("pipeline: ingestion finished: %s", res.Message)
	}

	if ok && (job.Kind == domain.JobTrain || job.Kind == domain.JobIngestTrain) {
		res := p.training.Train(ctx)
		job.Train = &res
		ok = res.OK()
		logger.Info("pipeline: training finished: %s", res.Message)
	} else if !ok && job.Kind == domain.JobIngestTrain {
		logger.Error("pipeline: ingestion failed, training skipped")
	}

	job.EndedAt = p.now()
	if ok {
		job.State = domain.JobSucceeded
	} else {
		job.State = domain.JobFailed
	}
	logger.Info("pipeline: job %s %s in %s", job.ID, job.State, job.EndedAt.Sub(job.StartedAt).Round(time.Millisecond))
}

func newJob(kind domain.JobKind, at time.Time) *domain.Job {
	return &domain.Job{
		ID:          uuid.NewString(),
		Kind:        kind,
		State:       domain.JobQueued,
		SubmittedAt: at,
	}
}

// DefaultQueueSize bounds the number of queued jobs.
const DefaultQueueSize = 16

// maxRetainedJobs bounds the job history kept for status queries.
const maxRetainedJobs = 100

// Dispatcher runs jobs one at a time in submission order on a single
// background worker, so no two runs touch the analytical store concurrently.
type Dispatcher struct {
	pipeline *PipelineService
	queue    chan *domain.Job

	mu      sync.Mutex
	jobs    map[string]*domain.Job
	order   []string
	stopped bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDispatcher creates a dispatcher. Call Start before submitting jobs.
func NewDispatcher(pipeline *PipelineService, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		pipeline: pipeline,
		queue:    make(chan *domain.Job, queueSize),
		jobs:     make(map[string]*domain.Job),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. It returns immediately.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	go d.work(ctx)
}

// Stop stops accepting jobs, cancels the running one and waits for the worker.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
}

// Submit queues a job and returns a snapshot of it.
func (d *Dispatcher) Submit(kind domain.JobKind) (*domain.Job, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidInput, kind)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil, domain.ErrDispatcherStopped
	}

	job := newJob(kind, d.pipeline.now())
	select {
	case d.queue <- job:
	default:
		return nil, domain.ErrQueueFull
	}
	d.remember(job)
	logger.Info("dispatcher: queued job %s (%s)", job.ID, kind)
	snapshot := *job
	return &snapshot, nil
}

// Job returns a snapshot of a submitted job.
func (d *Dispatcher) Job(id string) (*domain.Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	snapshot := *job
	return &snapshot, nil
}

func (d *Dispatcher) remember(job *domain.Job) {
	d.jobs[job.ID] = job
	d.order = append(d.order, job.ID)
	for len(d.order) > maxRetainedJobs {
		oldest := d.order[0]
		if j := d.jobs[oldest]; j != nil && !j.State.IsTerminal() {
			break
		}
		delete(d.jobs, oldest)
		d.order = d.order[1:]
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer close(d.done)
	for queued := range d.queue {
		if ctx.Err() != nil {
			d.update(queued, func(j *domain.Job) {
				j.State = domain.JobFailed
				j.EndedAt = d.pipeline.now()
			})
			continue
		}

		d.mu.Lock()
		queued.State = domain.JobRunning
		queued.StartedAt = d.pipeline.now()
		running := *queued
		d.mu.Unlock()

		d.pipeline.execute(ctx, &running)
		d.update(queued, func(j *domain.Job) { *j = running })
	}
}

func (d *Dispatcher) update(job *domain.Job, fn func(*domain.Job)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(job)
}
