package domain

import "time"

// Built-in scheduled tasks.
const (
	// TaskPipelineRefresh checks the remote dataset and retrains when it changed.
	TaskPipelineRefresh = "pipeline-refresh"

	// TaskModelRetrain retrains on the current raw table without syncing.
	TaskModelRetrain = "model-retrain"
)

// ScheduledTask is a pipeline job submitted on a fixed interval.
type ScheduledTask struct {
	ID   string
	Name string

	// Kind is the job submitted to the dispatcher when the task is due.
	Kind JobKind

	Interval time.Duration
	Enabled  bool

	LastRun time.Time
	NextRun time.Time

	// LastJobID is the dispatcher job queued by the last successful firing.
	LastJobID string

	// LastError is empty when the last firing queued its job.
	LastError string
}

// Due reports whether the task should fire at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult records one firing of a scheduled task.
type TaskResult struct {
	TaskID  string
	FiredAt time.Time

	// JobID is set when the dispatcher accepted the job.
	JobID string

	// Error is set when submission failed.
	Error string
}

// Success reports whether the job was queued.
func (r TaskResult) Success() bool {
	return r.Error == ""
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	ID       string
	Name     string
	Kind     JobKind
	Interval time.Duration
	Enabled  bool
}

// SchedulerConfig holds the scheduler switch and its tasks.
type SchedulerConfig struct {
	// Enabled is the master switch; serve mode only starts the scheduler when set.
	Enabled bool

	Tasks []TaskConfig
}

// Task returns the configuration of task id.
func (c SchedulerConfig) Task(id string) (TaskConfig, bool) {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskConfig{}, false
}

// SetTask replaces the configuration of cfg.ID, appending it if absent.
func (c *SchedulerConfig) SetTask(cfg TaskConfig) {
	for i := range c.Tasks {
		if c.Tasks[i].ID == cfg.ID {
			c.Tasks[i] = cfg
			return
		}
	}
	c.Tasks = append(c.Tasks, cfg)
}

// DefaultSchedulerConfig refreshes the dataset daily. The weekly retrain is
// off until an interval is configured for it.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: false,
		Tasks: []TaskConfig{
			{
				ID:       TaskPipelineRefresh,
				Name:     "Pipeline refresh",
				Kind:     JobIngestTrain,
				Interval: 24 * time.Hour,
				Enabled:  true,
			},
			{
				ID:       TaskModelRetrain,
				Name:     "Model retrain",
				Kind:     JobTrain,
				Interval: 7 * 24 * time.Hour,
				Enabled:  false,
			},
		},
	}
}
