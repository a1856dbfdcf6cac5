package ledger

import (
	"time"

	"cocomarkup/internal/logger"
	"cocomarkup/internal/models"
	"cocomarkup/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Recorder persists runs and task transitions. Ledger failures are logged and
// never fail a run.
type Recorder struct {
	runs   repository.RunRepository
	tasks  repository.TaskRepository
	logger *logger.Logger
}

func NewRecorder(runs repository.RunRepository, tasks repository.TaskRepository, logger *logger.Logger) *Recorder {
	return &Recorder{
		runs:   runs,
		tasks:  tasks,
		logger: logger,
	}
}

// NewRunID returns a fresh identifier for a scheduler run.
func NewRunID() string {
	return uuid.New().String()
}

// StartRun records the beginning of a run.
func (r *Recorder) StartRun(run *models.Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if err := r.runs.CreateRun(run); err != nil {
		return errors.Wrapf(err, "error recording run %s", run.ID)
	}
	r.logger.Info("📒 Run %s recorded (%s -> %s)", run.ID, run.Source, run.Destination)
	return nil
}

// FinishRun stamps the completion time of a run.
func (r *Recorder) FinishRun(runID string) error {
	if err := r.runs.FinishRun(runID, time.Now()); err != nil {
		return errors.Wrapf(err, "error finishing run %s", runID)
	}
	return nil
}

// TaskChanged implements scheduler.Observer.
func (r *Recorder) TaskChanged(event models.TaskEvent) {
	if err := r.tasks.RecordEvent(event); err != nil {
		r.logger.Warning("Ledger could not record %s -> %s: %v", event.Task.InputDir, event.State, err)
	}
}

// Stats returns the per-state summary of a recorded run.
func (r *Recorder) Stats(runID string) (*models.RunStats, error) {
	stats, err := r.tasks.GetRunStats(runID)
	if err != nil {
		return nil, errors.Wrap(err, "error reading run stats")
	}
	return stats, nil
}
