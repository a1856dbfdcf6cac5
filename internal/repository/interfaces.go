package repository

import (
	"time"

	"cocomarkup/internal/models"
)

// RunRepository defines the interface for run ledger operations.
type RunRepository interface {
	// Create operations
	CreateRun(run *models.Run) error

	// Update operations
	FinishRun(runID string, finishedAt time.Time) error

	// Read operations
	GetRun(runID string) (*models.Run, error)
	GetRecentRuns(limit int) ([]models.Run, error)
}

// TaskRepository defines the interface for task ledger operations.
type TaskRepository interface {
	// Create/update operations
	RecordEvent(event models.TaskEvent) error

	// Read operations
	GetTasksByRun(runID string) ([]models.TaskRecord, error)
	GetHistory(runID, inputDir string) ([]models.TaskState, error)
	GetRunStats(runID string) (*models.RunStats, error)
}
