package sqlite

import (
	"fmt"

	"cocomarkup/internal/models"
)

// TaskRepository implements repository.TaskRepository for SQLite.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// RecordEvent upserts the task row and appends the transition to its history,
// in a single transaction.
func (r *TaskRepository) RecordEvent(event models.TaskEvent) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO tasks (run_id, input_dir, output_dir, state, images, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, input_dir) DO UPDATE SET
			output_dir = excluded.output_dir,
			state = excluded.state,
			images = excluded.images,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, event.RunID, event.Task.InputDir, event.Task.OutputDir, string(event.State), event.Images, event.Error, event.Time)
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO task_events (run_id, input_dir, state, worker, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.RunID, event.Task.InputDir, string(event.State), event.Worker, event.Time)
	if err != nil {
		return fmt.Errorf("failed to insert task event: %w", err)
	}

	return tx.Commit()
}

// GetTasksByRun retrieves all tasks of a run ordered by input directory.
func (r *TaskRepository) GetTasksByRun(runID string) ([]models.TaskRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, run_id, input_dir, output_dir, state, images, error, updated_at
		FROM tasks WHERE run_id = ? ORDER BY input_dir
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.TaskRecord
	for rows.Next() {
		var t models.TaskRecord
		var state string
		if err := rows.Scan(&t.ID, &t.RunID, &t.InputDir, &t.OutputDir, &state, &t.Images, &t.Error, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.State = models.TaskState(state)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetHistory returns the recorded states of one task in order.
func (r *TaskRepository) GetHistory(runID, inputDir string) ([]models.TaskState, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT state FROM task_events
		WHERE run_id = ? AND input_dir = ?
		ORDER BY id
	`, runID, inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to query task events: %w", err)
	}
	defer rows.Close()

	var states []models.TaskState
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("failed to scan task event: %w", err)
		}
		states = append(states, models.TaskState(state))
	}
	return states, rows.Err()
}

// GetRunStats summarizes the tasks of a run by state.
func (r *TaskRepository) GetRunStats(runID string) (*models.RunStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	run, err := scanRun(r.db.Conn().QueryRow(`
		SELECT id, source, destination, workers, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID))
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	stats := &models.RunStats{Run: *run, PerState: make(map[models.TaskState]int)}

	rows, err := r.db.Conn().Query(`
		SELECT state, COUNT(*), COALESCE(SUM(images), 0)
		FROM tasks WHERE run_id = ? GROUP BY state
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var count, images int
		if err := rows.Scan(&state, &count, &images); err != nil {
			return nil, fmt.Errorf("failed to scan task stats: %w", err)
		}
		stats.PerState[models.TaskState(state)] = count
		stats.TotalTasks += count
		stats.Images += images
	}
	return stats, rows.Err()
}
