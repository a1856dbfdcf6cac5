package models

import "time"

// Run represents one scheduler invocation stored in the ledger.
type Run struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Workers     int       `json:"workers"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// TaskRecord is the ledger row for one task.
type TaskRecord struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	InputDir  string    `json:"input_dir"`
	OutputDir string    `json:"output_dir"`
	State     TaskState `json:"state"`
	Images    int       `json:"images"`
	Error     string    `json:"error"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStats summarizes the tasks of a run by state.
type RunStats struct {
	Run        Run               `json:"run"`
	PerState   map[TaskState]int `json:"per_state"`
	TotalTasks int               `json:"total_tasks"`
	Images     int               `json:"images"`
}
