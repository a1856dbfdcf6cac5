package models

import (
	"path/filepath"
	"time"
)

// OutputSuffix is appended to an input directory name to form its output directory.
const OutputSuffix = "_markup"

// TaskState is the lifecycle state of a single markup task.
type TaskState string

const (
	TaskQueued     TaskState = "queued"
	TaskInProgress TaskState = "in_progress"
	TaskCompleted  TaskState = "completed"
	TaskFailed     TaskState = "failed"
)

// Terminal reports whether no further transitions follow this state.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is one input directory and the directory its dataset is written to.
type Task struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
}

// NewTask derives the output directory <outputRoot>/<base(inputDir)>_markup.
func NewTask(inputDir, outputRoot string) Task {
	return Task{
		InputDir:  inputDir,
		OutputDir: filepath.Join(outputRoot, filepath.Base(inputDir)+OutputSuffix),
	}
}

// TaskEvent is emitted on every task state transition.
type TaskEvent struct {
	RunID  string    `json:"run_id"`
	Task   Task      `json:"task"`
	State  TaskState `json:"state"`
	Worker int       `json:"worker"`
	Images int       `json:"images"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// TaskResult is the terminal outcome of a task.
type TaskResult struct {
	Task   Task
	State  TaskState
	Images int
	Err    error
}

// RunReport collects the outcomes of one scheduler run.
type RunReport struct {
	RunID   string
	Results []TaskResult
}

// Count returns the number of results in the given state.
func (r *RunReport) Count(state TaskState) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}
