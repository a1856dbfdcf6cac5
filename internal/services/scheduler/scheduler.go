package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"cocomarkup/internal/logger"
	"cocomarkup/internal/models"
)

// Pipeline processes one task and reports how many images it produced.
type Pipeline interface {
	Run(task models.Task) (int, error)
}

// Observer is notified of every task state transition. Implementations must be
// safe for concurrent use; they are called from worker goroutines.
type Observer interface {
	TaskChanged(event models.TaskEvent)
}

// Scheduler drains a TaskQueue with a fixed number of workers.
type Scheduler struct {
	pipeline   Pipeline
	numWorkers int
	observers  []Observer
	logger     *logger.Logger
}

// run holds the state of one Run call.
type run struct {
	id    string
	queue *TaskQueue
	wg    sync.WaitGroup

	resultsMu sync.Mutex
	results   []models.TaskResult
}

// NewScheduler creates a scheduler running pipeline on numWorkers workers.
func NewScheduler(pipeline Pipeline, numWorkers int, logger *logger.Logger, observers ...Observer) *Scheduler {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Scheduler{
		pipeline:   pipeline,
		numWorkers: numWorkers,
		observers:  observers,
		logger:     logger,
	}
}

// Run processes every task and returns once all of them reached a terminal state.
// All tasks are queued before the first worker starts.
func (s *Scheduler) Run(runID string, tasks []models.Task) *models.RunReport {
	r := &run{
		id:      runID,
		queue:   NewTaskQueue(),
		results: make([]models.TaskResult, 0, len(tasks)),
	}

	for _, task := range tasks {
		if err := r.queue.Enqueue(task); err != nil {
			s.logger.Error("Could not queue %s: %v", task.InputDir, err)
			continue
		}
		s.emit(runID, 0, task, models.TaskQueued, 0, nil)
	}

	workers := s.numWorkers
	if len(tasks) < workers {
		workers = len(tasks)
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go s.worker(r, i+1)
	}

	r.queue.SignalNoMoreWork()
	r.wg.Wait()

	s.logger.Info("🛑 All %d worker(s) stopped, %d task(s) processed", workers, len(r.results))
	return &models.RunReport{RunID: runID, Results: r.results}
}

// worker pulls tasks until the queue is closed and empty.
func (s *Scheduler) worker(r *run, workerID int) {
	defer r.wg.Done()

	s.logger.Info("🔧 Worker %d started", workerID)
	for {
		task, ok := r.queue.DequeueOrShutdown()
		if !ok {
			break
		}
		s.runTask(r, workerID, task)
	}
	s.logger.Info("🔧 Worker %d stopped", workerID)
}

func (s *Scheduler) runTask(r *run, workerID int, task models.Task) {
	s.emit(r.id, workerID, task, models.TaskInProgress, 0, nil)

	images, err := s.safeRun(task)

	result := models.TaskResult{Task: task, State: models.TaskCompleted, Images: images}
	if err != nil {
		result.State = models.TaskFailed
		result.Err = err
		result.Images = 0
		s.logger.Error("Task %s failed: %v", task.InputDir, err)
	} else {
		s.logger.Info("Task %s completed with %d image(s)", task.InputDir, images)
	}

	r.resultsMu.Lock()
	r.results = append(r.results, result)
	r.resultsMu.Unlock()

	s.emit(r.id, workerID, task, result.State, result.Images, err)
}

// safeRun converts a panic inside the pipeline into a task failure.
func (s *Scheduler) safeRun(task models.Task) (images int, err error) {
	defer func() {
		if e := recover(); e != nil {
			s.logger.Error("Panic in task %s: %v\n%s", task.InputDir, e, debug.Stack())
			err = fmt.Errorf("panic: %v", e)
		}
	}()
	return s.pipeline.Run(task)
}

func (s *Scheduler) emit(runID string, workerID int, task models.Task, state models.TaskState, images int, err error) {
	event := models.TaskEvent{
		RunID:  runID,
		Task:   task,
		State:  state,
		Worker: workerID,
		Images: images,
		Time:   time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	for _, o := range s.observers {
		o.TaskChanged(event)
	}
}
