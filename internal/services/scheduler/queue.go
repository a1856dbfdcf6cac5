package scheduler

import (
	"sync"

	"cocomarkup/internal/models"

	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
)

// ErrQueueClosed is returned by Enqueue after SignalNoMoreWork.
var ErrQueueClosed = errors.New("task queue no longer accepts work")

// TaskQueue is a FIFO of tasks shared by the worker pool. The task slice and the
// closed flag are guarded by mu; cond wakes workers on both enqueue and close.
type TaskQueue struct {
	mu     deadlock.Mutex
	cond   *sync.Cond
	tasks  []models.Task
	closed bool
}

// NewTaskQueue creates an empty, open queue.
func NewTaskQueue() *TaskQueue {
	q := &TaskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends task and wakes one waiting worker.
func (q *TaskQueue) Enqueue(task models.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return nil
}

// DequeueOrShutdown blocks until a task is available or the queue has been closed
// and drained. It returns false only in the latter case.
func (q *TaskQueue) DequeueOrShutdown() (models.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.tasks) == 0 {
		return models.Task{}, false
	}

	task := q.tasks[0]
	q.tasks[0] = models.Task{}
	q.tasks = q.tasks[1:]
	return task, true
}

// SignalNoMoreWork closes the queue. Tasks already queued are still handed out.
func (q *TaskQueue) SignalNoMoreWork() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len returns the number of tasks waiting.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
