package task

import (
	"sync"
	"time"
)

// RepeatingTask executes a task in a specific interval asynchronously
type RepeatingTask struct {
	task     func()
	interval time.Duration

	mtx     sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRepeating creates a new repeating asynchronous task
func NewRepeating(task func(), interval time.Duration) *RepeatingTask {
	return &RepeatingTask{
		task:     task,
		interval: interval,
	}
}

// Start starts the repeating task.
// If the task is already running, this is a no-op.
func (task *RepeatingTask) Start() {
	task.mtx.Lock()
	defer task.mtx.Unlock()
	if task.running {
		return
	}
	task.running = true
	task.stop = make(chan struct{})
	task.done = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(task.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				task.task()
			case <-stop:
				return
			}
		}
	}(task.stop, task.done)
}

// Running reports whether the task is currently scheduled
func (task *RepeatingTask) Running() bool {
	task.mtx.Lock()
	defer task.mtx.Unlock()
	return task.running
}

// Stop stops the repeating task and waits for a currently executing run to finish.
// If the task is not running, this is a no-op.
// forceExec defines whether to execute the task one last time just before the task shuts down.
func (task *RepeatingTask) Stop(forceExec bool) {
	task.mtx.Lock()
	if !task.running {
		task.mtx.Unlock()
		return
	}
	close(task.stop)
	done := task.done
	task.running = false
	task.mtx.Unlock()

	<-done
	if forceExec {
		task.task()
	}
}
