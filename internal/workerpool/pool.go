// Package workerpool runs a bounded number of goroutines draining a shared
// task channel under a tomb, the same supervision shape the corpus uses
// for its connection-handling pool, generalized to any task payload.
package workerpool

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

const defaultTaskChanSize = 100

// WorkerFunc processes one task. A non-nil error ends the worker that
// returned it and kills the tomb, so every other worker stops as well.
type WorkerFunc = func(t *tomb.Tomb, task any) error

// Pool is a fixed-size set of workers competing for tasks off one channel.
type Pool struct {
	size   uint
	tasks  chan any
	logger zerolog.Logger
}

// New builds a Pool of size workers with the given task queue depth (0
// selects a default).
func New(size uint, queueDepth int, logger zerolog.Logger) *Pool {
	if queueDepth <= 0 {
		queueDepth = defaultTaskChanSize
	}
	return &Pool{
		size:   size,
		tasks:  make(chan any, queueDepth),
		logger: logger,
	}
}

// AddTask enqueues a task for the next free worker.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Run starts every worker under t and returns without waiting for them;
// each worker runs until the tomb is dying, matching the corpus's Setup/worker split but with a fixed worker count
// instead of a spin loop racing activeWorkers against pool.n.
func (p *Pool) Run(t *tomb.Tomb, work WorkerFunc) {
	for i := 0; i < int(p.size); i++ {
		id := i
		t.Go(func() error {
			return p.worker(t, id, work)
		})
	}
}

func (p *Pool) worker(t *tomb.Tomb, id int, work WorkerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				p.logger.Error().Err(err).Int("worker", id).Msg("worker exiting")
				return err
			}
		}
	}
}
