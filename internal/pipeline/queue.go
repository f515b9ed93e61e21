package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"railscan/pkg/log"
)

var (
	ErrQueueFull   = errors.New("analysis queue is full")
	ErrQueueClosed = errors.New("analysis queue is closed")
)

// Queue feeds submitted jobs to a Runner one at a time in the background.
type Queue struct {
	runner *Runner
	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *logrus.Entry

	mu     sync.Mutex
	closed bool
}

func NewQueue(parentCtx context.Context, runner *Runner, size int) *Queue {
	ctx, cancel := context.WithCancel(parentCtx)
	return &Queue{
		runner: runner,
		jobs:   make(chan Job, max(1, size)),
		ctx:    ctx,
		cancel: cancel,
		logger: log.GetLogger(ctx).WithField("component", "queue"),
	}
}

func (q *Queue) Start() {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-q.ctx.Done():
				return
			case job := <-q.jobs:
				if _, err := q.runner.Run(q.ctx, []Job{job}); err != nil {
					q.logger.WithError(err).Errorf("analysis of %s failed", job.TrainId)
				}
			}
		}
	}()
}

// Submit validates and enqueues job without blocking.
func (q *Queue) Submit(job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		q.logger.Infof("queued %s (%s)", job.TrainId, job.Path)
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop cancels the running analysis and waits for the worker to exit.
// Jobs still queued are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}
