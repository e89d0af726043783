package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/stats"
)

// ErrQueueFull is returned by Submit when the job buffer is at capacity.
var ErrQueueFull = errors.New("job queue is full")

type Job interface {
	Run(context.Context) error
	Name() string
}

type Pool struct {
	jobs      chan Job
	wg        sync.WaitGroup
	workers   int
	queue     int
	cancel    context.CancelFunc
	log       *logger.Logger
	collector stats.Collector
}

func NewPool(workers, queueSize int, collector stats.Collector) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:      make(chan Job, queueSize),
		workers:   workers,
		queue:     queueSize,
		log:       log,
		collector: collector,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					p.collector.SetGauge(stats.MetricQueueDepth, int64(len(p.jobs)))

					jobLog := workerLog.WithField("job", job.Name())
					jobLog.Debug("starting job")
					start := time.Now()

					// Carry the job logger through the context
					jobCtx := logger.NewContext(ctx, jobLog)

					if err := job.Run(jobCtx); err != nil {
						p.collector.IncCounter(stats.MetricJobsFailed, 1)
						jobLog.Error("job failed after %v: %v", time.Since(start), err)
					} else {
						jobLog.Info("job completed in %v", time.Since(start))
					}
				}
			}
		}(i + 1)
	}
}

func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Submit enqueues a job without blocking. ErrQueueFull is returned
// when the buffer has no room left.
func (p *Pool) Submit(job Job) error {
	p.log.Debug("submitting job: %s", job.Name())
	select {
	case p.jobs <- job:
		p.collector.IncCounter(stats.MetricJobsQueued, 1)
		p.collector.SetGauge(stats.MetricQueueDepth, int64(len(p.jobs)))
		return nil
	default:
		p.log.Warn("job queue full, rejecting job: %s", job.Name())
		return ErrQueueFull
	}
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
