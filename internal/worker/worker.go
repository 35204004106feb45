package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/job"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

// Pool runs queued jobs. It starts with one worker, adds workers when the job
// service signals the dispatcher, and retires workers that stay idle.
type Pool struct {
	jobService  *job.Service
	processor   job.Processor
	stop        chan bool
	waitGroup   *sync.WaitGroup
	workerCount int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	retryDelay  time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, processor job.Processor, stop chan bool, waitGroup *sync.WaitGroup) *Pool {
	return &Pool{
		jobService:  jobService,
		processor:   processor,
		stop:        stop,
		waitGroup:   waitGroup,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		retryDelay:  config.ProcessingRetryDelay,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.workerCount)
}

func (p *Pool) dispatcher() {
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if p.WorkerCount() < p.maxWorkers {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.waitGroup.Add(1)
	atomic.AddInt64(&p.workerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			p.executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-p.stop:
			p.removeWorker("Stop worker signal received")
			return

		case <-time.After(p.idleTimeout):
			if p.WorkerCount() > p.minWorkers {
				p.removeWorker("Idle worker timeout")
				return
			}
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	count := atomic.AddInt64(&p.workerCount, -1)
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", count)
	p.waitGroup.Done()
}
