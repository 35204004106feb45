package job

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var ErrQueueFull = errors.New("job queue is full")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue hands job to the worker pool without blocking. Document jobs, and every
// RequestsPerNewWorkerCount-th job, ask the dispatcher for another worker; idle
// workers retire on their own.
func (s *Service) Enqueue(ctx context.Context, job jobModel.Job) error {
	metrics.IncrementJobsInQueue()
	select {
	case s.JobChannel <- job:
	default:
		metrics.DecrementJobsInQueue()
		s.logger.FromContext(ctx).Warn("Job queue full", "jobId", job.Id)
		return ErrQueueFull
	}

	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.JobType == jobModel.JobTypeProcessDocument {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	s.logger.FromContext(ctx).Debug("Queued job", "jobId", job.Id, "attempt", job.Attempt)
	return nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}

func (s *Service) SaveJob(ctx context.Context, job jobModel.Job) {
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		s.logger.FromContext(ctx).Error("Failed to save job state", "jobId", job.Id, "error", err)
	}
}
