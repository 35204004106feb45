package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	ctx := logger_i.WithTrace(context.Background(), job.TraceId)
	log := p.logger.FromContext(ctx).With("jobId", job.Id, "attempt", job.Attempt)
	log.Debug("Processing job")

	p.saveJobState(ctx, job, jobModel.JobStatusRunning)

	switch job.JobType {
	case jobModel.JobTypeProcessDocument:
		job = p.processor.ProcessDocument(ctx, job)
	default:
		log.Error("Unknown job type", "jobType", job.JobType)
		job.Status = jobModel.JobStatusError
		job.Error = jobModel.JobError{Code: 400, Message: fmt.Sprintf("unknown job type %q", job.JobType)}
	}
	metrics.CaptureJobMetrics(string(job.Status), time.Since(start))

	if job.Status == jobModel.JobStatusError && job.Error.Retry && !job.IsLastAttempt() {
		p.scheduleRetry(ctx, job)
		return
	}

	job.EndTime = time.Now()
	if job.Status != jobModel.JobStatusError {
		job.Status = jobModel.JobStatusComplete
	}
	p.saveJobState(ctx, job, job.Status)
}

// scheduleRetry requeues job after a delay that grows with the attempt number.
// If the queue cannot take it, the retry runs on the timer goroutine.
func (p *Pool) scheduleRetry(ctx context.Context, job jobModel.Job) {
	delay := p.retryDelay * time.Duration(job.Attempt)
	job.Attempt++
	job.Error = jobModel.JobError{}
	metrics.IncrementJobRetries()
	p.saveJobState(ctx, job, jobModel.JobStatusQueued)
	p.logger.FromContext(ctx).Warn("Retrying job", "jobId", job.Id, "nextAttempt", job.Attempt, "delay", delay)

	time.AfterFunc(delay, func() {
		if err := p.jobService.Enqueue(ctx, job); err != nil {
			p.logger.FromContext(ctx).Warn("Could not requeue job, running retry directly", "jobId", job.Id, "error", err)
			p.executeJob(job)
		}
	})
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job, status jobModel.JobStatus) {
	job.Status = status
	p.jobService.SaveJob(ctx, job)
}
