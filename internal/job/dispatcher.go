package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/google/uuid"
)

// ErrDispatchUnavailable means the background path could not accept a job.
var ErrDispatchUnavailable = errors.New("background processing unavailable")

const (
	ModeAsync  = "async"
	ModeInline = "inline"
)

var logger = logger_i.NewLogger("Dispatcher")

// ProcessingDispatcher starts processing of a document job.
type ProcessingDispatcher interface {
	Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error)
}

type Processor interface {
	ProcessDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// NewDocumentJob builds the job that processes doc.
func NewDocumentJob(traceId string, doc commonModels.Document) jobModel.Job {
	return jobModel.Job{
		Id:          uuid.NewString(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeProcessDocument,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.StepInit,
		Attempt:     1,
		MaxAttempts: config.ProcessingRetryBudget + 1,
		JobPayload: jobModel.JobPayload{
			StartupId:   doc.StartupId,
			DocumentId:  doc.Id,
			FileName:    doc.FileName,
			FileType:    doc.FileType,
			StoragePath: doc.StoragePath,
		},
	}
}

type AsyncDispatcher struct {
	service *Service
}

func NewAsyncDispatcher(service *Service) *AsyncDispatcher {
	return &AsyncDispatcher{service: service}
}

func (d *AsyncDispatcher) Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	job.Status = jobModel.JobStatusQueued
	if err := d.service.JobStore.SaveJob(ctx, job); err != nil {
		return job, fmt.Errorf("%w: save job: %w", ErrDispatchUnavailable, err)
	}
	if err := d.service.Enqueue(ctx, job); err != nil {
		return job, fmt.Errorf("%w: %w", ErrDispatchUnavailable, err)
	}
	return job, nil
}

// InlineDispatcher processes the job in the caller's goroutine with a single attempt.
// A processing failure is reported on the returned job, not as an error.
type InlineDispatcher struct {
	processor Processor
	store     jobModel.JobStore
}

func NewInlineDispatcher(processor Processor, store jobModel.JobStore) *InlineDispatcher {
	return &InlineDispatcher{processor: processor, store: store}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	job.Attempt = 1
	job.MaxAttempts = 1
	job.Status = jobModel.JobStatusRunning

	out := d.processor.ProcessDocument(ctx, job)
	out.EndTime = time.Now()
	if out.Status != jobModel.JobStatusError {
		out.Status = jobModel.JobStatusComplete
	}
	if d.store != nil {
		if err := d.store.SaveJob(ctx, out); err != nil {
			logger.FromContext(ctx).Warn("Could not record inline job", "jobId", out.Id, "error", err)
		}
	}
	return out, nil
}

// FallbackDispatcher prefers the background path and processes inline when it is unavailable.
type FallbackDispatcher struct {
	primary  ProcessingDispatcher
	fallback ProcessingDispatcher
}

func NewFallbackDispatcher(primary ProcessingDispatcher, fallback ProcessingDispatcher) *FallbackDispatcher {
	return &FallbackDispatcher{primary: primary, fallback: fallback}
}

func (d *FallbackDispatcher) Dispatch(ctx context.Context, job jobModel.Job) (jobModel.Job, error) {
	out, err := d.primary.Dispatch(ctx, job)
	if err == nil || !errors.Is(err, ErrDispatchUnavailable) {
		return out, err
	}
	logger.FromContext(ctx).Warn("Background dispatch failed, processing inline", "jobId", job.Id, "error", err)
	return d.fallback.Dispatch(ctx, job)
}

// NewDispatcher picks the dispatch strategy for mode.
func NewDispatcher(mode string, service *Service, processor Processor) ProcessingDispatcher {
	inline := NewInlineDispatcher(processor, service.JobStore)
	if mode == ModeInline {
		return inline
	}
	return NewFallbackDispatcher(NewAsyncDispatcher(service), inline)
}
