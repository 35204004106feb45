package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobStore")

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore mirrors the Redis store, including expiry, for single-process runs.
type InMemoryJobStore struct {
	jobMutex sync.RWMutex
	jobs     map[string]storedJob
	ttl      time.Duration
	now      func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs: make(map[string]storedJob),
		ttl:  config.RedisJobStoreTTL,
		now:  time.Now,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobs[job.Id] = storedJob{job: job, expiresAt: store.now().Add(store.ttl)}
	store.sweep()
	inMemLogger.FromContext(ctx).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	entry, found := store.jobs[jobId]
	if !found || !store.now().Before(entry.expiresAt) {
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobs, jobID)
}

// sweep drops expired entries. Callers hold the write lock.
func (store *InMemoryJobStore) sweep() {
	now := store.now()
	for id, entry := range store.jobs {
		if !now.Before(entry.expiresAt) {
			delete(store.jobs, id)
		}
	}
}
