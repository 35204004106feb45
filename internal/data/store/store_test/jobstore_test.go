package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/akolanti/GrantAgent/internal/data/redisStore"
	"github.com/akolanti/GrantAgent/internal/data/store"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisJobStore(t *testing.T) (*store.RedisJobStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisJobStore(redisStore.NewStoreFromClient(client)), mr
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	jobStore, mr := newRedisJobStore(t)

	ctx := logger_i.WithTrace(context.Background(), "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			StartupId:  "startup-1",
			DocumentId: "doc-1",
		},
		CompletedSteps: []jobModel.InternalStatus{jobModel.StepMarkProcessing},
		Attempt:        1,
		MaxAttempts:    3,
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.DocumentId != testJob.JobPayload.DocumentId {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.DocumentId, testJob.JobPayload.DocumentId)
		}
		if !retrievedJob.HasCompleted(jobModel.StepMarkProcessing) {
			t.Error("completed steps were not persisted")
		}
	})

	t.Run("Jobs carry a TTL", func(t *testing.T) {
		if ttl := mr.TTL("job:" + jobID); ttl <= 0 {
			t.Errorf("expected a positive TTL, got %v", ttl)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists("job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	jobStore, _ := newRedisJobStore(t)

	ctx := logger_i.WithTrace(context.Background(), "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job lost under concurrent writes")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	s := store.InitInMemoryJobStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued}); err != nil {
		t.Fatal(err)
	}
	got, found := s.GetJob(ctx, "a")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("unexpected job %+v found=%v", got, found)
	}
	s.DeleteJob(ctx, "a")
	if _, found := s.GetJob(ctx, "a"); found {
		t.Error("job should be deleted")
	}
}
