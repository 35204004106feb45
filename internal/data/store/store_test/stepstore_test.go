package store_test

import (
	"context"
	"testing"

	"github.com/akolanti/GrantAgent/internal/data/redisStore"
	"github.com/akolanti/GrantAgent/internal/data/store"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func runStepStoreContract(t *testing.T, s jobModel.StepStore) {
	ctx := context.Background()

	_, found, err := s.GetStep(ctx, "job-1", jobModel.StepChunk)
	if err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	if err := s.SaveStep(ctx, "job-1", jobModel.StepChunk, []byte(`["a","b"]`)); err != nil {
		t.Fatalf("SaveStep failed: %v", err)
	}
	data, found, err := s.GetStep(ctx, "job-1", jobModel.StepChunk)
	if err != nil || !found || string(data) != `["a","b"]` {
		t.Fatalf("unexpected step output %q found=%v err=%v", data, found, err)
	}

	if _, found, _ := s.GetStep(ctx, "job-2", jobModel.StepChunk); found {
		t.Error("steps leaked across jobs")
	}

	if err := s.ClearSteps(ctx, "job-1"); err != nil {
		t.Fatalf("ClearSteps failed: %v", err)
	}
	if _, found, _ := s.GetStep(ctx, "job-1", jobModel.StepChunk); found {
		t.Error("step survived ClearSteps")
	}
}

func TestRedisStepStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	runStepStoreContract(t, store.NewRedisStepStore(redisStore.NewStoreFromClient(client)))
}

func TestInMemoryStepStore(t *testing.T) {
	runStepStoreContract(t, store.InitInMemoryStepStore())
}
