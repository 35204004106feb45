package store

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
)

func TestInMemoryJobStoreExpires(t *testing.T) {
	s := InitInMemoryJobStore()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	if err := s.SaveJob(ctx, jobModel.Job{Id: "old"}); err != nil {
		t.Fatal(err)
	}
	if _, found := s.GetJob(ctx, "old"); !found {
		t.Fatal("fresh job should be readable")
	}

	s.now = func() time.Time { return start.Add(s.ttl) }
	if _, found := s.GetJob(ctx, "old"); found {
		t.Error("job should expire after the ttl")
	}

	if err := s.SaveJob(ctx, jobModel.Job{Id: "new"}); err != nil {
		t.Fatal(err)
	}
	if len(s.jobs) != 1 {
		t.Errorf("expired jobs should be swept on save, have %d", len(s.jobs))
	}
}
