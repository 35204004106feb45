package store

import (
	"context"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/data/redisStore"
	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

const stepKeyPrefix = "steps:"

// RedisStepStore keeps one hash per job, one field per completed step.
type RedisStepStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisStepStore(s *redisStore.Store) *RedisStepStore {
	return &RedisStepStore{
		store:  s,
		logger: logger_i.NewLogger("StepStore"),
	}
}

func (s *RedisStepStore) SaveStep(ctx context.Context, jobId string, step jobModel.InternalStatus, output []byte) error {
	err := s.store.HSetWithTTL(ctx, stepKeyPrefix+jobId, string(step), output, config.RedisStepStoreTTL)
	if err != nil {
		s.logger.FromContext(ctx).Error("Failed to memoize step", "jobId", jobId, "step", step, "error", err)
	}
	return err
}

func (s *RedisStepStore) GetStep(ctx context.Context, jobId string, step jobModel.InternalStatus) ([]byte, bool, error) {
	data, err := s.store.HGet(ctx, stepKeyPrefix+jobId, string(step))
	if s.store.IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStepStore) ClearSteps(ctx context.Context, jobId string) error {
	return s.store.Del(ctx, stepKeyPrefix+jobId)
}
