package store

import (
	"context"
	"sync"

	"github.com/akolanti/GrantAgent/internal/domain/jobModel"
)

type InMemoryStepStore struct {
	stepLock *sync.RWMutex
	stepMap  map[string]map[jobModel.InternalStatus][]byte
}

func InitInMemoryStepStore() *InMemoryStepStore {
	return &InMemoryStepStore{
		stepLock: new(sync.RWMutex),
		stepMap:  make(map[string]map[jobModel.InternalStatus][]byte),
	}
}

func (store *InMemoryStepStore) SaveStep(ctx context.Context, jobId string, step jobModel.InternalStatus, output []byte) error {
	store.stepLock.Lock()
	defer store.stepLock.Unlock()
	steps, ok := store.stepMap[jobId]
	if !ok {
		steps = make(map[jobModel.InternalStatus][]byte)
		store.stepMap[jobId] = steps
	}
	steps[step] = append([]byte(nil), output...)
	return nil
}

func (store *InMemoryStepStore) GetStep(ctx context.Context, jobId string, step jobModel.InternalStatus) ([]byte, bool, error) {
	store.stepLock.RLock()
	defer store.stepLock.RUnlock()
	data, ok := store.stepMap[jobId][step]
	return data, ok, nil
}

func (store *InMemoryStepStore) ClearSteps(ctx context.Context, jobId string) error {
	store.stepLock.Lock()
	defer store.stepLock.Unlock()
	delete(store.stepMap, jobId)
	return nil
}
