package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/google/uuid"
)

// DocumentStore keeps documents in memory. It backs the service when no
// database is configured and follows the same status rules as the SQL store.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]commonModels.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]commonModels.Document)}
}

func (s *DocumentStore) Create(_ context.Context, doc commonModels.Document) (commonModels.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Id == "" {
		doc.Id = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = commonModels.DocStatusPending
	}
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now
	s.docs[doc.Id] = doc
	return doc, nil
}

func (s *DocumentStore) Get(_ context.Context, startupId string, id string) (commonModels.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok || d.StartupId != startupId {
		return commonModels.Document{}, fmt.Errorf("document %s: %w", id, commonModels.ErrNotFound)
	}
	return d, nil
}

func (s *DocumentStore) ListByStartup(_ context.Context, startupId string) ([]commonModels.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []commonModels.Document{}
	for _, d := range s.docs {
		if d.StartupId == startupId {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *DocumentStore) UpdateStatus(_ context.Context, startupId string, id string, status commonModels.DocStatus, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.StartupId != startupId {
		return fmt.Errorf("document %s: %w", id, commonModels.ErrNotFound)
	}
	isRetry := status == commonModels.DocStatusPending
	if d.Status != status && !commonModels.CanTransition(d.Status, status, isRetry) {
		return fmt.Errorf("%w: %s -> %s", commonModels.ErrInvalidTransition, d.Status, status)
	}
	d.Status = status
	d.ErrorMessage = errorMessage
	if isRetry {
		d.Metadata = nil
		d.ErrorMessage = nil
	}
	d.UpdatedAt = time.Now().UTC()
	s.docs[id] = d
	return nil
}

func (s *DocumentStore) Complete(_ context.Context, startupId string, id string, metadata commonModels.DocumentMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.StartupId != startupId {
		return fmt.Errorf("document %s: %w", id, commonModels.ErrNotFound)
	}
	if d.Status != commonModels.DocStatusProcessing && d.Status != commonModels.DocStatusCompleted {
		return fmt.Errorf("complete document %s: %w", id, commonModels.ErrInvalidTransition)
	}
	d.Status = commonModels.DocStatusCompleted
	d.Metadata = &metadata
	d.ErrorMessage = nil
	d.UpdatedAt = time.Now().UTC()
	s.docs[id] = d
	return nil
}

func (s *DocumentStore) Delete(_ context.Context, startupId string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.StartupId != startupId {
		return fmt.Errorf("document %s: %w", id, commonModels.ErrNotFound)
	}
	delete(s.docs, id)
	return nil
}
