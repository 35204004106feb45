package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/commonModels"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/google/uuid"
)

// GrantStore holds startups, grants, applications, watchlists and notifications in memory.
type GrantStore struct {
	mu            sync.RWMutex
	startups      map[string]grantModel.StartupProfile
	grants        map[string]grantModel.Grant
	applications  map[string]grantModel.Application
	answers       map[string]map[string]grantModel.ApplicationAnswer
	watchlist     []grantModel.WatchlistEntry
	notifications []grantModel.Notification
}

func NewGrantStore() *GrantStore {
	return &GrantStore{
		startups:     make(map[string]grantModel.StartupProfile),
		grants:       make(map[string]grantModel.Grant),
		applications: make(map[string]grantModel.Application),
		answers:      make(map[string]map[string]grantModel.ApplicationAnswer),
	}
}

func (s *GrantStore) PutStartup(p grantModel.StartupProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startups[p.Id] = p
}

func (s *GrantStore) PutGrant(g grantModel.Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.grants[g.Id] = g
}

func (s *GrantStore) Watch(e grantModel.WatchlistEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlist = append(s.watchlist, e)
}

func (s *GrantStore) Notifications() []grantModel.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]grantModel.Notification(nil), s.notifications...)
}

func notFound(kind string, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, commonModels.ErrNotFound)
}

type Startups struct{ *GrantStore }

func (s Startups) Get(_ context.Context, id string) (grantModel.StartupProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.startups[id]
	if !ok {
		return grantModel.StartupProfile{}, notFound("startup", id)
	}
	return p, nil
}

func (s Startups) ListAll(_ context.Context) ([]grantModel.StartupProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]grantModel.StartupProfile, 0, len(s.startups))
	for _, p := range s.startups {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

type Grants struct{ *GrantStore }

func (s Grants) Get(_ context.Context, id string) (grantModel.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[id]
	if !ok {
		return grantModel.Grant{}, notFound("grant", id)
	}
	return g, nil
}

func (s Grants) filter(keep func(grantModel.Grant) bool) []grantModel.Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []grantModel.Grant
	for _, g := range s.grants {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (s Grants) ListActive(_ context.Context) ([]grantModel.Grant, error) {
	return s.filter(func(g grantModel.Grant) bool { return g.IsActive }), nil
}

func (s Grants) ListByIds(_ context.Context, ids []string) ([]grantModel.Grant, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.filter(func(g grantModel.Grant) bool { return want[g.Id] }), nil
}

func (s Grants) ListDeadlineBetween(_ context.Context, from time.Time, to time.Time) ([]grantModel.Grant, error) {
	return s.filter(func(g grantModel.Grant) bool {
		return g.IsActive && g.Deadline != nil && !g.Deadline.Before(from) && g.Deadline.Before(to)
	}), nil
}

func (s Grants) ListCreatedSince(_ context.Context, since time.Time) ([]grantModel.Grant, error) {
	return s.filter(func(g grantModel.Grant) bool { return g.IsActive && !g.CreatedAt.Before(since) }), nil
}

func (s Grants) UpsertByNameProvider(_ context.Context, g grantModel.Grant) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.grants {
		if strings.EqualFold(existing.Name, g.Name) && strings.EqualFold(existing.Provider, g.Provider) {
			g.Id, g.CreatedAt = id, existing.CreatedAt
			g.UpdatedAt = time.Now().UTC()
			if g.Questions == nil {
				g.Questions = existing.Questions
			}
			s.grants[id] = g
			return false, nil
		}
	}
	g.Id = uuid.NewString()
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	s.grants[g.Id] = g
	return true, nil
}

type Applications struct{ *GrantStore }

func (s Applications) GetOrCreate(_ context.Context, startupId string, grantId string) (grantModel.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applications {
		if a.StartupId == startupId && a.GrantId == grantId {
			return a, nil
		}
	}
	now := time.Now().UTC()
	a := grantModel.Application{Id: uuid.NewString(), StartupId: startupId, GrantId: grantId, Status: "draft", CreatedAt: now, UpdatedAt: now}
	s.applications[a.Id] = a
	return a, nil
}

func (s Applications) GetAnswers(_ context.Context, applicationId string) ([]grantModel.ApplicationAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []grantModel.ApplicationAnswer
	for _, a := range s.answers[applicationId] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionId < out[j].QuestionId })
	return out, nil
}

func (s Applications) SaveAnswers(_ context.Context, applicationId string, answers []grantModel.ApplicationAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[applicationId]; !ok {
		return notFound("application", applicationId)
	}
	byQuestion, ok := s.answers[applicationId]
	if !ok {
		byQuestion = make(map[string]grantModel.ApplicationAnswer)
		s.answers[applicationId] = byQuestion
	}
	for _, a := range answers {
		a.UpdatedAt = time.Now().UTC()
		byQuestion[a.QuestionId] = a
	}
	return nil
}

type Watchlist struct{ *GrantStore }

func (s Watchlist) ListWatchersForGrant(_ context.Context, grantId string, deadlineNotificationsOnly bool) ([]grantModel.WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []grantModel.WatchlistEntry
	for _, e := range s.watchlist {
		if e.GrantId == grantId && (!deadlineNotificationsOnly || e.NotifyDeadline) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s Watchlist) ListByStartup(_ context.Context, startupId string) ([]grantModel.WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []grantModel.WatchlistEntry
	for _, e := range s.watchlist {
		if e.StartupId == startupId {
			out = append(out, e)
		}
	}
	return out, nil
}

type Notifications struct{ *GrantStore }

func (s Notifications) Create(_ context.Context, n grantModel.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.Id == "" {
		n.Id = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	s.notifications = append(s.notifications, n)
	return nil
}
