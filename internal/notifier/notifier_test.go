package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/GrantAgent/internal/data/memory"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu     sync.Mutex
	sent   []email.Message
	failTo map[string]bool
}

func (s *recordingSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTo[msg.To] {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func at(t time.Time) *time.Time { return &t }

func newTestNotifier(store *memory.GrantStore, sender email.Sender) *Notifier {
	return New(Dependencies{
		Startups:      memory.Startups{GrantStore: store},
		Grants:        memory.Grants{GrantStore: store},
		Watchlist:     memory.Watchlist{GrantStore: store},
		Notifications: memory.Notifications{GrantStore: store},
		Sender:        sender,
		AppURL:        "https://app.example.com",
	})
}

func reminderFixture() *memory.GrantStore {
	store := memory.NewGrantStore()
	store.PutStartup(grantModel.StartupProfile{Id: "s1", Name: "Acme", OwnerEmail: "a@acme.io"})
	store.PutStartup(grantModel.StartupProfile{Id: "s2", Name: "NoMail"})
	store.PutStartup(grantModel.StartupProfile{Id: "s3", Name: "Beta", OwnerEmail: "b@beta.io"})

	store.PutGrant(grantModel.Grant{Id: "week", Name: "Seed Fund", Provider: "DST", IsActive: true,
		Deadline: at(time.Date(2026, 10, 8, 17, 0, 0, 0, time.UTC))})
	store.PutGrant(grantModel.Grant{Id: "day", Name: "Ignite", Provider: "BIRAC", IsActive: true,
		Deadline: at(time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC))})
	store.PutGrant(grantModel.Grant{Id: "mid", Name: "Later", IsActive: true,
		Deadline: at(time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC))})

	store.Watch(grantModel.WatchlistEntry{StartupId: "s1", GrantId: "week", NotifyDeadline: true})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s2", GrantId: "week", NotifyDeadline: true})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s1", GrantId: "day", NotifyDeadline: false})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s3", GrantId: "day", NotifyDeadline: true})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s1", GrantId: "mid", NotifyDeadline: true})
	return store
}

func TestDeadlineReminders(t *testing.T) {
	store := reminderFixture()
	sender := &recordingSender{}

	report, err := newTestNotifier(store, sender).DeadlineReminders(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.GrantsMatched)
	assert.Equal(t, 3, report.Notifications)
	assert.Equal(t, 2, report.EmailsSent)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.EmailsFailed)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@acme.io", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "in 7 days")
	assert.Equal(t, "b@beta.io", sender.sent[1].To)
	assert.Contains(t, sender.sent[1].Subject, "tomorrow")
	assert.Contains(t, sender.sent[1].HTML, "https://app.example.com/grants/day")

	for _, n := range store.Notifications() {
		assert.Equal(t, grantModel.NotificationKindDeadline, n.Kind)
	}
}

func TestDeadlineRemindersContinuePastSendFailure(t *testing.T) {
	store := reminderFixture()
	sender := &recordingSender{failTo: map[string]bool{"a@acme.io": true}}

	report, err := newTestNotifier(store, sender).DeadlineReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EmailsFailed)
	assert.Equal(t, 1, report.EmailsSent)
	assert.Equal(t, 3, report.Notifications)
}

func TestWeeklyDigest(t *testing.T) {
	store := memory.NewGrantStore()
	store.PutStartup(grantModel.StartupProfile{Id: "s1", Name: "Acme", Sector: "technology", Stage: grantModel.StageMVP, OwnerEmail: "a@acme.io"})
	store.PutStartup(grantModel.StartupProfile{Id: "s2", Name: "Farm", Sector: "agriculture", Stage: grantModel.StageIdea, OwnerEmail: "f@farm.io"})
	store.PutStartup(grantModel.StartupProfile{Id: "s3", Name: "Watcher", Sector: "energy", Stage: grantModel.StageGrowth, OwnerEmail: "w@watch.io"})

	store.PutGrant(grantModel.Grant{Id: "new-tech", Name: "Tech Boost", Provider: "MeitY", IsActive: true,
		Sectors: []string{"technology"}, CreatedAt: now.AddDate(0, 0, -2)})
	store.PutGrant(grantModel.Grant{Id: "old-tech", Name: "Old Tech", IsActive: true,
		Sectors: []string{"technology"}, CreatedAt: now.AddDate(0, 0, -30)})
	store.PutGrant(grantModel.Grant{Id: "closing", Name: "Green Grant", IsActive: true, Sectors: []string{"health"},
		CreatedAt: now.AddDate(0, 0, -60), Deadline: at(now.AddDate(0, 0, 10))})
	store.PutGrant(grantModel.Grant{Id: "far", Name: "Far Away", IsActive: true, Sectors: []string{"health"},
		CreatedAt: now.AddDate(0, 0, -60), Deadline: at(now.AddDate(0, 0, 40))})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s3", GrantId: "closing"})
	store.Watch(grantModel.WatchlistEntry{StartupId: "s3", GrantId: "far"})

	sender := &recordingSender{}
	report, err := newTestNotifier(store, sender).WeeklyDigest(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, report.EmailsSent)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, sender.sent, 2)

	byRecipient := map[string]email.Message{}
	for _, m := range sender.sent {
		byRecipient[m.To] = m
	}
	assert.Contains(t, byRecipient["a@acme.io"].HTML, "Tech Boost")
	assert.NotContains(t, byRecipient["a@acme.io"].HTML, "Old Tech")
	assert.Contains(t, byRecipient["w@watch.io"].HTML, "Green Grant")
	assert.NotContains(t, byRecipient["w@watch.io"].HTML, "Far Away")
	assert.Equal(t, "Your weekly grant digest: 0 new, 1 closing soon", byRecipient["w@watch.io"].Subject)
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.RegisterNotifier(newTestNotifier(memory.NewGrantStore(), &recordingSender{})))
	assert.Equal(t, 2, s.Entries())
	assert.Error(t, s.Add("bad", "not a cron spec", func(ctx context.Context) error { return nil }))
}
