package grantModel

import (
	"context"
	"time"
)

type StartupRepository interface {
	Get(ctx context.Context, id string) (StartupProfile, error)
	ListAll(ctx context.Context) ([]StartupProfile, error)
}

type GrantRepository interface {
	Get(ctx context.Context, id string) (Grant, error)
	ListActive(ctx context.Context) ([]Grant, error)
	ListByIds(ctx context.Context, ids []string) ([]Grant, error)
	// ListDeadlineBetween returns active grants with from <= deadline < to.
	ListDeadlineBetween(ctx context.Context, from time.Time, to time.Time) ([]Grant, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]Grant, error)
	// UpsertByNameProvider reports inserted=true when no grant with the same name and provider existed.
	UpsertByNameProvider(ctx context.Context, grant Grant) (inserted bool, err error)
}

type ApplicationRepository interface {
	GetOrCreate(ctx context.Context, startupId string, grantId string) (Application, error)
	GetAnswers(ctx context.Context, applicationId string) ([]ApplicationAnswer, error)
	SaveAnswers(ctx context.Context, applicationId string, answers []ApplicationAnswer) error
}

type WatchlistRepository interface {
	ListWatchersForGrant(ctx context.Context, grantId string, deadlineNotificationsOnly bool) ([]WatchlistEntry, error)
	ListByStartup(ctx context.Context, startupId string) ([]WatchlistEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n Notification) error
}
