package postgres

import (
	"context"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WatchlistRepository struct {
	pool *pgxpool.Pool
}

func NewWatchlistRepository(pool *pgxpool.Pool) *WatchlistRepository {
	return &WatchlistRepository{pool: pool}
}

func (r *WatchlistRepository) ListWatchersForGrant(ctx context.Context, grantId string, deadlineNotificationsOnly bool) ([]grantModel.WatchlistEntry, error) {
	return r.list(ctx, "list watchers", `
		SELECT startup_id::text, grant_id::text, notify_deadline FROM watchlist
		WHERE grant_id = $1::uuid AND (NOT $2 OR notify_deadline)`, grantId, deadlineNotificationsOnly)
}

func (r *WatchlistRepository) ListByStartup(ctx context.Context, startupId string) ([]grantModel.WatchlistEntry, error) {
	return r.list(ctx, "list watchlist", `
		SELECT startup_id::text, grant_id::text, notify_deadline FROM watchlist
		WHERE startup_id = $1::uuid ORDER BY created_at`, startupId)
}

func (r *WatchlistRepository) list(ctx context.Context, op string, query string, args ...any) ([]grantModel.WatchlistEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var out []grantModel.WatchlistEntry
	for rows.Next() {
		var w grantModel.WatchlistEntry
		if err := rows.Scan(&w.StartupId, &w.GrantId, &w.NotifyDeadline); err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, w)
	}
	return out, wrapErr(op, rows.Err())
}

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n grantModel.Notification) error {
	var grantId *string
	if n.GrantId != "" {
		grantId = &n.GrantId
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (startup_id, kind, title, message, grant_id)
		VALUES ($1::uuid, $2, $3, $4, $5::uuid)`,
		n.StartupId, n.Kind, n.Title, n.Message, grantId)
	return wrapErr("create notification", err)
}
