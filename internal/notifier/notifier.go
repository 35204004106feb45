package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/email"
	"github.com/akolanti/GrantAgent/internal/metrics"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

const (
	kindReminder = "deadline_reminder"
	kindDigest   = "weekly_digest"
)

var logger = logger_i.NewLogger("Notifier")

// RunReport counts what one notifier run did. A failure for one recipient is
// counted and the run carries on.
type RunReport struct {
	Job           string    `json:"job"`
	StartedAt     time.Time `json:"started_at"`
	GrantsMatched int       `json:"grants_matched"`
	Notifications int       `json:"notifications"`
	EmailsSent    int       `json:"emails_sent"`
	EmailsFailed  int       `json:"emails_failed"`
	Skipped       int       `json:"skipped"`
	Errors        int       `json:"errors"`
}

type Dependencies struct {
	Startups      grantModel.StartupRepository
	Grants        grantModel.GrantRepository
	Watchlist     grantModel.WatchlistRepository
	Notifications grantModel.NotificationRepository
	Sender        email.Sender
	AppURL        string
}

type Notifier struct {
	startups      grantModel.StartupRepository
	grants        grantModel.GrantRepository
	watchlist     grantModel.WatchlistRepository
	notifications grantModel.NotificationRepository
	sender        email.Sender
	appURL        string
	windows       []int
}

func New(deps Dependencies) *Notifier {
	return &Notifier{
		startups:      deps.Startups,
		grants:        deps.Grants,
		watchlist:     deps.Watchlist,
		notifications: deps.Notifications,
		sender:        deps.Sender,
		appURL:        deps.AppURL,
		windows:       config.ReminderWindows,
	}
}

func (n *Notifier) send(ctx context.Context, kind string, report *RunReport, msg email.Message) {
	if msg.To == "" {
		report.Skipped++
		metrics.CaptureNotification(kind, "skipped")
		return
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("Email send failed", "kind", kind, "to", msg.To, "error", err)
		report.EmailsFailed++
		metrics.CaptureNotification(kind, "failed")
		return
	}
	report.EmailsSent++
	metrics.CaptureNotification(kind, "sent")
}

// dayStart is midnight UTC of t's calendar day.
func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysLabel(days int) string {
	if days == 1 {
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", days)
}
