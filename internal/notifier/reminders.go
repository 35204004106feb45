package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/email"
)

// DeadlineReminders notifies watchers of grants whose deadline falls on the
// calendar day 7 days or 1 day after now.
func (n *Notifier) DeadlineReminders(ctx context.Context, now time.Time) (RunReport, error) {
	report := RunReport{Job: kindReminder, StartedAt: now}
	log := logger.FromContext(ctx)
	today := dayStart(now)

	for _, days := range n.windows {
		from := today.AddDate(0, 0, days)
		grants, err := n.grants.ListDeadlineBetween(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return report, fmt.Errorf("list grants due %s: %w", from.Format(time.DateOnly), err)
		}
		report.GrantsMatched += len(grants)

		for _, grant := range grants {
			n.remindWatchers(ctx, &report, grant, days)
		}
	}

	log.Info("Deadline reminders finished", "grants", report.GrantsMatched, "sent", report.EmailsSent,
		"failed", report.EmailsFailed, "skipped", report.Skipped, "errors", report.Errors)
	return report, nil
}

func (n *Notifier) remindWatchers(ctx context.Context, report *RunReport, grant grantModel.Grant, days int) {
	log := logger.FromContext(ctx).With("grantId", grant.Id)

	watchers, err := n.watchlist.ListWatchersForGrant(ctx, grant.Id, true)
	if err != nil {
		log.Error("Could not list watchers", "error", err)
		report.Errors++
		return
	}

	notified := make(map[string]bool, len(watchers))
	for _, w := range watchers {
		if notified[w.StartupId] {
			continue
		}
		notified[w.StartupId] = true

		startup, err := n.startups.Get(ctx, w.StartupId)
		if err != nil {
			log.Warn("Watcher startup not found", "startupId", w.StartupId, "error", err)
			report.Errors++
			continue
		}

		title := fmt.Sprintf("%s closes %s", grant.Name, daysLabel(days))
		if err := n.notifications.Create(ctx, grantModel.Notification{
			StartupId: startup.Id,
			Kind:      grantModel.NotificationKindDeadline,
			Title:     title,
			Message:   fmt.Sprintf("The application deadline for %s from %s is %s.", grant.Name, grant.Provider, grant.Deadline.Format("2 January 2006")),
			GrantId:   grant.Id,
		}); err != nil {
			log.Warn("Could not store notification", "startupId", startup.Id, "error", err)
			report.Errors++
		} else {
			report.Notifications++
		}

		body, err := renderReminder(reminderView{
			StartupName: startup.Name,
			GrantName:   grant.Name,
			Provider:    grant.Provider,
			Deadline:    grant.Deadline.Format("2 January 2006"),
			DaysLabel:   daysLabel(days),
			Link:        n.appURL + "/grants/" + grant.Id,
		})
		if err != nil {
			log.Error("Could not render reminder", "error", err)
			report.Errors++
			continue
		}
		n.send(ctx, kindReminder, report, email.Message{To: startup.OwnerEmail, Subject: title, HTML: body})
	}
}
