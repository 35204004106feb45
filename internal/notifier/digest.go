package notifier

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/domain/grantModel"
	"github.com/akolanti/GrantAgent/internal/email"
	"github.com/akolanti/GrantAgent/internal/matching"
)

// WeeklyDigest mails every startup its new matching grants and its watched
// grants that close soon. Startups with nothing to report get no mail.
func (n *Notifier) WeeklyDigest(ctx context.Context, now time.Time) (RunReport, error) {
	report := RunReport{Job: kindDigest, StartedAt: now}
	log := logger.FromContext(ctx)

	startups, err := n.startups.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("list startups: %w", err)
	}
	recent, err := n.grants.ListCreatedSince(ctx, now.Add(-config.DigestNewGrantsWindow))
	if err != nil {
		return report, fmt.Errorf("list new grants: %w", err)
	}

	for _, startup := range startups {
		var fresh []grantModel.Grant
		for _, g := range recent {
			if matching.MatchesProfile(startup, g) {
				fresh = append(fresh, g)
			}
		}

		closing, err := n.closingWatched(ctx, startup.Id, now)
		if err != nil {
			log.Warn("Could not load watched grants", "startupId", startup.Id, "error", err)
			report.Errors++
			continue
		}

		if len(fresh) == 0 && len(closing) == 0 {
			report.Skipped++
			continue
		}
		report.GrantsMatched += len(fresh) + len(closing)

		body, err := renderDigest(digestView{
			StartupName: startup.Name,
			NewGrants:   toGrantLines(fresh, n.appURL),
			Closing:     toGrantLines(closing, n.appURL),
			Link:        n.appURL + "/grants",
		})
		if err != nil {
			log.Error("Could not render digest", "error", err)
			report.Errors++
			continue
		}
		subject := fmt.Sprintf("Your weekly grant digest: %d new, %d closing soon", len(fresh), len(closing))
		n.send(ctx, kindDigest, &report, email.Message{To: startup.OwnerEmail, Subject: subject, HTML: body})
	}

	log.Info("Weekly digest finished", "startups", len(startups), "sent", report.EmailsSent,
		"failed", report.EmailsFailed, "skipped", report.Skipped)
	return report, nil
}

func (n *Notifier) closingWatched(ctx context.Context, startupId string, now time.Time) ([]grantModel.Grant, error) {
	entries, err := n.watchlist.ListByStartup(ctx, startupId)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.GrantId)
	}
	grants, err := n.grants.ListByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	horizon := now.Add(config.DigestDeadlineHorizon)
	var closing []grantModel.Grant
	for _, g := range grants {
		if g.IsActive && g.Deadline != nil && !g.Deadline.Before(now) && g.Deadline.Before(horizon) {
			closing = append(closing, g)
		}
	}
	sort.Slice(closing, func(i, j int) bool { return closing[i].Deadline.Before(*closing[j].Deadline) })
	return closing, nil
}

func toGrantLines(grants []grantModel.Grant, appURL string) []grantLine {
	lines := make([]grantLine, 0, len(grants))
	for _, g := range grants {
		line := grantLine{Name: g.Name, Provider: g.Provider, Link: appURL + "/grants/" + g.Id}
		if g.Deadline != nil {
			line.Deadline = g.Deadline.Format("2 Jan 2006")
		}
		lines = append(lines, line)
	}
	return lines
}
