package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akolanti/GrantAgent/internal/config"
	"github.com/akolanti/GrantAgent/internal/container"
	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an optional .env file",
		Value: ".env",
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "grantctl",
		Usage: "run grant agent maintenance jobs from the command line",
		Commands: []*cli.Command{
			{
				Name:   "reminders",
				Usage:  "send deadline reminders for watched grants",
				Flags:  []cli.Flag{envFlag()},
				Action: withContainer(out, func(ctx context.Context, c *container.Container, _ *cli.Command) (any, error) {
					return c.Notifier.DeadlineReminders(ctx, time.Now())
				}),
			},
			{
				Name:   "digest",
				Usage:  "send the weekly grant digest",
				Flags:  []cli.Flag{envFlag()},
				Action: withContainer(out, func(ctx context.Context, c *container.Container, _ *cli.Command) (any, error) {
					return c.Notifier.WeeklyDigest(ctx, time.Now())
				}),
			},
			{
				Name:   "scrape",
				Usage:  "scrape the configured grant sources and upsert what they list",
				Flags:  []cli.Flag{envFlag()},
				Action: withContainer(out, func(ctx context.Context, c *container.Container, _ *cli.Command) (any, error) {
					return c.Scraper.Run(ctx)
				}),
			},
			{
				Name:  "reprocess",
				Usage: "re-run ingestion for a failed or stuck document",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:     "startup",
						Usage:    "owning startup id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "document",
						Usage:    "document id",
						Required: true,
					},
				},
				Action: withContainer(out, func(ctx context.Context, c *container.Container, cmd *cli.Command) (any, error) {
					return c.Documents.Retry(ctx, cmd.String("startup"), cmd.String("document"))
				}),
			},
		},
	}
}

type jobAction func(ctx context.Context, c *container.Container, cmd *cli.Command) (any, error)

// withContainer builds the components from configuration, runs fn and prints its report as JSON.
func withContainer(out io.Writer, fn jobAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		settings, err := config.Load(cmd.String("env"))
		if err != nil {
			return err
		}
		// reprocessing from the CLI has no worker pool to drain a queue
		settings.ProcessingMode = "inline"
		logger_i.Init(settings.IsProd)

		c, err := container.Build(ctx, settings)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		defer c.Close()

		report, err := fn(ctx, c, cmd)
		if err != nil {
			return fmt.Errorf("%s failed: %w", cmd.Name, err)
		}
		return printJSON(out, report)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
