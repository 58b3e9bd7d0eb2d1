package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/vendaflow/vendaflow/pkg/cmd"
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/log"
	"github.com/vendaflow/vendaflow/pkg/otelhelper"
)

func main() {
	command := &cli.Command{
		Name:                  "vendaflow-sweeper",
		EnableShellCompletion: true,
		Usage:                 "Resume automations whose wait deadline has passed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus type (kafka, memory)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the per-deal lock (in-process lock if empty)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for the sweep (5-field)",
				Value:   "* * * * *",
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("vendaflow-sweeper")

			logger.InfoContext(ctx, "Initializing Vendaflow Sweeper")

			if _, err := otelhelper.NewTracer(ctx, "vendaflow-sweeper"); err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), "sweeper", logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			// The standalone sweeper has no CRM backend of its own.
			store := crm.NewMemoryStore()
			logger.WarnContext(ctx, "Running with an empty in-memory CRM store: entity lookups will miss and resumed actions will skip. Embed the engine with a real store for production use.")

			locker := cmd.NewDealLocker(command.String("redis-url"))
			eng := cmd.NewEngine(logger, store, persistence, locker, eventBus)

			sweeper := NewSweeper(eng, command.String("schedule"), logger)

			return sweeper.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
