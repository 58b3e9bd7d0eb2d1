package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/vendaflow/vendaflow/pkg/cmd"
	"github.com/vendaflow/vendaflow/pkg/crm"
	"github.com/vendaflow/vendaflow/pkg/log"
	"github.com/vendaflow/vendaflow/pkg/otelhelper"
)

func main() {
	command := &cli.Command{
		Name:                  "vendaflow-worker",
		EnableShellCompletion: true,
		Usage:                 "Consume CRM events and run automations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
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
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("vendaflow-worker").With("workerId", workerID)

			logger.InfoContext(ctx, "Initializing Vendaflow Worker")

			if _, err := otelhelper.NewTracer(ctx, "vendaflow-worker"); err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), "worker", logger)
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

			// The hosted deployment embeds the engine next to its own CRM
			// store; the standalone worker runs against the in-memory one.
			store := crm.NewMemoryStore()
			logger.WarnContext(ctx, "Running with an empty in-memory CRM store: entity lookups will miss and actions will skip. Embed the engine with a real store for production use.")
			locker := cmd.NewDealLocker(command.String("redis-url"))
			eng := cmd.NewEngine(logger, store, persistence, locker, eventBus)

			worker := NewWorker(workerID, eng, eventBus, logger)

			err := worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
