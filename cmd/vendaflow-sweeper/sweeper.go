package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vendaflow/vendaflow/pkg/engine"
)

// Sweeper runs Engine.SweepDue on a cron schedule. Several sweeper
// processes can run concurrently; continuation consumption is atomic, so a
// due continuation resumes exactly once.
type Sweeper struct {
	engine   *engine.Engine
	schedule string
	logger   *slog.Logger
}

func NewSweeper(eng *engine.Engine, schedule string, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		engine:   eng,
		schedule: schedule,
		logger:   logger,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := cron.New()

	_, err := scheduler.AddFunc(s.schedule, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	s.logger.InfoContext(ctx, "Sweeper started", "schedule", s.schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		s.logger.InfoContext(ctx, "Shutting down sweeper")
	case <-ctx.Done():
	}

	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	started := time.Now()

	err := s.engine.SweepDue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Sweep failed", "error", err)

		return
	}

	s.logger.DebugContext(ctx, "Sweep finished", "duration", time.Since(started))
}
