package user

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"lms-backend/internal/logger"
)

// StartResetSweepJob schedules the expired-reset cleanup on spec and runs it
// until ctx is done.
func (s *Service) StartResetSweepJob(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.sweepExpiredResets(ctx) }); err != nil {
		return fmt.Errorf("invalid reset sweep schedule %q: %w", spec, err)
	}

	logger.Info("Reset sweep job started", zap.String("schedule", spec))

	s.sweepExpiredResets(ctx)
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info("Reset sweep job stopped")
	}()

	return nil
}

func (s *Service) sweepExpiredResets(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}

	cleared, err := s.userRepo.ClearExpiredResets(ctx, s.resets.Now())
	if err != nil {
		logger.Error("Failed to clear expired password resets", zap.Error(err))
		return 0
	}

	if cleared > 0 {
		logger.Info("Expired password resets cleared",
			zap.Int64("count", cleared),
			zap.String("event", "password_reset_swept"),
		)
	}
	return cleared
}
