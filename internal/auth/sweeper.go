package auth

import (
	"FitTrack/internal/config"
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ExpiredCodePurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CodeSweeper periodically deletes one-time codes that expired unused.
type CodeSweeper struct {
	codes    ExpiredCodePurger
	interval time.Duration
	logger   *zap.Logger
}

func NewCodeSweeper(codes ExpiredCodePurger, cfg *config.Config, logger *zap.Logger) *CodeSweeper {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CodeSweeper{codes: codes, interval: interval, logger: logger.Named("sweeper")}
}

// Start ties the sweep loop to the application lifecycle.
func (s *CodeSweeper) Start(lc fx.Lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.logger.Info("starting expired code sweeper", zap.Duration("interval", s.interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(s.interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						s.Sweep(ctx)
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			s.logger.Info("stopping expired code sweeper")
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func (s *CodeSweeper) Sweep(ctx context.Context) {
	deleted, err := s.codes.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("expired code sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Debug("expired codes deleted", zap.Int64("count", deleted))
	}
}
