package bootstrap

import (
	"FitTrack/internal/config"
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Development mode switches to
// the console encoder and debug level.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", "fittrack"))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}
