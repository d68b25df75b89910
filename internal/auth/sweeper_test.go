package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) DeleteExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 2, p.err
}

func TestCodeSweeper_RunsUntilStopped(t *testing.T) {
	t.Parallel()
	purger := &countingPurger{}
	cfg := testConfig()
	cfg.SweepInterval = 10 * time.Millisecond
	sweeper := NewCodeSweeper(purger, cfg, zap.NewNop())

	lc := fxtest.NewLifecycle(t)
	sweeper.Start(lc)
	lc.RequireStart()

	require.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	lc.RequireStop()
	stopped := purger.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, purger.calls.Load())
}

func TestCodeSweeper_SweepSurvivesErrors(t *testing.T) {
	t.Parallel()
	purger := &countingPurger{err: errBoom}
	sweeper := NewCodeSweeper(purger, testConfig(), zap.NewNop())

	sweeper.Sweep(context.Background())
	sweeper.Sweep(context.Background())
	assert.EqualValues(t, 2, purger.calls.Load())
}

func TestNewCodeSweeper_DefaultInterval(t *testing.T) {
	t.Parallel()
	sweeper := NewCodeSweeper(&countingPurger{}, testConfig(), zap.NewNop())
	assert.Equal(t, 5*time.Minute, sweeper.interval)
}
