// Package worker runs the background jobs for the People Registry:
// persisting audit events from Pub/Sub and sweeping expired deletion
// confirmation tokens.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/deletion"
)

// DefaultSweepInterval controls how often expired tokens are removed.
// Tokens are also checked at read time, so the sweep only bounds table
// growth; it does not affect correctness.
const DefaultSweepInterval = 5 * time.Minute

// SweepResult summarizes a single sweep run.
type SweepResult struct {
	Removed  int
	Duration time.Duration
	Err      error
}

// SweepJob periodically removes expired deletion confirmation tokens.
type SweepJob struct {
	tokens   deletion.TokenStore
	interval time.Duration
	logger   zerolog.Logger
}

// SweepJobConfig holds configuration for the sweep job.
type SweepJobConfig struct {
	Tokens   deletion.TokenStore
	Interval time.Duration
	Logger   zerolog.Logger
}

// NewSweepJob creates a new sweep job.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SweepJob{
		tokens:   cfg.Tokens,
		interval: interval,
		logger:   cfg.Logger,
	}
}

// Run executes a single sweep.
func (j *SweepJob) Run(ctx context.Context) SweepResult {
	start := time.Now()

	removed, err := j.tokens.SweepExpired(ctx)
	result := SweepResult{
		Removed:  removed,
		Duration: time.Since(start),
		Err:      err,
	}

	if err != nil {
		j.logger.Error().Err(err).Msg("token sweep failed")
		return result
	}

	if removed > 0 {
		j.logger.Info().
			Int("removed", removed).
			Dur("duration", result.Duration).
			Msg("swept expired deletion tokens")
	} else {
		j.logger.Debug().Dur("duration", result.Duration).Msg("token sweep found nothing to remove")
	}

	return result
}

// Start runs the sweep on a ticker until the context is cancelled.
func (j *SweepJob) Start(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("starting token sweeper")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("token sweeper stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}
