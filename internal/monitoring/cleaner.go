package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/anahisv/whisperbox-be/internal/services"
)

// Cleaner periodically removes unverified accounts whose verification code
// expired longer than the retention window ago. It is opt-in: without it,
// stale pending signups persist until the email is re-registered.
type Cleaner struct {
	accounts  services.AccountServiceProvider
	schedule  cron.Schedule
	retention time.Duration
	done      chan bool
}

// NewCleaner creates a cleaner from a standard cron expression.
func NewCleaner(accounts services.AccountServiceProvider, scheduleExpr string, retention time.Duration) (*Cleaner, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &Cleaner{
		accounts:  accounts,
		schedule:  schedule,
		retention: retention,
		done:      make(chan bool),
	}, nil
}

// Run starts the cleanup loop. It blocks until Stop is called.
func (c *Cleaner) Run() {
	log.Info().Dur("retention", c.retention).Msg("Starting stale-account cleaner")
	for {
		next := c.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-c.done:
			timer.Stop()
			log.Info().Msg("Stopping stale-account cleaner")
			return
		case <-timer.C:
			c.sweep()
		}
	}
}

// Stop halts the cleanup loop.
func (c *Cleaner) Stop() {
	c.done <- true
}

func (c *Cleaner) sweep() {
	cutoff := time.Now().Add(-c.retention)
	removed, err := c.accounts.DeleteStaleUnverified(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Stale-account sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Removed stale unverified accounts")
	}
}
