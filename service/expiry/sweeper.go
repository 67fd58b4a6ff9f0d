// Package expiry periodically expires submissions nobody decided on and
// purges terminal submissions once their retention elapsed.
package expiry

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/viant/sfxbot/internal/clock"
	"github.com/viant/sfxbot/model/submission"
	"github.com/viant/sfxbot/service/dao"
	dsubmission "github.com/viant/sfxbot/service/dao/submission"
)

// Expirer closes an expired submission
type Expirer interface {
	Expire(ctx context.Context, sub *submission.Submission)
}

// Config represents sweeper settings; zero TTL or Retention disables that step
type Config struct {
	TTL       time.Duration
	Retention time.Duration
	Interval  time.Duration
}

// Sweeper represents the expiry sweeper
type Sweeper struct {
	dao     dsubmission.Service
	expirer Expirer
	config  Config
}

// Sweep runs a single pass and returns number of expired and purged submissions
func (s *Sweeper) Sweep(ctx context.Context) (expired, purged int, err error) {
	all, err := s.dao.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	now := clock.Now()
	for _, sub := range all {
		switch {
		case sub.Status == submission.StatusPending:
			if s.config.TTL <= 0 || sub.IsClaimed() || now.Sub(sub.CreatedAt) < s.config.TTL {
				continue
			}
			closed, err := s.dao.Expire(ctx, sub.ID, now)
			if err != nil {
				if errors.Is(err, dao.ErrClaimed) || errors.Is(err, dao.ErrAlreadyDecided) || errors.Is(err, dao.ErrNotFound) {
					continue // decided or claimed in the meantime
				}
				return expired, purged, err
			}
			s.expirer.Expire(ctx, closed)
			expired++
		case sub.Status.IsTerminal():
			if s.config.Retention <= 0 || sub.DecidedAt == nil || now.Sub(*sub.DecidedAt) < s.config.Retention {
				continue
			}
			if err := s.dao.Delete(ctx, sub.ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
				return expired, purged, err
			}
			purged++
		}
	}
	return expired, purged, nil
}

// Run sweeps every interval until ctx is done
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			expired, purged, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("expiry: sweep failed: %v", err)
				continue
			}
			if expired+purged > 0 {
				log.Printf("expiry: expired %d, purged %d submissions", expired, purged)
			}
		}
	}
}

// New creates a sweeper
func New(dao dsubmission.Service, expirer Expirer, config Config) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &Sweeper{dao: dao, expirer: expirer, config: config}
}
