package updater

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler repeats update checks on a cron schedule and keeps the last
// result.
type Scheduler struct {
	checker  *Checker
	cron     *cron.Cron
	onUpdate func(UpdateInfo)

	mu   sync.RWMutex
	last *UpdateInfo
}

// NewScheduler registers a check for spec, e.g. "@every 6h" or "0 9 * * *".
// onUpdate, when set, is called whenever a check finds a newer release.
func NewScheduler(checker *Checker, spec string, onUpdate func(UpdateInfo)) (*Scheduler, error) {
	s := &Scheduler{
		checker:  checker,
		cron:     cron.New(),
		onUpdate: onUpdate,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid update schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run performs one check immediately, then follows the schedule until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.run()
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Last returns the most recent successful check, if any
func (s *Scheduler) Last() (UpdateInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return UpdateInfo{}, false
	}
	return *s.last, true
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	info, err := s.checker.Check(ctx)
	if err != nil {
		s.checker.logger.Warn("Update check failed", "error", err)
		return
	}

	s.mu.Lock()
	s.last = &info
	s.mu.Unlock()

	if info.Available {
		s.checker.logger.Info("Update available", "current", info.CurrentVersion, "latest", info.LatestVersion, "url", info.DownloadURL)
		if s.onUpdate != nil {
			s.onUpdate(info)
		}
	}
}
