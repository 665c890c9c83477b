package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-advisor/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher re-fetches forecasts for the tracked locations.
type Refresher interface {
	RefreshLocations(ctx context.Context, extra []string) error
}

type Scheduler struct {
	refresher Refresher
	logger    *zap.Logger
	locations []string
	spec      string
	timeout   time.Duration
	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastErr   error
	runs      int
}

func NewScheduler(refresher Refresher, spec string, locations []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		logger:    logger,
		locations: locations,
		spec:      spec,
		timeout:   60 * time.Second,
		// Prevent overlapping runs
		cron: cron.New(
			cron.WithParser(config.ScheduleParser()),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Start registers the refresh job, runs it once immediately and starts cron.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, s.runRefresh)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = id
	s.running = true
	s.mu.Unlock()

	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", s.cron.Entry(id).Next))

	go s.runRefresh()
	return nil
}

func (s *Scheduler) runRefresh() {
	startTime := time.Now()
	s.logger.Info("Starting scheduled forecast refresh",
		zap.Time("start_time", startTime),
		zap.Strings("extra_locations", s.currentLocations()))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.refresher.RefreshLocations(ctx, s.currentLocations())

	s.mu.Lock()
	s.lastRun = startTime
	s.lastErr = err
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled forecast refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Scheduled forecast refresh completed",
		zap.Duration("duration", time.Since(startTime)))
}

// Stop halts scheduling and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering forecast refresh")
	go s.runRefresh()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":   s.running,
		"schedule":  s.spec,
		"last_run":  s.lastRun,
		"runs":      s.runs,
		"locations": s.locations,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

func (s *Scheduler) UpdateLocations(locations []string) {
	s.mu.Lock()
	s.locations = locations
	s.mu.Unlock()

	s.logger.Info("Scheduler locations updated", zap.Strings("locations", locations))
}

func (s *Scheduler) currentLocations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locations...)
}
