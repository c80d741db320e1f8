package scheduler

import (
	"context"
	"sync"
	"time"

	"FinEdge/internal/jobs"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
	"FinEdge/pkg/queue"
)

// Scheduler enqueues the recurring refresh and retrain sweeps. The work
// itself runs on the queue workers so a slow sweep never skews the cadence.
type Scheduler struct {
	cfg   config.SchedulerConfig
	tasks queue.Publisher
	log   *logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func New(cfg config.SchedulerConfig, tasks queue.Publisher, log *logger.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, tasks: tasks, log: log}
}

// Start launches the tickers and fires an initial refresh so a fresh
// deployment has signals before the first interval elapses.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running || !s.cfg.Enabled {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.enqueue(jobs.RefreshJobName)

	s.wg.Add(2)
	go s.loop(s.cfg.RefreshEvery, jobs.RefreshJobName)
	go s.loop(s.cfg.RetrainEvery, jobs.RetrainJobName)

	s.log.Info("scheduler started",
		logger.Duration("refresh_every", s.cfg.RefreshEvery),
		logger.Duration("retrain_every", s.cfg.RetrainEvery))
}

// Stop halts the tickers. Tasks already enqueued keep running on the
// queue workers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(every time.Duration, job string) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.enqueue(job)
		}
	}
}

func (s *Scheduler) enqueue(job string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.tasks.Enqueue(ctx, job, nil); err != nil {
		s.log.Error("enqueue failed", logger.String("job", job), logger.Error(err))
		return
	}
	s.log.Debug("job enqueued", logger.String("job", job))
}
