package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinEdge/internal/jobs"
	"FinEdge/pkg/config"
	"FinEdge/pkg/logger"
)

type capturePublisher struct {
	mu   sync.Mutex
	jobs []string
}

func (p *capturePublisher) Enqueue(_ context.Context, job string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *capturePublisher) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.jobs...)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestSchedulerFiresInitialRefresh(t *testing.T) {
	pub := &capturePublisher{}
	s := New(config.SchedulerConfig{
		Enabled:      true,
		RefreshEvery: time.Hour,
		RetrainEvery: time.Hour,
	}, pub, testLogger(t))

	s.Start()
	defer s.Stop()

	require.True(t, s.Running())
	got := pub.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, jobs.RefreshJobName, got[0])
}

func TestSchedulerTicks(t *testing.T) {
	pub := &capturePublisher{}
	s := New(config.SchedulerConfig{
		Enabled:      true,
		RefreshEvery: 20 * time.Millisecond,
		RetrainEvery: time.Hour,
	}, pub, testLogger(t))

	s.Start()
	time.Sleep(70 * time.Millisecond)
	s.Stop()

	refreshes := 0
	for _, j := range pub.snapshot() {
		if j == jobs.RefreshJobName {
			refreshes++
		}
	}
	// initial fire plus at least two ticks
	assert.GreaterOrEqual(t, refreshes, 3)
	assert.False(t, s.Running())
}

func TestSchedulerDisabled(t *testing.T) {
	pub := &capturePublisher{}
	s := New(config.SchedulerConfig{Enabled: false}, pub, testLogger(t))

	s.Start()
	assert.False(t, s.Running())
	assert.Empty(t, pub.snapshot())
	s.Stop()
}

func TestSchedulerStartTwice(t *testing.T) {
	pub := &capturePublisher{}
	s := New(config.SchedulerConfig{
		Enabled:      true,
		RefreshEvery: time.Hour,
		RetrainEvery: time.Hour,
	}, pub, testLogger(t))

	s.Start()
	s.Start()
	defer s.Stop()

	assert.Len(t, pub.snapshot(), 1)
}
