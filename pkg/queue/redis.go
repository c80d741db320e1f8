package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"FinEdge/pkg/logger"
)

const defaultKeyPrefix = "finedge:queue"

// Config tunes the consumer side of the queue.
type Config struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// RedisQueue is a list-backed task queue with a sorted-set retry schedule
// and a dead-letter list for tasks that exhaust their retries.
type RedisQueue struct {
	log       *logger.Logger
	cfg       Config
	client    *redis.Client
	keyPrefix string

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures RedisQueue.
type Option func(*RedisQueue)

// WithKeyPrefix overrides the redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(q *RedisQueue) {
		q.keyPrefix = prefix
	}
}

func NewRedisQueue(log *logger.Logger, cfg Config, client *redis.Client, opts ...Option) *RedisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &RedisQueue{
		log:       log,
		cfg:       cfg,
		client:    client,
		keyPrefix: defaultKeyPrefix,
		jobs:      make(map[string]Job),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Register adds a job handler. Registering the same name twice keeps the
// first handler.
func (q *RedisQueue) Register(jobs ...Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range jobs {
		if _, exists := q.jobs[job.Name()]; exists {
			q.log.Warn("job already registered", logger.String("job", job.Name()))
			continue
		}
		q.jobs[job.Name()] = job
		q.log.Info("job registered", logger.String("job", job.Name()))
	}
}

// Start pings redis and launches the worker pool and retry mover.
func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.Ping(ctx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.retryMover()

	q.log.Info("task queue started",
		logger.Int("workers", q.cfg.Workers),
		logger.String("prefix", q.keyPrefix))
	return nil
}

// Stop cancels the workers and waits for them up to ctx's deadline.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.log.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("queue shutdown: %w", ctx.Err())
	case <-done:
		q.log.Info("task queue stopped")
		return nil
	}
}

// Enqueue pushes a task for the named job. The payload is JSON-encoded.
func (q *RedisQueue) Enqueue(ctx context.Context, job string, payload interface{}) error {
	q.mu.RLock()
	running := q.running
	q.mu.RUnlock()
	if !running {
		return fmt.Errorf("queue not running")
	}

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		raw = b
	}

	task := Task{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Job:       job,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.client.LPush(ctx, q.tasksKey(), data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job, err)
	}
	return nil
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	q.log.Debug("queue worker started", logger.Int("worker", id))

	for {
		select {
		case <-q.ctx.Done():
			return
		default:
			q.popAndRun()
		}
	}
}

func (q *RedisQueue) popAndRun() {
	res, err := q.client.BRPop(q.ctx, time.Second, q.tasksKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return
		}
		q.log.Error("queue pop failed", logger.Error(err))
		time.Sleep(time.Second)
		return
	}
	if len(res) < 2 {
		return
	}

	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		q.log.Error("malformed task dropped", logger.Error(err))
		return
	}
	q.run(task)
}

func (q *RedisQueue) run(task Task) {
	q.mu.RLock()
	job, ok := q.jobs[task.Job]
	q.mu.RUnlock()
	if !ok {
		q.log.Error("no handler for task",
			logger.String("job", task.Job), logger.String("id", task.ID))
		return
	}

	start := time.Now()
	err := job.Handle(q.ctx, task.Payload)
	if err == nil {
		q.log.Debug("task done",
			logger.String("job", task.Job),
			logger.Duration("elapsed", time.Since(start)))
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	q.log.Error("task failed",
		logger.String("job", task.Job),
		logger.String("id", task.ID),
		logger.Int("attempt", task.Attempts+1),
		logger.Error(err))

	if task.Attempts < q.cfg.RetryLimit {
		task.Attempts++
		q.scheduleRetry(task, time.Now().Add(q.cfg.RetryDelay))
		return
	}
	q.deadLetter(task)
}

func (q *RedisQueue) scheduleRetry(task Task, at time.Time) {
	data, err := json.Marshal(task)
	if err != nil {
		q.log.Error("encode retry task", logger.Error(err))
		return
	}
	err = q.client.ZAdd(context.Background(), q.retryKey(), redis.Z{
		Score:  float64(at.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		q.log.Error("schedule retry failed", logger.Error(err))
	}
}

func (q *RedisQueue) deadLetter(task Task) {
	q.log.Error("task moved to dead letter",
		logger.String("job", task.Job), logger.String("id", task.ID))
	data, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := q.client.LPush(context.Background(), q.deadKey(), data).Err(); err != nil {
		q.log.Error("dead letter push failed", logger.Error(err))
	}
}

// retryMover requeues tasks whose retry time has passed.
func (q *RedisQueue) retryMover() {
	defer q.wg.Done()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.moveDueRetries()
		}
	}
}

func (q *RedisQueue) moveDueRetries() {
	due, err := q.client.ZRangeByScore(q.ctx, q.retryKey(), &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.log.Error("fetch due retries", logger.Error(err))
		return
	}

	for _, member := range due {
		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey(), member)
		pipe.LPush(q.ctx, q.tasksKey(), member)
		if _, err := pipe.Exec(q.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			q.log.Error("requeue retry failed", logger.Error(err))
		}
	}
}

func (q *RedisQueue) tasksKey() string { return q.keyPrefix + ":tasks" }
func (q *RedisQueue) retryKey() string { return q.keyPrefix + ":retry" }
func (q *RedisQueue) deadKey() string  { return q.keyPrefix + ":dead" }
