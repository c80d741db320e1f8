package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"FinEdge/internal/domain/models"
	applogger "FinEdge/pkg/logger"
)

const sentimentKeyPrefix = "finedge:sentiment:"

// RedisSentimentCache keeps the latest sentiment reading per symbol with a
// TTL, so stale news never resurfaces on the dashboard.
type RedisSentimentCache struct {
	rdb *redis.Client
	ttl time.Duration
	l   *applogger.Logger
}

func NewRedisSentimentCache(rdb *redis.Client, ttl time.Duration) *RedisSentimentCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSentimentCache{rdb: rdb, ttl: ttl}
}

// SetLogger injects a structured logger.
func (c *RedisSentimentCache) SetLogger(l *applogger.Logger) { c.l = l }

func key(symbol string) string {
	return sentimentKeyPrefix + strings.ToUpper(symbol)
}

func (c *RedisSentimentCache) SaveReading(ctx context.Context, r models.SentimentReading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal sentiment reading: %w", err)
	}
	if err := c.rdb.Set(ctx, key(r.Symbol), data, c.ttl).Err(); err != nil {
		if c.l != nil {
			c.l.Error("redis save_reading error",
				applogger.String("symbol", r.Symbol), applogger.Error(err))
		}
		return fmt.Errorf("save sentiment reading: %w", err)
	}
	return nil
}

func (c *RedisSentimentCache) LatestReading(ctx context.Context, symbol string) (*models.SentimentReading, error) {
	data, err := c.rdb.Get(ctx, key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sentiment reading: %w", err)
	}
	var r models.SentimentReading
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal sentiment reading: %w", err)
	}
	return &r, nil
}
