package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"farmers-connect/internal/common/config"
	"farmers-connect/internal/common/logger"
)

// RedisSink appends events to a capped Redis stream so failures from many
// clients can be inspected in one place.
type RedisSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
	logger logger.Logger
	newID  func() string
}

// NewRedisClient builds the client used by the sink.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     2,
	})
}

func NewRedisSink(client redis.Cmdable, stream string, maxLen int64, log logger.Logger) *RedisSink {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RedisSink{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: log,
		newID:  uuid.NewString,
	}
}

func (s *RedisSink) Report(ctx context.Context, source string, err error) {
	if err == nil {
		return
	}
	event := NewEvent(s.newID(), source, err)

	if xerr := s.client.XAdd(ctx, s.xaddArgs(event)).Err(); xerr != nil {
		s.logger.Warn("Failed to publish diagnostic event", map[string]interface{}{
			"stream":  s.stream,
			"eventId": event.ID,
			"code":    event.Code,
			"error":   xerr.Error(),
		})
	}
}

func (s *RedisSink) xaddArgs(event Event) *redis.XAddArgs {
	metadata := "{}"
	if len(event.Metadata) > 0 {
		if b, err := json.Marshal(event.Metadata); err == nil {
			metadata = string(b)
		}
	}
	// ordered slice keeps the command arguments deterministic
	return &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: []interface{}{
			"id", event.ID,
			"source", event.Source,
			"code", event.Code,
			"category", event.Category,
			"message", event.Message,
			"details", event.Details,
			"metadata", metadata,
			"timestamp", event.Timestamp.Format(time.RFC3339Nano),
		},
	}
}

// Ping checks connectivity so a misconfigured stream is noticed at startup.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
