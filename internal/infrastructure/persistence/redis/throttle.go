package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// Throttle 提供商调用节流器（滑动窗口）
// 多次批处理可能共享同一提供商额度，窗口计数放在 Redis 侧。
type Throttle struct {
	client *Client
}

// NewThrottle 创建节流器
func NewThrottle(client *Client) *Throttle {
	return &Throttle{client: client}
}

// Allow 检查窗口内是否还允许一次调用（滑动窗口算法）
func (t *Throttle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "throttle.Allow")
	span.SetAttributes(
		attribute.String("throttle.key", key),
		attribute.Int("throttle.limit", limit),
		attribute.Int64("throttle.window_ms", window.Milliseconds()),
	)
	defer span.End()

	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	pipe := t.client.rdb.Pipeline()

	// 移除窗口外的调用记录
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, key)

	_, err := pipe.Exec(ctx)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	count := countCmd.Val()
	span.SetAttributes(attribute.Int64("throttle.current_count", count))

	if count >= int64(limit) {
		span.SetAttributes(attribute.Bool("throttle.allowed", false))
		return false, nil
	}

	t.client.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d", now),
	})
	t.client.rdb.Expire(ctx, key, window*2)

	span.SetAttributes(attribute.Bool("throttle.allowed", true))
	return true, nil
}

// Wait 阻塞直到窗口允许一次调用或 ctx 取消
// 轮询间隔固定，不做指数退避。
func (t *Throttle) Wait(ctx context.Context, key string, limit int, window, interval time.Duration) error {
	for {
		ok, err := t.Allow(ctx, key, limit, window)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
