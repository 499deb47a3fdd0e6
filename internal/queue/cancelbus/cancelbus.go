// Package cancelbus carries landing cancellation requests from the API process
// to the process running the job.
package cancelbus

import (
	"context"

	"github.com/redis/go-redis/v9"

	appErr "github.com/listing-studio/engine/pkg/errors"
)

const channelPrefix = "landing:cancel:"

// Channel is the pub/sub channel for one landing.
func Channel(landingID string) string {
	return channelPrefix + landingID
}

// RedisSignal publishes and receives cancellations over Redis pub/sub.
// Delivery is best effort; jobs also poll the landing status.
type RedisSignal struct {
	rdb redis.UniversalClient
}

func NewRedisSignal(rdb redis.UniversalClient) *RedisSignal {
	return &RedisSignal{rdb: rdb}
}

func (s *RedisSignal) Publish(ctx context.Context, landingID string) error {
	if err := s.rdb.Publish(ctx, Channel(landingID), "cancel").Err(); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "publish cancel failed")
	}
	return nil
}

func (s *RedisSignal) Subscribe(ctx context.Context, landingID string) (<-chan struct{}, func(), error) {
	sub := s.rdb.Subscribe(ctx, Channel(landingID))
	// confirm the subscription before returning
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, appErr.Wrap(err, appErr.CodeUnavailable, "subscribe cancel failed")
	}

	out := make(chan struct{}, 1)
	msgs := sub.Channel()
	go func() {
		if _, ok := <-msgs; ok {
			out <- struct{}{}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}
