package realtime

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus fans out messages through Redis pub/sub channels.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus builds a bus on top of an existing redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// Publish sends the payload to the channel. Subscribers on other processes
// receive it through their own subscriptions.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

// Subscribe streams channel messages until ctx ends. When the pub/sub
// connection breaks it resubscribes and emits a reset event, since anything
// published during the gap is gone.
func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan Event, error) {
	sub := b.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("realtime: subscription to %s dropped: %v, resubscribing", channel, err)
				_ = sub.Close()
				time.Sleep(time.Second)
				sub = b.client.Subscribe(ctx, channel)
				if _, err := sub.Receive(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				select {
				case out <- Event{Kind: KindReset}:
				case <-ctx.Done():
					return
				}
				continue
			}
			select {
			case out <- Event{Kind: KindMessage, Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
