package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus shares the feed between lobby instances over Redis pub/sub, one
// channel per collection.
type RedisBus struct {
	client *redis.Client
	prefix string
}

func NewRedisBus(redisURL string) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisBusWithClient(client), nil
}

func NewRedisBusWithClient(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, prefix: "lobby:feed:"}
}

func (b *RedisBus) channel(collection string) string {
	return b.prefix + collection
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(ev.Collection), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Collection, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, collections ...string) (<-chan Event, error) {
	var ps *redis.PubSub
	if len(collections) == 0 {
		ps = b.client.PSubscribe(ctx, b.prefix+"*")
	} else {
		channels := make([]string, len(collections))
		for i, c := range collections {
			channels[i] = b.channel(c)
		}
		ps = b.client.Subscribe(ctx, channels...)
	}

	// Wait for the subscription confirmation so events published after
	// Subscribe returns are not missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, defaultBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("feed: dropping malformed event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
