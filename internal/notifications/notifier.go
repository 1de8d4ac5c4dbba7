// Package notifications publishes content events over Redis pub/sub so that
// rendering nodes can drop stale pages.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"portfolio/internal/cache"

	"github.com/redis/go-redis/v9"
)

// RevalidateEvent names one page path that must be refetched.
type RevalidateEvent struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishRevalidate announces path on the revalidate channel. A nil client is a no-op.
func (n *Notifier) PublishRevalidate(ctx context.Context, path string) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(RevalidateEvent{Path: cache.NormalizePath(path), At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode revalidate event: %w", err)
	}
	return n.rdb.Publish(ctx, cache.RevalidateChannel, payload).Err()
}

// StartRevalidateSubscriber calls onEvent for every revalidate event until ctx is done.
// Malformed payloads are skipped.
func (n *Notifier) StartRevalidateSubscriber(ctx context.Context, onEvent func(RevalidateEvent)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, cache.RevalidateChannel)
	// Wait for the subscription to be confirmed so that no early publish is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", cache.RevalidateChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev RevalidateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("revalidate subscriber: dropping malformed payload: %v", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in revalidate subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
