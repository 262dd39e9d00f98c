// Package livequery provides continuously-updating query subscriptions on
// top of an in-process watermill pub/sub. Writers call Notify after a
// successful write; every open subscription on that topic re-runs its query
// and pushes a fresh snapshot. Consumers receive eventually-consistent,
// monotonically-advancing snapshots: intermediate states may be coalesced,
// the latest state is always delivered.
package livequery

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics for the change bus. One topic per logical collection; subscriptions
// filter further through their fetch query.
const (
	TopicLeaveRequests = "leave_requests.changed"
	TopicChatSessions  = "chat_sessions.changed"
	TopicChatMessages  = "chat_messages.changed"
)

// Bus is the in-process change-notice bus shared by repositories and
// subscriptions.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, logger),
		logger: logger,
	}
}

// Notify signals that the data behind topic changed. The notice carries no
// payload: subscribers always re-read through their own query, so a lost or
// coalesced notice can never deliver stale rows.
func (b *Bus) Notify(topic string) {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	if err := b.pubSub.Publish(topic, msg); err != nil {
		b.logger.Error("Failed to publish change notice", err, watermill.LogFields{"topic": topic})
	}
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// FetchFunc loads the current snapshot for a subscription.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Subscription is a live, non-terminating stream of query snapshots.
// C is closed only after Close is called (or the parent context ends).
type Subscription[T any] struct {
	C      <-chan []T
	cancel context.CancelFunc
}

// Close cancels the subscription. Pending snapshots are dropped.
func (s *Subscription[T]) Close() {
	s.cancel()
}

// Subscribe opens a live query: it fetches and pushes an initial snapshot,
// then re-fetches and pushes on every change notice for topic. A failed
// re-fetch skips that cycle; the next notice tries again.
func Subscribe[T any](ctx context.Context, bus *Bus, topic string, fetch FetchFunc[T]) (*Subscription[T], error) {
	ctx, cancel := context.WithCancel(ctx)

	notices, err := bus.pubSub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := fetch(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan []T, 1)
	go func() {
		defer close(out)

		push(out, initial)

		for notice := range notices {
			notice.Ack()

			snapshot, err := fetch(ctx)
			if err != nil {
				bus.logger.Error("Live query refetch failed, skipping cycle", err, watermill.LogFields{"topic": topic})
				continue
			}
			push(out, snapshot)
		}
	}()

	return &Subscription[T]{C: out, cancel: cancel}, nil
}

// push delivers a snapshot without blocking: if the consumer has not drained
// the previous one, it is replaced. Only the newest snapshot matters.
func push[T any](out chan []T, snapshot []T) {
	for {
		select {
		case out <- snapshot:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
