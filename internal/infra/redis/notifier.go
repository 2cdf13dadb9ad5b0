package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const changeChannel = "quiz:results:changed"

// Notifier broadcasts result-table changes over Redis pub/sub. Subscribers
// only learn that "something changed"; they re-query the sink for truth.
// Delivery is at-least-once and unordered relative to the triggering write.
type Notifier struct {
	client *redis.Client
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// NotifyChanged publishes a change marker. Best-effort: a missed notification
// only delays a leaderboard refresh until the next manual one.
func (n *Notifier) NotifyChanged(ctx context.Context) {
	_ = n.client.Publish(ctx, changeChannel, "1").Err()
}

// Subscribe invokes fn for every published change until the returned cancel
// function is called.
func (n *Notifier) Subscribe(ctx context.Context, fn func()) (func(), error) {
	sub := n.client.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	messages := sub.Channel()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-messages:
				if !ok {
					return
				}
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return cancel, nil
}
