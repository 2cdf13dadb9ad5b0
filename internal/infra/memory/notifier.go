package memory

import (
	"context"
	"sync"
)

// Notifier is an in-process change feed for single-instance deployments.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subscribers: make(map[chan struct{}]struct{})}
}

func (n *Notifier) NotifyChanged(_ context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// subscriber already has a pending signal; one is enough
		}
	}
}

func (n *Notifier) Subscribe(_ context.Context, fn func()) (func(), error) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subscribers[ch] = struct{}{}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, ch)
			n.mu.Unlock()
			close(done)
		})
	}
	return cancel, nil
}
