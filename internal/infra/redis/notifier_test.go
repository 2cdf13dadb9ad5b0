package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNotifierDeliversChanges(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	notifier := NewNotifier(newClient(mr))

	fired := make(chan struct{}, 4)
	cancel, err := notifier.Subscribe(context.Background(), func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	notifier.NotifyChanged(context.Background())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}
}

func TestNotifierCancelStopsDelivery(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	notifier := NewNotifier(newClient(mr))

	fired := make(chan struct{}, 4)
	cancel, err := notifier.Subscribe(context.Background(), func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()
	cancel() // idempotent

	notifier.NotifyChanged(context.Background())

	select {
	case <-fired:
		t.Fatalf("notification delivered after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}
