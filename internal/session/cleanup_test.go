package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCleanupService_StartStop(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour, nil)
	service := NewCleanupService(manager, CleanupConfig{CleanupInterval: time.Second}, zerolog.Nop())

	if service.IsRunning() {
		t.Error("Service should not be running initially")
	}

	service.Start(context.Background())
	if !service.IsRunning() {
		t.Error("Service should be running after start")
	}

	// Second start is a no-op
	service.Start(context.Background())

	service.Stop()
	if service.IsRunning() {
		t.Error("Service should not be running after stop")
	}

	// Second stop is a no-op
	service.Stop()

	// Can be restarted
	service.Start(context.Background())
	if !service.IsRunning() {
		t.Error("Service should be running after restart")
	}
	service.Stop()
}

func TestCleanupService_RunOnce(t *testing.T) {
	manager, store := newTestManager(t, time.Hour, nil)
	service := NewCleanupService(manager, CleanupConfig{CleanupInterval: time.Hour}, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		expired := newTestSession(NewID(), -time.Second)
		_ = store.Set(ctx, expired.ID, expired)
	}

	deleted, err := service.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted sessions, got %d", deleted)
	}
}

func TestCleanupService_PeriodicCleanup(t *testing.T) {
	manager, store := newTestManager(t, time.Hour, nil)
	service := NewCleanupService(manager, CleanupConfig{CleanupInterval: 10 * time.Millisecond}, zerolog.Nop())

	ctx := context.Background()
	expired := newTestSession(NewID(), -time.Second)
	_ = store.Set(ctx, expired.ID, expired)

	service.Start(ctx)
	defer service.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if count, _ := store.Count(ctx); count == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expired session was not removed by the background loop")
}

func TestCleanupService_StopsOnContextCancel(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour, nil)
	service := NewCleanupService(manager, CleanupConfig{CleanupInterval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	service.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		service.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
