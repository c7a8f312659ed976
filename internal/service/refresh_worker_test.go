package service

import (
	"context"
	"testing"
	"time"
)

func TestRefreshWorker_DispatchDropsWhenFull(t *testing.T) {
	w := NewRefreshWorker(&mockRefresher{}, RefreshConfig{Workers: 1, QueueSize: 1}, testLogger())

	if !w.Dispatch(context.Background(), "u1") {
		t.Fatal("Expected the first job to be queued")
	}
	if w.Dispatch(context.Background(), "u2") {
		t.Error("Expected the second job to be dropped")
	}
}

func TestRefreshWorker_ProcessesJobs(t *testing.T) {
	refresher := &mockRefresher{done: make(chan string, 4)}
	w := NewRefreshWorker(refresher, RefreshConfig{Workers: 2, QueueSize: 4, Timeout: time.Second}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- w.Run(ctx) }()

	for _, id := range []string{"u1", "u2", "u3"} {
		if !w.Dispatch(context.Background(), id) {
			t.Fatalf("Expected %s to be queued", id)
		}
	}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-refresher.done:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for refresh")
		}
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 distinct refreshes, got %v", seen)
	}

	cancel()
	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop")
	}
}

func TestRefreshWorker_FailureIsNotRetried(t *testing.T) {
	refresher := &mockRefresher{err: errSourceDown, done: make(chan string, 2)}
	w := NewRefreshWorker(refresher, RefreshConfig{Workers: 1, QueueSize: 2, Timeout: time.Second}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	w.Dispatch(context.Background(), "u1")
	<-refresher.done

	select {
	case id := <-refresher.done:
		t.Errorf("Expected no retry, got a second refresh for %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshWorker_WiredToAnalyticsService(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 91)

	w := NewRefreshWorker(f.svc, RefreshConfig{Workers: 1, QueueSize: 1}, testLogger())
	activities := NewActivityService(f.activities, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if _, err := activities.RecordActivity(context.Background(), "u1", validActivityRequest()); err != nil {
		t.Fatalf("RecordActivity failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.activities.calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the ingestion to trigger a metrics refresh")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
