package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitRunsTask(t *testing.T) {
	p := New(2, 16, nil)
	defer p.Close()

	done := make(chan struct{})
	if !p.Submit(func(ctx context.Context) { close(done) }) {
		t.Fatal("Submit returned false")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	p := New(1, 64, nil)

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		if !p.Submit(func(ctx context.Context) { ran.Add(1) }) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	p.Close()

	if got := ran.Load(); got != 50 {
		t.Errorf("after Close, %d tasks ran, want 50", got)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1, 4, nil)
	p.Close()

	if p.Submit(func(ctx context.Context) {}) {
		t.Error("Submit after Close returned true")
	}
	// Closing twice is safe.
	p.Close()
}

func TestSubmitNilTask(t *testing.T) {
	p := New(1, 4, nil)
	defer p.Close()

	if p.Submit(nil) {
		t.Error("Submit(nil) returned true")
	}
}

func TestFullQueueDropsTask(t *testing.T) {
	p := New(1, 1, nil)
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func(ctx context.Context) {
		close(started)
		<-release
	})
	<-started

	// The single worker is blocked; one task fits in the queue, the next
	// must be dropped.
	if !p.Submit(func(ctx context.Context) {}) {
		t.Fatal("queue-filling submit rejected")
	}
	if p.Submit(func(ctx context.Context) {}) {
		t.Error("submit into a full queue returned true")
	}
	close(release)
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	p := New(1, 4, nil)
	defer p.Close()

	p.Submit(func(ctx context.Context) { panic("boom") })

	done := make(chan struct{})
	p.Submit(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}
