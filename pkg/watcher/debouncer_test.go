package watcher

import (
	"context"
	"testing"
	"time"
)

func TestDebouncerBatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A burst of three events inside the quiet period
	for _, path := range []string{"a.lua.unluac", "b.lua.unluac", "c.lua.unluac"} {
		input <- ChangeEvent{Paths: []string{path}, Timestamp: time.Now()}
	}

	select {
	case event := <-d.Output():
		if len(event.Paths) != 3 {
			t.Errorf("expected one batch of 3 paths, got %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced batch")
	}

	// No further output without further input
	select {
	case event := <-d.Output():
		t.Errorf("unexpected extra batch: %v", event.Paths)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Paths: []string{"x.lua"}, Timestamp: time.Now()}

	// Give the debouncer time to accumulate, then close the input;
	// pending events must flush rather than vanish
	time.Sleep(20 * time.Millisecond)
	close(input)

	select {
	case event, ok := <-d.Output():
		if !ok {
			t.Fatal("output closed before flushing pending events")
		}
		if len(event.Paths) != 1 || event.Paths[0] != "x.lua" {
			t.Errorf("unexpected flush contents: %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for flush on close")
	}
}
