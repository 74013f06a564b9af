package client

import (
	"testing"
	"time"
)

func TestDebouncer_LatestOnly(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(clock, 2*time.Second)

	var calls []string
	d.Trigger(func() { calls = append(calls, "first") })
	clock.Advance(500 * time.Millisecond)
	d.Trigger(func() { calls = append(calls, "second") })
	clock.Advance(500 * time.Millisecond)
	d.Trigger(func() { calls = append(calls, "third") })

	clock.Advance(1999 * time.Millisecond)
	if len(calls) != 0 {
		t.Fatalf("fired early: %v", calls)
	}
	clock.Advance(time.Millisecond)
	if len(calls) != 1 || calls[0] != "third" {
		t.Fatalf("calls = %v", calls)
	}
	if d.Pending() {
		t.Error("still pending after firing")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(clock, time.Second)

	fired := false
	d.Trigger(func() { fired = true })
	if !d.Cancel() {
		t.Fatal("Cancel should report a pending call")
	}
	clock.Advance(time.Minute)
	if fired {
		t.Fatal("cancelled call fired")
	}
	if d.Cancel() {
		t.Error("second Cancel reported a pending call")
	}
}
