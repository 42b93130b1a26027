package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)

func TestAllowWithinLimit(t *testing.T) {
	l := New(Config{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		ok, remaining, retry := l.Allow("1.2.3.4", base.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("call %d denied, want allowed", i+1)
		}
		if remaining != 3-i-1 {
			t.Errorf("call %d remaining = %d, want %d", i+1, remaining, 3-i-1)
		}
		if retry != 0 {
			t.Errorf("call %d retryAfter = %d, want 0", i+1, retry)
		}
	}
}

func TestDeniesOverLimit(t *testing.T) {
	l := New(Config{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		l.Allow("1.2.3.4", base)
	}

	ok, remaining, retry := l.Allow("1.2.3.4", base.Add(time.Second))
	if ok {
		t.Fatal("4th call in window allowed, want denied")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if retry < 1 {
		t.Errorf("retryAfter = %d, want >= 1", retry)
	}
}

func TestWindowRollover(t *testing.T) {
	l := New(Config{Limit: 2, Window: time.Minute})

	l.Allow("k", base)
	l.Allow("k", base)
	if ok, _, _ := l.Allow("k", base); ok {
		t.Fatal("3rd call in window allowed, want denied")
	}

	// Immediately after the window elapses the count resets to 1.
	ok, remaining, _ := l.Allow("k", base.Add(time.Minute+time.Nanosecond))
	if !ok {
		t.Fatal("first call after window elapsed denied, want allowed")
	}
	if remaining != 1 {
		t.Errorf("remaining after reset = %d, want 1", remaining)
	}
}

func TestDeniedRequestsStillCount(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute})

	l.Allow("k", base)
	// Hammering inside the window keeps getting denied but does not
	// push the recovery moment: the window start is fixed.
	for i := 1; i <= 30; i++ {
		if ok, _, _ := l.Allow("k", base.Add(time.Duration(i)*time.Second)); ok {
			t.Fatalf("call at +%ds allowed, want denied", i)
		}
	}

	if ok, _, _ := l.Allow("k", base.Add(time.Minute+time.Second)); !ok {
		t.Fatal("call after window elapsed denied, want allowed")
	}
}

func TestRetryAfterReflectsWindowRemainder(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute})

	l.Allow("k", base)
	_, _, retry := l.Allow("k", base.Add(20*time.Second))
	if retry != 40 {
		t.Errorf("retryAfter = %d, want 40", retry)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute})

	if ok, _, _ := l.Allow("a", base); !ok {
		t.Fatal("first call for key a denied")
	}
	if ok, _, _ := l.Allow("a", base); ok {
		t.Fatal("second call for key a allowed, want denied")
	}
	if ok, _, _ := l.Allow("b", base); !ok {
		t.Fatal("first call for key b denied, keys must not share buckets")
	}
}

func TestSweepEvictsIdleBuckets(t *testing.T) {
	l := New(Config{Limit: 5, Window: time.Minute, IdleTTL: 10 * time.Minute})

	l.Allow("stale", base)
	l.Allow("fresh", base.Add(9*time.Minute))

	evicted := l.Sweep(base.Add(11 * time.Minute))
	if evicted != 1 {
		t.Errorf("Sweep() evicted %d buckets, want 1", evicted)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d after sweep, want 1", l.Len())
	}
}

func TestSweepDoesNotChangeLiveWindow(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute, IdleTTL: 10 * time.Minute})

	l.Allow("k", base)
	l.Sweep(base.Add(time.Second))

	if ok, _, _ := l.Allow("k", base.Add(2*time.Second)); ok {
		t.Fatal("call inside live window allowed after sweep, want still denied")
	}
}

func TestShortIdleTTLCannotEvictLiveWindow(t *testing.T) {
	// IdleTTL below the window is clamped up to it; otherwise a sweep could
	// drop a denied key mid-window and hand it a fresh count early.
	l := New(Config{Limit: 2, Window: 10 * time.Minute, IdleTTL: time.Minute})

	l.Allow("k", base)
	l.Allow("k", base)
	if ok, _, _ := l.Allow("k", base); ok {
		t.Fatal("third call allowed, want denied")
	}

	if evicted := l.Sweep(base.Add(3 * time.Minute)); evicted != 0 {
		t.Errorf("Sweep() evicted %d buckets inside a live window, want 0", evicted)
	}
	if ok, _, _ := l.Allow("k", base.Add(3*time.Minute)); ok {
		t.Fatal("denied key recovered before its window elapsed")
	}
}

func TestConcurrentAllow(t *testing.T) {
	const calls = 100
	l := New(Config{Limit: calls, Window: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := l.Allow("k", base); !ok {
				t.Error("call within limit denied under concurrency")
			}
		}()
	}
	wg.Wait()

	if ok, _, _ := l.Allow("k", base); ok {
		t.Errorf("call %d allowed, want denied after limit consumed", calls+1)
	}
}

func TestMaxEntriesTriggersSweep(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute, MaxEntries: 10, IdleTTL: time.Minute})

	for i := 0; i < 10; i++ {
		l.Allow(fmt.Sprintf("key-%d", i), base)
	}

	// The table is full of idle entries; the next call sweeps before inserting.
	l.Allow("late", base.Add(2*time.Minute))
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after opportunistic sweep", l.Len())
	}
}
