// Package ratelimit implements a per-key fixed-window request counter.
//
// Windows are discrete and non-overlapping: the first request from a key
// opens a window, every request inside it increments the count, and the
// count resets only once the window has fully elapsed. Denied requests
// still increment the counter, so a client hammering the endpoint does not
// recover until a full quiet window passes. That strict accounting is
// deliberate and covered by tests.
package ratelimit

import (
	"sync"
	"time"
)

type Config struct {
	Limit         int           // max requests per window
	Window        time.Duration // window length
	MaxEntries    int           // opportunistic sweep trigger (0 = unbounded)
	SweepInterval time.Duration // min time between periodic sweeps
	IdleTTL       time.Duration // evict buckets not touched for this long
}

type bucket struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// Limiter is safe for concurrent use. Create one instance per endpoint
// policy; each carries its own (limit, window) pair and bucket table.
type Limiter struct {
	cfg       Config
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func New(cfg Config) *Limiter {
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * cfg.Window
	}
	// An IdleTTL shorter than the window would let a sweep evict a bucket
	// whose window is still open, handing the client a fresh count early.
	if cfg.IdleTTL < cfg.Window {
		cfg.IdleTTL = cfg.Window
	}
	return &Limiter{
		cfg:       cfg,
		buckets:   make(map[string]*bucket, 1024),
		lastSweep: time.Now(),
	}
}

// Allow records one request for key at time now and reports whether it is
// within the limit. remaining is how many further requests the window
// accepts; retryAfterSec is how long a denied caller must wait for the
// window to roll over (0 when allowed).
func (l *Limiter) Allow(key string, now time.Time) (ok bool, remaining int, retryAfterSec int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries {
		l.sweepLocked(now)
	}

	b := l.buckets[key]
	if b == nil || now.Sub(b.windowStart) > l.cfg.Window {
		if b == nil {
			b = &bucket{}
			l.buckets[key] = b
		}
		b.count = 1
		b.windowStart = now
		b.lastSeen = now
		return true, l.cfg.Limit - 1, 0
	}

	b.count++
	b.lastSeen = now

	if b.count <= l.cfg.Limit {
		return true, l.cfg.Limit - b.count, 0
	}

	wait := b.windowStart.Add(l.cfg.Window).Sub(now)
	sec := int(wait / time.Second)
	if wait%time.Second != 0 || sec < 1 {
		sec++
	}
	return false, 0, sec
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int { return l.cfg.Limit }

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep evicts buckets idle past IdleTTL and returns how many were removed.
// Eviction never alters the decision for a key inside a live window.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(now)
}

// SweepMaybe runs a sweep only if SweepInterval has passed since the last one.
func (l *Limiter) SweepMaybe(now time.Time) {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.sweepLocked(now)
	}
	l.mu.Unlock()
}

func (l *Limiter) sweepLocked(now time.Time) int {
	evicted := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
			delete(l.buckets, key)
			evicted++
		}
	}
	l.lastSweep = now
	return evicted
}
