// Package ratelimit throttles outbound catalog requests and inbound searches.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter allowing requestsPerSecond with an equal burst.
// A non-positive rate disables limiting.
func New(name string, requestsPerSecond int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), name: name}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:    name,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		slog.Debug("Rate limited request", "limiter", l.name, "waited", waited)
	}
	return nil
}

// Allow reports whether a request can proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the name of this rate limiter.
func (l *Limiter) Name() string {
	return l.name
}

// Keyed hands out one limiter per key, e.g. per client address.
type Keyed struct {
	mu      sync.Mutex
	name    string
	rps     int
	now     func() time.Time
	members map[string]*member
}

type member struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewKeyed creates a Keyed limiter whose members allow rps requests per second.
func NewKeyed(name string, rps int) *Keyed {
	return &Keyed{
		name:    name,
		rps:     rps,
		now:     time.Now,
		members: make(map[string]*member),
	}
}

// Allow reports whether key may make a request now.
func (k *Keyed) Allow(key string) bool {
	return k.get(key).Allow()
}

// Prune drops limiters unused for longer than idle and returns how many
// were removed. A limiter idle for a second or more has refilled its burst,
// so dropping it does not change what the key may do next.
func (k *Keyed) Prune(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	removed := 0
	for key, m := range k.members {
		if m.lastSeen.Before(cutoff) {
			delete(k.members, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.members)
}

func (k *Keyed) get(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.members[key]
	if !ok {
		m = &member{limiter: New(k.name+":"+key, k.rps)}
		k.members[key] = m
	}
	m.lastSeen = k.now()
	return m.limiter
}
