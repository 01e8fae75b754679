// Package ratelimit holds the per-client request budget of the API.
//
// Every route under APIPrefix draws from one token bucket per client. A
// bucket holds Limit tokens and refills at Limit per Window, so a client
// that has been quiet for a whole window starts over with a full budget.
// Routes outside the prefix, such as the health check, are never counted.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/jonathan/klachtbrief/internal/config"
)

// APIPrefix is the path prefix whose routes share one budget.
const APIPrefix = "/api/"

// Decision is the outcome of a single Allow call. Limit is zero when the
// request was not counted against a budget.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time     // when the bucket is full again
	RetryAfter time.Duration // until the next token, set on denial
}

type bucket struct {
	tokens float64
	last   time.Time
}

func (b *bucket) refill(now time.Time, capacity, perSecond float64) {
	b.tokens = min(capacity, b.tokens+now.Sub(b.last).Seconds()*perSecond)
	b.last = now
}

// Limiter tracks one token bucket per client address.
type Limiter struct {
	enabled   bool
	limit     int
	perSecond float64
	whitelist map[string]bool
	blacklist map[string]bool

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds a limiter from the service settings. When a cleanup interval
// is configured it starts a goroutine that forgets idle clients; Stop ends it.
func New(cfg config.RateLimitConfig) *Limiter {
	l := &Limiter{
		enabled:   cfg.Enabled && cfg.Limit > 0 && cfg.Window > 0,
		limit:     cfg.Limit,
		whitelist: addressSet(cfg.Whitelist),
		blacklist: addressSet(cfg.Blacklist),
		buckets:   make(map[string]*bucket),
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	if l.enabled {
		l.perSecond = float64(cfg.Limit) / cfg.Window.Seconds()
		if cfg.CleanupInterval > 0 {
			go l.cleanup(cfg.CleanupInterval)
		}
	}
	return l
}

// Allow counts a request from clientID to path against the client's budget.
// Whitelisted clients always pass and blacklisted clients never do.
func (l *Limiter) Allow(clientID, path string) Decision {
	if !l.enabled || !strings.HasPrefix(path, APIPrefix) || l.whitelist[clientID] {
		return Decision{Allowed: true}
	}
	if l.blacklist[clientID] {
		return Decision{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	capacity := float64(l.limit)
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		l.buckets[clientID] = b
	}
	b.refill(now, capacity, l.perSecond)

	d := Decision{Limit: l.limit}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	} else {
		d.RetryAfter = l.timeFor(1 - b.tokens)
	}
	d.Remaining = int(b.tokens)
	d.ResetTime = now.Add(l.timeFor(capacity - b.tokens))
	return d
}

// timeFor returns how long the bucket takes to earn n tokens.
func (l *Limiter) timeFor(n float64) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n / l.perSecond * float64(time.Second))
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops clients whose bucket has refilled completely. A new bucket
// for the same client would be identical.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, b := range l.buckets {
		if b.tokens+now.Sub(b.last).Seconds()*l.perSecond >= float64(l.limit) {
			delete(l.buckets, id)
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func addressSet(addresses []string) map[string]bool {
	set := make(map[string]bool, len(addresses))
	for _, a := range addresses {
		set[a] = true
	}
	return set
}
