package ratelimit

import (
	"sync"
	"time"

	"github.com/zjgaokao/major-advisor/internal/metrics"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "recommend")
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle buckets are removed.
	CleanupPeriod time.Duration

	// Optional metrics reporter
	Metrics *metrics.Metrics
}

// KeyedLimiter keeps one token bucket per key (client IP here) and
// periodically forgets keys whose bucket has refilled.
type KeyedLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*Limiter
	config   KeyedConfig
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop when done.
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:          "recommend",
//	    Burst:         10,
//	    RefillRate:    30.0 / 3600,
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether a request for key may proceed, consuming a token.
// Empty keys are never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	ok, _ := kl.Reserve(key)
	return ok
}

// Reserve is Allow plus the wait until the key's next token when denied.
func (kl *KeyedLimiter) Reserve(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}

	ok, wait := kl.getOrCreate(key).Reserve()
	if !ok {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
	return ok, wait
}

// getOrCreate returns the bucket for a key, creating it if needed.
func (kl *KeyedLimiter) getOrCreate(key string) *Limiter {
	kl.mu.RLock()
	l, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return l
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if l, exists = kl.entries[key]; exists {
		return l
	}

	l = newWithClock(kl.config.Burst, kl.config.RefillRate, kl.now)
	kl.entries[key] = l
	return l
}

// Available returns the tokens left for key; unseen keys have a full bucket.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.RLock()
	l, exists := kl.entries[key]
	kl.mu.RUnlock()

	if !exists {
		return kl.config.Burst
	}
	return l.Available()
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// cleanup removes idle keys and reports the remaining count.
func (kl *KeyedLimiter) cleanup() int {
	kl.mu.Lock()
	for key, l := range kl.entries {
		if l.IsFull() {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	kl.config.Metrics.SetRateLimiterActive(kl.config.Name, active)
	return active
}

// cleanupLoop periodically removes inactive limiters.
func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
}
