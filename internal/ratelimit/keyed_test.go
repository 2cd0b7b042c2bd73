package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zjgaokao/major-advisor/internal/metrics"
)

func newTestKeyed(cfg KeyedConfig, clock *fakeClock) *KeyedLimiter {
	kl := NewKeyedLimiter(cfg)
	kl.now = clock.Now
	return kl
}

func TestKeyedLimiter_Basic(t *testing.T) {
	t.Parallel()
	kl := newTestKeyed(KeyedConfig{Name: "test", Burst: 1, RefillRate: 0.01, CleanupPeriod: time.Hour}, newFakeClock())
	defer kl.Stop()

	if !kl.Allow("10.0.0.1") {
		t.Error("first request denied")
	}
	if kl.Allow("10.0.0.1") {
		t.Error("second request allowed with burst 1")
	}
	if !kl.Allow("10.0.0.2") {
		t.Error("other client denied")
	}
	if !kl.Allow("") {
		t.Error("empty key must never be limited")
	}
	if got := kl.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount() = %d, want 2", got)
	}
}

func TestKeyedLimiter_ReserveRetryAfter(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	kl := newTestKeyed(KeyedConfig{Name: "recommend", Burst: 1, RefillRate: 30.0 / 3600, CleanupPeriod: time.Hour}, clock)
	defer kl.Stop()

	kl.Allow("ip")
	ok, wait := kl.Reserve("ip")
	if ok {
		t.Fatal("Reserve() allowed an empty bucket")
	}
	if wait < 119*time.Second || wait > 121*time.Second {
		t.Errorf("wait = %v, want about 2m", wait)
	}

	clock.Advance(wait + time.Second)
	if ok, _ := kl.Reserve("ip"); !ok {
		t.Error("Reserve() denied after refill")
	}
}

func TestKeyedLimiter_Available(t *testing.T) {
	t.Parallel()
	kl := newTestKeyed(KeyedConfig{Name: "test", Burst: 5, RefillRate: 0, CleanupPeriod: time.Hour}, newFakeClock())
	defer kl.Stop()

	if got := kl.Available("unseen"); got != 5 {
		t.Errorf("Available(unseen) = %v, want 5", got)
	}
	kl.Allow("seen")
	kl.Allow("seen")
	if got := kl.Available("seen"); got != 3 {
		t.Errorf("Available(seen) = %v, want 3", got)
	}
}

func TestKeyedLimiter_Cleanup(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	m := metrics.New(prometheus.NewRegistry())
	kl := newTestKeyed(KeyedConfig{Name: "recommend", Burst: 2, RefillRate: 1, CleanupPeriod: time.Hour, Metrics: m}, clock)
	defer kl.Stop()

	kl.Allow("idle")
	kl.Allow("busy")
	kl.Allow("busy")

	clock.Advance(time.Second) // idle refills to 2, busy reaches 1
	if got := kl.cleanup(); got != 1 {
		t.Errorf("cleanup() left %d keys, want 1", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterActive.WithLabelValues("recommend")); got != 1 {
		t.Errorf("active gauge = %v, want 1", got)
	}

	clock.Advance(time.Second)
	if got := kl.cleanup(); got != 0 {
		t.Errorf("cleanup() left %d keys, want 0", got)
	}
}

func TestKeyedLimiter_CleanupLoop(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "loop", Burst: 1, RefillRate: 1000, CleanupPeriod: 10 * time.Millisecond})
	defer kl.Stop()

	kl.Allow("u1")
	deadline := time.Now().Add(time.Second)
	for kl.ActiveCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle key was not cleaned up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKeyedLimiter_DropMetrics(t *testing.T) {
	t.Parallel()
	m := metrics.New(prometheus.NewRegistry())
	kl := newTestKeyed(KeyedConfig{Name: "recommend", Burst: 1, RefillRate: 0, CleanupPeriod: time.Hour, Metrics: m}, newFakeClock())
	defer kl.Stop()

	kl.Allow("ip")
	kl.Allow("ip")
	kl.Allow("ip")

	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("recommend")); got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
}

func TestKeyedLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	kl := newTestKeyed(KeyedConfig{Name: "test", Burst: 10, RefillRate: 0, CleanupPeriod: time.Hour}, newFakeClock())
	defer kl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed = map[string]int{}
	)
	for i := range 100 {
		key := fmt.Sprintf("client-%d", i%4)
		wg.Go(func() {
			if kl.Allow(key) {
				mu.Lock()
				allowed[key]++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	for key, n := range allowed {
		if n != 10 {
			t.Errorf("%s allowed %d, want 10", key, n)
		}
	}
	if len(allowed) != 4 {
		t.Errorf("clients = %d, want 4", len(allowed))
	}
}

func TestKeyedLimiter_StopIdempotent(t *testing.T) {
	t.Parallel()
	kl := NewKeyedLimiter(KeyedConfig{Name: "stop", Burst: 1, RefillRate: 1})
	kl.Stop()
	kl.Stop()
}
