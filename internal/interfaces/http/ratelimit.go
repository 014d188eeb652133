package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PhoneLimiter token bucket por número de teléfono.
type PhoneLimiter struct {
	mu       sync.Mutex
	limiters map[string]*phoneBucket
	rate     rate.Limit
	burst    int
	idle     time.Duration
	onLimit  func()
	now      func() time.Time
}

type phoneBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewPhoneLimiter crea el limitador. rps <= 0 devuelve nil (sin límite).
// onLimit se invoca por cada petición rechazada; puede ser nil.
func NewPhoneLimiter(rps, burst int, onLimit func()) *PhoneLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &PhoneLimiter{
		limiters: make(map[string]*phoneBucket),
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		onLimit:  onLimit,
		now:      time.Now,
	}
}

// Allow consume un token del teléfono.
func (l *PhoneLimiter) Allow(phone string) bool {
	l.mu.Lock()
	now := l.now()
	b, ok := l.limiters[phone]
	if !ok {
		b = &phoneBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[phone] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	l.mu.Unlock()

	if !allowed && l.onLimit != nil {
		l.onLimit()
	}
	return allowed
}

// Cleanup elimina los buckets sin uso reciente. Devuelve cuántos quitó.
func (l *PhoneLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	removed := 0
	for phone, b := range l.limiters {
		if b.lastSeen.Before(cutoff) {
			delete(l.limiters, phone)
			removed++
		}
	}
	return removed
}

// StartCleanup ejecuta Cleanup periódicamente hasta que se cierre stop.
func (l *PhoneLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
