package service

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginRateLimiter limita los intentos de login por email. Reset se llama
// despues de un login exitoso para no arrastrar errores de tipeo.
type LoginRateLimiter interface {
	Allow(key string) bool
	Reset(key string)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryLoginRateLimiter usa un token bucket por clave: max intentos de
// rafaga que se recargan a lo largo de la ventana.
type memoryLoginRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*limiterEntry
	now     func() time.Time
}

// NewMemoryLoginRateLimiter crea un rate limiter en memoria.
func NewMemoryLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLoginRateLimiter{
		window:  window,
		max:     max,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *memoryLoginRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max),
		}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// prune descarta claves inactivas por mas de una ventana; su bucket ya estaria lleno.
func (l *memoryLoginRateLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.window {
			delete(l.entries, key)
		}
	}
}

func (l *memoryLoginRateLimiter) Reset(key string) {
	key = strings.ToLower(strings.TrimSpace(key))
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}
