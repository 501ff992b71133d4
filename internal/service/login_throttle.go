package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// LoginThrottle cuenta los logins fallidos por clave. Un login correcto borra
// el contador de su clave.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
	Reset(ctx context.Context, key string)
}

// LoginThrottleKey arma la clave "ip|email". Los fallos desde una IP no
// bloquean al mismo email desde otra.
func LoginThrottleKey(clientIP, email string) string {
	return strings.TrimSpace(clientIP) + "|" + normalizeEmail(email)
}

type memoryLoginThrottle struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	failures  map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginThrottle crea un contador en memoria de ventana deslizante: max fallos
// por clave dentro de window.
func NewLoginThrottle(window time.Duration, max int) LoginThrottle {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLoginThrottle{
		window:   window,
		max:      max,
		failures: make(map[string][]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryLoginThrottle) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	return len(l.recent(key, now)) < l.max
}

func (l *memoryLoginThrottle) RecordFailure(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	l.failures[key] = append(l.recent(key, now), now)
}

func (l *memoryLoginThrottle) Reset(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// recent descarta los fallos fuera de la ventana y elimina la clave si no queda ninguno.
func (l *memoryLoginThrottle) recent(key string, now time.Time) []time.Time {
	entries, ok := l.failures[key]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}

// sweep recorre todas las claves como mucho una vez por ventana.
func (l *memoryLoginThrottle) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key := range l.failures {
		l.recent(key, now)
	}
}
