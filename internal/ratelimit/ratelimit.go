// Package ratelimit spaces outbound requests per host:port.
//
// Each key gets its own token bucket with a burst of one, so two requests to
// the same key are never closer together than the configured minimum delay.
package ratelimit

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keyed manages one limiter per key.
type Keyed struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// New creates a limiter that allows one request per minDelay for each key.
// A non-positive minDelay disables limiting.
func New(minDelay time.Duration) *Keyed {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Keyed{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until a request for key is allowed or ctx is done.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.limiter(key).Wait(ctx)
}

// Allow reports whether a request for key may go out now, consuming the slot if so.
func (k *Keyed) Allow(key string) bool {
	return k.limiter(key).Allow()
}

// Len reports how many keys have been seen.
func (k *Keyed) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.limiters)
}

func (k *Keyed) limiter(key string) *rate.Limiter {
	k.mu.RLock()
	l, ok := k.limiters[key]
	k.mu.RUnlock()
	if ok {
		return l
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if l, ok = k.limiters[key]; ok {
		return l
	}
	l = rate.NewLimiter(k.limit, 1)
	k.limiters[key] = l
	return l
}

// HostKey returns the host:port pair of u, filling in the scheme's default port.
func HostKey(u *url.URL) string {
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}
