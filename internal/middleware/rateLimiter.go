package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP and forgets clients idle longer than ttl.
type IPRateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		rateLimit: r,
		burstRate: b,
		ttl:       10 * time.Minute,
		now:       time.Now,
	}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) > i.ttl {
		for key, v := range i.visitors {
			if now.Sub(v.lastSeen) > i.ttl {
				delete(i.visitors, key)
			}
		}
		i.lastSweep = now
	}

	v, exists := i.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

//TODO: move buckets to redis once the API runs on more than one instance
