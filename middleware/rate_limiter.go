package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		ips:           make(map[string]*rate.Limiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			// credential endpoints are throttled against brute force
			"/api/auth/login":       {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/admin/login":      {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/auth/register":    {limit: rate.Every(500 * time.Millisecond), burst: 5},
			"/api/vendor/subscribe": {limit: rate.Every(500 * time.Millisecond), burst: 5},
		},
		now: time.Now,
	}
}

// SetEndpointLimit overrides the limit for a route path
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
	r.mu.Unlock()
}

// Cleanup forgets expired blocks and their limiters
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			r.forget(ip)
		}
	}
}

// forget drops the block and every route limiter of ip. Callers hold mu.
func (r *RateLimiter) forget(ip string) {
	delete(r.blockedIPs, ip)
	prefix := ip + " "
	for key := range r.ips {
		if strings.HasPrefix(key, prefix) {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := r.now()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, "IP address blocked due to too many requests", blockUntil)
				}
				r.forget(ip)
			}

			limit, burst := r.defaultLimit, r.defaultBurst
			if l, ok := r.endpointLimits[c.Path()]; ok {
				limit, burst = l.limit, l.burst
			}
			// limiters are keyed per ip and route so a noisy login does not starve reads
			key := ip + " " + c.Path()
			limiter, ok := r.ips[key]
			if !ok {
				limiter = rate.NewLimiter(limit, burst)
				r.ips[key] = limiter
			}

			if !limiter.AllowN(now, 1) {
				blockUntil := now.Add(r.blockDuration)
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, "Too many requests", blockUntil)
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, message string, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: message,
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}
