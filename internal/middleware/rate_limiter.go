package middleware

import (
	"net/http"
	"sync"
	"time"

	"frhema/internal/apierror"

	"github.com/gin-gonic/gin"
)

type ipWindow struct {
	hits []time.Time
}

var (
	limiterMu sync.Mutex
	limiterWs = make(map[string]*ipWindow)
)

func init() {
	go func() {
		for range time.Tick(5 * time.Minute) {
			limiterMu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for ip, w := range limiterWs {
				if len(w.hits) == 0 || w.hits[len(w.hits)-1].Before(cutoff) {
					delete(limiterWs, ip)
				}
			}
			limiterMu.Unlock()
		}
	}()
}

func allow(key string, limit int, window time.Duration) bool {
	limiterMu.Lock()
	defer limiterMu.Unlock()

	now := time.Now()
	w, ok := limiterWs[key]
	if !ok {
		w = &ipWindow{}
		limiterWs[key] = w
	}

	cutoff := now.Add(-window)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept

	if len(w.hits) >= limit {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

// RateLimiter caps requests per client IP over a sliding window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c.ClientIP(), limit, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiadas solicitudes, intente nuevamente"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter is stricter: brute-force protection on credentials.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow("login:"+c.ClientIP(), 20, time.Minute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Demasiados intentos de inicio de sesion"))
			return
		}
		c.Next()
	}
}
