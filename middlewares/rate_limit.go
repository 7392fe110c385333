package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds the rate limiter and the last time we saw this IP.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	// General API visitors
	visitors   = make(map[string]*visitor)
	visitorsMu sync.Mutex

	// Stricter visitors for mutating routes (follow toggles, chat posts)
	writeVisitors   = make(map[string]*visitor)
	writeVisitorsMu sync.Mutex
)

// newVisitorLimiter creates a limiter for general API calls:
// 1 request/second refill with a burst of 100.
func newVisitorLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 100)
}

// newWriteVisitorLimiter is stricter, sized for human-paced toggling and
// chatting rather than scripted writes.
func newWriteVisitorLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 10)
}

func getVisitor(ip string) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	v, exists := visitors[ip]
	if !exists {
		limiter := newVisitorLimiter()
		visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func getWriteVisitor(ip string) *rate.Limiter {
	writeVisitorsMu.Lock()
	defer writeVisitorsMu.Unlock()

	v, exists := writeVisitors[ip]
	if !exists {
		limiter := newWriteVisitorLimiter()
		writeVisitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupVisitors drops IPs not seen for an hour; call once at startup.
func CleanupVisitors() {
	go func() {
		for range time.Tick(10 * time.Minute) {
			cutoff := time.Now().Add(-time.Hour)

			visitorsMu.Lock()
			for ip, v := range visitors {
				if v.lastSeen.Before(cutoff) {
					delete(visitors, ip)
				}
			}
			visitorsMu.Unlock()

			writeVisitorsMu.Lock()
			for ip, v := range writeVisitors {
				if v.lastSeen.Before(cutoff) {
					delete(writeVisitors, ip)
				}
			}
			writeVisitorsMu.Unlock()
		}
	}()
}

// RateLimitMiddleware applies a simple per-IP rate limit for all routes.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getVisitor(ip)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}

		c.Next()
	}
}

// WriteRateLimitMiddleware applies the stricter per-IP limit for writes.
func WriteRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getWriteVisitor(ip)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many writes. Please wait and try again.",
			})
			return
		}

		c.Next()
	}
}
