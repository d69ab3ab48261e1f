package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/model"
	"golang.org/x/time/rate"
)

// the visitor holds the rate limiter and last seen time for a specific IP address.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	// globalVisitors maps IP addresses to their visitor for global rate limiting.
	globalVisitors = make(map[string]*visitor) // key: ip
	// pathVisitors maps IP addresses and request paths to their visitor for per-resource rate limiting.
	pathVisitors = make(map[string]map[string]*visitor) // key: ip -> path -> visitor
	muGlobal     sync.Mutex
	muPath       sync.Mutex

	trustForwardedFor = config.GetTrustForwardedFor
)

// perMinute converts a requests-per-minute setting into a rate.Limit.
func perMinute(n float64) rate.Limit {
	return rate.Limit(n / 60.0)
}

// getGlobalLimiter returns the rate limiter for the given IP address, creating one if it does not exist.
func getGlobalLimiter(ip string) *rate.Limiter {
	muGlobal.Lock()
	defer muGlobal.Unlock()
	v, exists := globalVisitors[ip]
	if !exists {
		r, burst := config.GetGlobalRateLimiterConfig()
		limiter := rate.NewLimiter(perMinute(r), burst)
		globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getPathLimiter returns the rate limiter for the given IP address and path, creating one if it does not exist.
func getPathLimiter(ip, path string) *rate.Limiter {
	muPath.Lock()
	defer muPath.Unlock()
	if _, ok := pathVisitors[ip]; !ok {
		pathVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := pathVisitors[ip][path]
	if !exists {
		r, burst := config.GetParamRateLimiterConfig()
		limiter := rate.NewLimiter(perMinute(r), burst)
		pathVisitors[ip][path] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes entries that have not been seen for longer than idle.
func cleanupVisitors(idle time.Duration) {
	muGlobal.Lock()
	for ip, v := range globalVisitors {
		if time.Since(v.lastSeen) > idle {
			delete(globalVisitors, ip)
		}
	}
	muGlobal.Unlock()

	muPath.Lock()
	for ip, paths := range pathVisitors {
		for path, v := range paths {
			if time.Since(v.lastSeen) > idle {
				delete(paths, path)
			}
		}
		if len(paths) == 0 {
			delete(pathVisitors, ip)
		}
	}
	muPath.Unlock()
}

// StartRateLimiterCleanup evicts idle visitors every minute until ctx is done.
func StartRateLimiterCleanup(ctx context.Context) {
	idle := config.GetRateLimiterCleanupTimeout()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanupVisitors(idle)
			}
		}
	}()
}

// ResetVisitors clears all visitor states for both global and per-path limiters. Used primarily for testing.
func ResetVisitors() {
	muGlobal.Lock()
	for k := range globalVisitors {
		delete(globalVisitors, k)
	}
	muGlobal.Unlock()
	muPath.Lock()
	for k := range pathVisitors {
		delete(pathVisitors, k)
	}
	muPath.Unlock()
}

// getIP keys visitors by peer address. X-Forwarded-For is client controlled
// and only used when a trusted proxy is configured in front of the server.
func getIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && trustForwardedFor() {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

func writeTooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse(errMsg, message))
}

// RateLimitMiddleware returns an HTTP middleware that enforces global and per-resource rate limiting.
// If the rate limit is exceeded, it responds with a 429 status and a JSON error message.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		globalLimiter := getGlobalLimiter(ip)
		pathLimiter := getPathLimiter(ip, r.URL.Path)
		if !globalLimiter.Allow() {
			globalRate, _ := config.GetGlobalRateLimiterConfig()
			writeTooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", globalRate),
				"Too Many Requests (global limit)")
			return
		}
		if !pathLimiter.Allow() {
			pathRate, _ := config.GetParamRateLimiterConfig()
			writeTooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per resource per user/IP", pathRate),
				"Too Many Requests (per-resource limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}
