package middleware

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"thumbnailer/internal/domain"
)

// ErrorResponder writes the response for an error raised by a middleware.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

type bucket struct {
	count int
	until time.Time
}

// RateLimit allows limit requests per client address in fixed windows of
// length per. Rejections are domain.ErrRateLimited handed to reject; a nil
// reject writes {"error": message} itself. Buckets live in a TTL cache and
// vanish once their window is over.
func RateLimit(limit int, per time.Duration, reject ErrorResponder) func(http.Handler) http.Handler {
	if reject == nil {
		reject = writeClientError
	}
	var mu sync.Mutex
	buckets := cache.New(per, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			mu.Lock()
			now := time.Now()
			var b *bucket
			if v, ok := buckets.Get(ip); ok {
				b = v.(*bucket)
			}
			if b == nil || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets.Set(ip, b, per)
			}
			if b.count >= limit {
				retry := int(math.Ceil(b.until.Sub(now).Seconds()))
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				reject(w, r, domain.ErrRateLimited)
				return
			}
			b.count++
			remaining := limit - b.count
			mu.Unlock()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIPForRateLimit keys on the connection's address. Forwarding headers
// are honoured only through RealIP, which rewrites RemoteAddr for trusted
// proxies before this runs.
func clientIPForRateLimit(r *http.Request) string {
	if addr, ok := peerAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	var input *domain.ClientInputError
	if errors.As(err, &input) {
		status = input.HTTPStatus()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
