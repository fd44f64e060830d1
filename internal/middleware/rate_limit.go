package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter IP 별 토큰 버킷. 3분 동안 요청이 없던 IP 는 잊는다
type RateLimiter struct {
	visitors *cache.Cache
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: cache.New(3*time.Minute, time.Minute),
		rate:     r,
		burst:    burst,
	}
}

// PerMinute 분당 n 회 (버스트 n)
func PerMinute(n int) *RateLimiter {
	if n < 1 {
		n = 1
	}
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := rl.visitors.Get(ip); ok {
		l := v.(*rate.Limiter)
		// 접근할 때마다 만료를 미룬다
		rl.visitors.SetDefault(ip, l)
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	if err := rl.visitors.Add(ip, l, cache.DefaultExpiration); err != nil {
		// 동시에 다른 요청이 먼저 넣었다
		if v, ok := rl.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.limiter(ip).Allow() {
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"ip":   ip,
				"path": c.Request.URL.Path,
			})
			rateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
			errors.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
