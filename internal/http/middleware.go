package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/config"
	"nutrivision-go/internal/metrics"
)

const (
	ctxUserID = "userID"
	ctxToken  = "token"
)

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func requestLogger(log *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency)

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": latency.String(),
		}
		if uid, ok := c.Get(ctxUserID); ok {
			fields["user_id"] = uid
		}
		log.WithFields(fields).Info("request")
	}
}

// requireSession resolves the bearer token to a live session. Every
// authenticated request counts as activity.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization_header_invalid"})
			return
		}

		sess, err := s.Sessions.Resume(c.Request.Context(), parts[1])
		switch {
		case errors.Is(err, apperr.ErrSessionExpired):
			c.AbortWithStatusJSON(401, gin.H{"error": "session_expired", "message": "Session expired due to inactivity. Please log in again."})
			return
		case errors.Is(err, apperr.ErrUnauthenticated):
			c.AbortWithStatusJSON(401, gin.H{"error": "unauthorized"})
			return
		case err != nil:
			s.fail(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUserID, sess.UserID)
		c.Set(ctxToken, parts[1])
		c.Next()
	}
}

func userID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// limiterIdleTTL is how long an unused bucket is kept before it is swept.
const limiterIdleTTL = 3 * time.Minute

type visitor struct {
	*rate.Limiter
	lastSeen time.Time
}

// userLimiter hands out one token bucket per user. Buckets idle for longer
// than expiresIn are dropped, so the map is bounded by recently active users.
type userLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	expiresIn   time.Duration
	lastCleanup time.Time
	visitors    map[uint]*visitor
	now         func() time.Time
}

func newUserLimiter(rps float64, burst int) *userLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	// A bucket is only dropped once it would have refilled anyway.
	expiresIn := limiterIdleTTL
	if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > expiresIn {
		expiresIn = refill
	}
	return &userLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		expiresIn: expiresIn,
		visitors:  make(map[uint]*visitor),
		now:       time.Now,
	}
}

func (l *userLimiter) allow(uid uint) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	now := l.now()
	v, ok := l.visitors[uid]
	if !ok {
		v = &visitor{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[uid] = v
	}
	v.lastSeen = now
	if now.Sub(l.lastCleanup) > l.expiresIn {
		l.cleanupLocked(now)
	}
	l.mu.Unlock()
	return v.AllowN(now, 1)
}

func (l *userLimiter) cleanupLocked(now time.Time) {
	for uid, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.expiresIn {
			delete(l.visitors, uid)
		}
	}
	l.lastCleanup = now
}

func (l *userLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// rateLimit throttles the endpoints that call the AI collaborator.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(userID(c)) {
			c.AbortWithStatusJSON(429, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
