package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/metrics"
)

const (
	sessionCookie = "steward_session"
	sessionKey    = "steward.session"
	stewardHeader = "X-Forwarded-User"
	tabHeader     = "X-Review-Tab"
	tabQuery      = "tab"
)

// CORS allows the listed origins. With none configured, cross-origin requests
// get no CORS headers at all.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", stewardHeader, tabHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id, ok := c.Get(sessionKey); ok {
			fields = append(fields, "session_id", id)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		metrics.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// Session makes sure every browser carries a steward_session cookie. The id
// keys the review registry; it is not an authentication token.
func Session(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.New().String()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, int(ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// reviewKey scopes the review session to one browser tab. Pages send the tab
// id as a query parameter, scripts as a header; a missing or malformed id
// falls back to the browser-wide session.
func reviewKey(c *gin.Context) string {
	id := sessionID(c)
	tab := c.GetHeader(tabHeader)
	if tab == "" {
		tab = c.Query(tabQuery)
	}
	if _, err := uuid.Parse(tab); err != nil {
		return id
	}
	return id + "/" + tab
}
