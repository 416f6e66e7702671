package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/app/responses"
	"github.com/kruegge82/adressCorrector/helpers/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// Options configures the middleware chain.
type Options struct {
	// RateLimit is the sustained requests per second per client IP. Zero disables limiting.
	RateLimit float64
	Burst     int
	Logger    *zap.Logger
}

// requestID keeps a valid incoming X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !utils.IsValidUUID(id) {
			id = utils.GenerateUUID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one zap line per request.
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(controllers.RequestIDKey)))
	}
}

// rateLimit applies a token bucket per client IP. Limiters of the 10000 most
// recent clients are kept.
func rateLimit(rps float64, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = int(rps) + 1
	}
	limiters, _ := lru.New[string, *rate.Limiter](10000)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter, ok := limiters.Get(ip)
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			limiters.Add(ip, limiter)
		}
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, responses.NewErrorResponse(
				"RATE_LIMITED", "too many requests", c.GetString(controllers.RequestIDKey)))
			return
		}
		c.Next()
	}
}

func setupMiddleware(router *gin.Engine, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(logger))
	if opts.RateLimit > 0 {
		router.Use(rateLimit(opts.RateLimit, opts.Burst))
	}
}
