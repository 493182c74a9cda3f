package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/factory"
	"github.com/akeren/multiverse-waitlist/pkg/ratelimit"
	"github.com/akeren/multiverse-waitlist/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	DefaultTimeoutDuration = 30 * time.Second

	globalRateLimitScope = "global"
)

type MiddlewareConfig struct {
	TimeoutDuration time.Duration
}

type Cache interface {
	Ping(ctx context.Context) error
}

type RouterService struct {
	engine            *gin.Engine
	server            *http.Server
	logger            *log.Logger
	limiterFactory    factory.RateLimiterFactory
	rateLimiter       ratelimit.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
	middlewareConfig  *MiddlewareConfig
	registry          *prometheus.Registry

	handlerToControllerMap map[string]*RESTController
	rateLimitOverrides     map[string]ratelimit.RateLimiter
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode, ok := os.LookupEnv("GIN_MODE"); ok && mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	if routerConfig.RequestTimeout <= 0 {
		routerConfig.RequestTimeout = DefaultTimeoutDuration
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		GetLogger(c).Error("Recovered from panic", "panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, InternalServerErrorResult("Internal server error").ToJSON())
	}))

	if utils.IsTracingEnabled() {
		ginRouter.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	// ClientIP() only honours X-Forwarded-For from proxies listed in TRUSTED_PROXIES.
	trustedProxies := parseTrustedProxiesEnv(os.Getenv("TRUSTED_PROXIES"))
	if err := ginRouter.SetTrustedProxies(trustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = ginRouter.SetTrustedProxies(nil)
	} else if trustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	rs := &RouterService{
		engine:            ginRouter,
		logger:            logger,
		rateLimitRequests: routerConfig.RateLimitRequests,
		rateLimitWindow:   routerConfig.RateLimitWindow,
		middlewareConfig:  &MiddlewareConfig{TimeoutDuration: routerConfig.RequestTimeout},

		rateLimitOverrides:     make(map[string]ratelimit.RateLimiter),
		handlerToControllerMap: make(map[string]*RESTController),
	}

	rs.initRateLimiting(cache)
	rs.mountMetrics()

	ginRouter.Use(rs.correlationIDMiddleware())
	ginRouter.Use(rs.loggerInjectionMiddleware())
	ginRouter.Use(rs.requestLoggingMiddleware())
	ginRouter.Use(rs.securityHeadersMiddleware())
	ginRouter.Use(rs.maxBodySizeMiddleware())
	ginRouter.Use(rs.corsMiddleware())
	ginRouter.Use(rs.rateLimitMiddleware())
	ginRouter.Use(rs.timeoutMiddleware())

	ginRouter.HandleMethodNotAllowed = true
	ginRouter.RedirectTrailingSlash = true

	ginRouter.NoRoute(func(c *gin.Context) {
		GetLogger(c).Warn("Route not found", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, NotFoundResult("Route not found").ToJSON())
	})

	ginRouter.NoMethod(func(c *gin.Context) {
		GetLogger(c).Warn("Method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusMethodNotAllowed, MethodNotAllowedResult().ToJSON())
	})

	rs.server = &http.Server{
		Addr:    ":8080",
		Handler: ginRouter,

		// Gin's Context is not goroutine-safe, so request time limits are
		// enforced here rather than by running handlers in a goroutine.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func parseTrustedProxiesEnv(v string) []string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if s == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	parts := strings.Split(s, ",")
	proxies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

func (routerService *RouterService) initRateLimiting(cache Cache) {
	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := cache.Ping(ctx)
		cancel()
		if err != nil {
			routerService.logger.Warn("Failed to connect to Redis for rate limiting, falling back to in-memory", "error", err)
			cache = nil
		}
	}

	limiterFactory := factory.NewDefaultRateLimiterFactory(cache, routerService.logger)
	routerService.limiterFactory = limiterFactory
	routerService.rateLimiter = limiterFactory.CreateRateLimiter(routerService.rateLimitRequests, routerService.rateLimitWindow)

	backend := "in-memory"
	if limiterFactory.UsesRedis() {
		backend = "redis"
	}
	routerService.logger.Info("Rate limiting initialized",
		"backend", backend,
		"requests", routerService.rateLimitRequests,
		"window", routerService.rateLimitWindow)
}

// RateLimiterFactory builds limiters that share the router's backing store.
func (routerService *RouterService) RateLimiterFactory() factory.RateLimiterFactory {
	return routerService.limiterFactory
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) Cleanup() {
	limiters := []ratelimit.RateLimiter{routerService.rateLimiter}
	for _, limiter := range routerService.rateLimitOverrides {
		limiters = append(limiters, limiter)
	}

	for _, limiter := range limiters {
		if limiter == nil {
			continue
		}
		if err := limiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	routerService.logger.Info("Mounting controller",
		"name", controller.name,
		"path", controller.mountPoint,
	)

	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	appPort, ok := os.LookupEnv("APP_PORT")
	if !ok || appPort == "" {
		appPort = "8080"
	}
	addr := ":" + appPort

	routerService.server.Addr = addr

	routerService.logger.Info("Starting HTTP server", "addr", addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Correlation-ID"))
		if id == "" || len(id) > 128 {
			id = log.GenerateCorrelationID()
		}
		c.Request = c.Request.WithContext(log.ContextWithCorrelationID(c.Request.Context(), id))
		c.Header("X-Correlation-ID", id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		c.Request = c.Request.WithContext(log.ContextWithLogger(c.Request.Context(), correlatedLogger))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		GetLogger(c).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if shouldSetHSTS(c) {
			h.Set("Strict-Transport-Security", buildHSTSValue())
		}
		c.Next()
	}
}

// shouldSetHSTS is on by default in production and overridable with HSTS_ENABLED.
func shouldSetHSTS(c *gin.Context) bool {
	appEnv := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))

	enabled := false
	if raw := utils.GetEnvTrimmed("HSTS_ENABLED"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err == nil {
			enabled = b
		}
	} else {
		enabled = appEnv == "production" || appEnv == "prod"
	}

	if !enabled {
		return false
	}

	if c.Request.TLS != nil {
		return true
	}
	// TLS terminated at the edge.
	proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")))
	return proto == "https"
}

func buildHSTSValue() string {
	maxAge := int64(31536000)
	if raw := strings.TrimSpace(os.Getenv("HSTS_MAX_AGE")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxAge = parsed
		}
	}

	includeSubdomains := true
	if raw := strings.TrimSpace(os.Getenv("HSTS_INCLUDE_SUBDOMAINS")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			includeSubdomains = parsed
		}
	}

	value := fmt.Sprintf("max-age=%d", maxAge)
	if includeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	// 1 MiB unless MAX_REQUEST_BODY_BYTES says otherwise.
	maxBytes := int64(1 << 20)
	if raw := strings.TrimSpace(os.Getenv("MAX_REQUEST_BODY_BYTES")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxBytes = parsed
		}
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	allowedOrigins := parseAllowedOrigins(os.Getenv("CORS_ALLOWED_ORIGIN"))
	if len(allowedOrigins) == 0 {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set; cross-origin requests will not receive CORS headers")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !originAllowed(allowedOrigins, origin) {
			if origin != "" {
				GetLogger(c).Warn("CORS origin not allowed", "origin", origin)
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Correlation-ID")
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.middlewareConfig.TimeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// Never run c.Next() in a goroutine; gin.Context is not safe for concurrent use.
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			GetLogger(c).Warn("Request timeout detected")
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				http.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
		}
	}
}

// resolveLimiter picks the handler override, then the controller override, then the global limiter.
// The returned scope keeps counters of different limiters apart in a shared Redis.
func (routerService *RouterService) resolveLimiter(handlerKey string, controller *RESTController) (ratelimit.RateLimiter, string) {
	if limiter, ok := routerService.rateLimitOverrides[handlerKey]; ok {
		return limiter, handlerKey
	}
	if limiter, ok := routerService.rateLimitOverrides[controller.mountPoint]; ok {
		return limiter, controller.mountPoint
	}
	return routerService.rateLimiter, globalRateLimitScope
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Unmatched routes fall through to NoRoute/NoMethod.
		if c.FullPath() == "" {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		handlerKey := routerService.keyForPathAndMethod(c.FullPath(), c.Request.Method)
		handlerController, controllerFound := routerService.handlerToControllerMap[handlerKey]

		if !controllerFound || handlerController == nil {
			// Routes registered straight on the engine (e.g. /metrics) are not rate limited.
			c.Next()
			return
		}

		usedLimiter, scope := routerService.resolveLimiter(handlerKey, handlerController)
		if usedLimiter == nil {
			c.Next()
			return
		}

		limit, window := usedLimiter.GetLimitDetails()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Window", window.String())

		limited, err := usedLimiter.IsLimited(fmt.Sprintf("ratelimit:%s:%s", scope, clientIP))
		if err != nil {
			// Fail open: a limiter outage must not block legitimate traffic.
			GetLogger(c).Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}

		if limited {
			GetLogger(c).Warn("Rate limit exceeded", "client_ip", clientIP, "scope", scope)
			retryAfterSeconds := int(math.Ceil(window.Seconds()))
			if retryAfterSeconds < 1 {
				retryAfterSeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
				Limit:      limit,
				Window:     window.String(),
				RetryAfter: strconv.Itoa(retryAfterSeconds),
			}).ToJSON())
			return
		}

		c.Next()
	}
}
