package monitoring

import (
	"context"
	"time"

	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/internal/log"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10
	dependencyCheckTimeout      = 2 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

// HealthStatus reports 1 for a healthy dependency and 0 otherwise.
type HealthStatus struct {
	Database int `json:"database"`
	Cache    int `json:"cache"` // 0 when no cache is configured
	Uptime   int `json:"uptime"`
}

type MonitoringController struct {
	db        *gorm.DB
	logger    *log.Logger
	cache     Cache
	startTime time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Cache) *router.RESTController {
	ctrl := &MonitoringController{
		db:        db,
		logger:    logger,
		cache:     cache,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			limiter := routerService.RateLimiterFactory().CreateRateLimiter(monitoringRequestsPerMinute, time.Minute)

			routerService.AddGetHandler(controller, limiter, "", ctrl.monitor)
			routerService.AddGetHandler(controller, limiter, "health", ctrl.healthCheck)
		},
	)
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	logger.Debug("Health check endpoint called")

	return router.OKResult(ctrl.performHealthChecks(c.Request.Context(), logger), "multiverse-waitlist health check completed")
}

func (ctrl *MonitoringController) monitor(*router.RequestContext) *router.ServiceResult {
	return router.OKResult("Multiverse waitlist is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()

	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	if ctrl.checkDatabase(ctx) {
		status.Database = 1
	} else {
		logger.Error("Database health check failed")
	}

	switch {
	case ctrl.cache == nil:
		logger.Debug("Cache not configured, cache health check skipped")
	case ctrl.cache.Ping(ctx) == nil:
		status.Cache = 1
	default:
		logger.Error("Cache health check failed")
	}

	return status
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	if ctrl.db == nil {
		return false
	}
	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
