package waitlist

import (
	"net/url"
	"time"

	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
)

// Config holds the submission endpoint settings.
type Config struct {
	SubmitRateLimit  int
	GeoCountryHeader string
	GeoCityHeader    string
}

func DefaultConfig() Config {
	return Config{
		SubmitRateLimit:  constants.DefaultSubmitRequestsPerMinute,
		GeoCountryHeader: "X-Vercel-IP-Country",
		GeoCityHeader:    "X-Vercel-IP-City",
	}
}

func NewWaitlistController(service WaitlistService, cfg Config) *router.RESTController {
	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = constants.DefaultSubmitRequestsPerMinute
	}

	return router.NewRESTController(
		"WaitlistController",
		"/api",
		func(rs *router.RouterService, c *router.RESTController) {
			submitLimiter := rs.RateLimiterFactory().CreateRateLimiter(cfg.SubmitRateLimit, time.Minute)
			metrics := newSubmissionMetrics(rs.MetricsRegisterer())

			rs.AddPostHandler(c, submitLimiter, "submit", submitWaitlistEntryHandler(service, cfg, metrics))
		},
	)
}

func submitWaitlistEntryHandler(service WaitlistService, cfg Config, metrics *submissionMetrics) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitWaitlistEntryRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Info("Failed to bind waitlist submission", "error", err)
			metrics.observe(outcomeInvalid)
			return router.BadRequestResult(MessageInvalidEmail, nil)
		}

		req.Country = geoHeader(ctx, cfg.GeoCountryHeader)
		req.City = geoHeader(ctx, cfg.GeoCityHeader)

		response, err := service.SubmitEntry(ctx.Request.Context(), &req)
		metrics.observe(outcomeFor(err))
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, MessageSubmitted)
	}
}

// geoHeader reads an edge geolocation header. Edge providers percent-encode city names.
func geoHeader(ctx *router.RequestContext, name string) string {
	if name == "" {
		return ""
	}
	raw := ctx.GetHeader(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
