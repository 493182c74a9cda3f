package admin

import (
	"time"

	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/domain/waitlist"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
)

// NewAuthController serves login and logout under /api/auth.
func NewAuthController(service AdminService, loginRateLimit int) *router.RESTController {
	if loginRateLimit <= 0 {
		loginRateLimit = constants.DefaultAdminLoginRequestsPerMinute
	}

	return router.NewRESTController(
		"AuthController",
		"/api/auth",
		func(rs *router.RouterService, c *router.RESTController) {
			loginLimiter := rs.RateLimiterFactory().CreateRateLimiter(loginRateLimit, time.Minute)

			rs.AddPostHandler(c, loginLimiter, "admin-check", loginHandler(service))
			rs.AddPostHandler(c, nil, "logout", logoutHandler(service), RequireAdmin(service))
		},
	)
}

// NewAdminController serves the protected listing under /api/admin.
func NewAdminController(service AdminService, entries waitlist.WaitlistService) *router.RESTController {
	return router.NewRESTController(
		"AdminController",
		"/api/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "emails", listEntriesHandler(entries), RequireAdmin(service))
		},
	)
}

func loginHandler(service AdminService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req LoginRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			router.GetLogger(ctx).Info("Failed to bind admin login", "error", err)
			return router.UnauthorizedResult(MessageInvalidPassword)
		}

		token, err := service.Login(ctx.Request.Context(), req.Password)
		if err != nil {
			return router.ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
		}

		return router.OKResult(ToLoginResponse(token), "")
	}
}

func logoutHandler(service AdminService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		if err := service.Logout(ctx.Request.Context(), ClaimsFrom(ctx)); err != nil {
			return router.ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
		}
		return router.OKResult(nil, MessageLoggedOut)
	}
}

func listEntriesHandler(entries waitlist.WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		list, err := entries.ListEntries(ctx.Request.Context())
		if err != nil {
			return router.InternalServerErrorResult(waitlist.MessageListFailed)
		}

		router.GetLogger(ctx).Info("Admin listed waitlist entries", "count", len(list))
		return router.OKResult(list, "")
	}
}
