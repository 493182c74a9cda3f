package admin

import (
	"github.com/akeren/multiverse-waitlist/config/router"
	"github.com/akeren/multiverse-waitlist/pkg/auth"
	apperrors "github.com/akeren/multiverse-waitlist/pkg/errors"
)

const claimsContextKey = "admin_claims"

// RequireAdmin aborts with 401 unless the request carries a valid, unrevoked admin token.
func RequireAdmin(service AdminService) router.MiddlewareFunc {
	return func(c *router.RequestContext) {
		claims, err := service.Authenticate(c.Request.Context(), auth.BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			result := router.UnauthorizedResult(apperrors.GetHumanReadableMessage(err))
			c.AbortWithStatusJSON(result.StatusCode, result.ToJSON())
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAdmin.
func ClaimsFrom(c *router.RequestContext) *auth.Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
