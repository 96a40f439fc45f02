package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// RequirePermission lets the request through when the session holds any of
// the given permissions. SuperAdmin satisfies every requirement.
func RequirePermission(required ...domain.Permission) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(required)+1)
	for _, p := range required {
		allowed[string(p)] = struct{}{}
	}
	allowed[string(domain.PermissionSuperAdmin)] = struct{}{}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms, _ := c.Get(CtxPermissions).([]string)
			for _, p := range perms {
				if _, ok := allowed[p]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
