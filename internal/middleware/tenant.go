package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/logger"
)

// RequireTenantContext rejects requests whose token carries no tenant
// context. Every fee operation is tenant-partitioned; there is no fallback
// tenant to default to.
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		tenantID, ok := c.Get("tenant_id").(string)
		if !ok || tenantID == "" {
			log.Warn("Request without tenant context rejected")
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "tenant context required; select a school before accessing fee data",
			})
		}

		return next(c)
	}
}
