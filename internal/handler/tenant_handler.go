package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/tenant"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/database"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/logger"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/prometheus"
)

func newResolver() *tenant.Resolver {
	return tenant.NewResolver(store.NewGorm(database.GetDB()))
}

// echoPrincipal exposes the authenticated email set by AuthMiddleware as a
// tenant.Principal.
type echoPrincipal struct {
	c echo.Context
}

func (p echoPrincipal) CurrentEmail(context.Context) (string, error) {
	email, _ := p.c.Get("email").(string)
	return email, nil
}

// ResolveTenant handles explicit email-to-tenant resolution (admin and
// diagnostic use).
func ResolveTenant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.TenantResolutionCounter.Inc()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant resolution request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	res, err := newResolver().ResolveByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return tenantErrorResponse(c, err)
	}

	log.Info("Tenant resolved",
		zap.String("email", req.Email),
		zap.String("tenant_id", res.Tenant.ID))
	return c.JSON(http.StatusOK, res)
}

// ResolveCurrentTenant resolves the tenant of the authenticated principal.
func ResolveCurrentTenant(c echo.Context) error {
	prometheus.TenantResolutionCounter.Inc()

	defer prometheus.TrackDBOperation("query")(time.Now())

	res, err := newResolver().ResolveCurrent(c.Request().Context(), echoPrincipal{c})
	if err != nil {
		return tenantErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// tenantErrorResponse renders a tagged resolution failure with its
// user-actionable suggestions. Unknown errors surface as 500s.
func tenantErrorResponse(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var terr *tenant.Error
	if !errors.As(err, &terr) {
		log.Error("Tenant resolution failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	prometheus.RecordTenantError(string(terr.Code))
	log.Warn("Tenant resolution rejected",
		zap.String("code", string(terr.Code)),
		zap.String("message", terr.Message))

	status := http.StatusNotFound
	switch terr.Code {
	case tenant.CodeNotAuthenticated:
		status = http.StatusUnauthorized
	case tenant.CodeInvalidEmail:
		status = http.StatusBadRequest
	case tenant.CodeInactive:
		status = http.StatusForbidden
	case tenant.CodeConfigError:
		status = http.StatusConflict
	}

	resp := echo.Map{
		"error":       terr.Message,
		"code":        terr.Code,
		"suggestions": terr.Suggestions,
	}
	if terr.Status != "" {
		resp["tenant_status"] = terr.Status
	}
	return c.JSON(status, resp)
}
