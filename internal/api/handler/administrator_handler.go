package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost/keycloak-plugins/internal/api/metrics"
	"github.com/tradepost/keycloak-plugins/internal/api/middleware"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

type AdministratorHandler struct {
	service ports.AdministratorService
}

func NewAdministratorHandler(service ports.AdministratorService) *AdministratorHandler {
	return &AdministratorHandler{service: service}
}

// CreateKeycloak promotes an existing customer to administrator with the given role.
// Promotion failures, including roles the caller may not grant, are reported
// as success=false, never as an error status.
//
// @Summary      Promote a customer to administrator
// @Tags         administrators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAdministratorRequest  true  "Customer email and role code"
// @Success      200   {object}  createAdministratorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin-api/administrators/keycloak [post]
func (h *AdministratorHandler) CreateKeycloak(c echo.Context) error {
	var req createAdministratorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	granterID, _ := c.Get(middleware.CtxUserID).(string)
	if granterID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	ok := h.service.PromoteAs(c.Request().Context(), granterID, req.EmailAddress, req.RoleCode)
	result := "failure"
	if ok {
		result = "success"
	}
	metrics.PromotionsTotal.WithLabelValues(result).Inc()

	return c.JSON(http.StatusOK, createAdministratorResponse{Success: ok})
}
