package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost/keycloak-plugins/internal/api/metrics"
	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

type VendorHandler struct {
	service ports.VendorService
}

func NewVendorHandler(service ports.VendorService) *VendorHandler {
	return &VendorHandler{service: service}
}

// CreateKeycloak provisions a vendor: seller, channel, roles, first
// administrator, stock location, shipping methods and Stripe payment method.
//
// @Summary      Provision a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createVendorRequest  true  "Vendor details"
// @Success      201   {object}  domain.VendorProvisioningDetails
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /shop-api/vendors/keycloak [post]
func (h *VendorHandler) CreateKeycloak(c echo.Context) error {
	var req createVendorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	details, err := h.service.Provision(c.Request().Context(), req.toInput())
	if err != nil {
		var perr *domain.ProvisioningError
		if errors.As(err, &perr) {
			metrics.VendorsProvisionedTotal.WithLabelValues(perr.Step).Inc()
		}
		return err
	}
	metrics.VendorsProvisionedTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, details)
}
