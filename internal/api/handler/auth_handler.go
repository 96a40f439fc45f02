package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tradepost/keycloak-plugins/internal/api/metrics"
	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AdminAuthenticate exchanges an identity provider access token for an admin session.
//
// @Summary      Authenticate an administrator with Keycloak
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authenticateRequest  true  "Keycloak access token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin-api/authenticate [post]
func (h *AuthHandler) AdminAuthenticate(c echo.Context) error {
	return h.authenticate(c, domain.APITypeAdmin)
}

// ShopAuthenticate exchanges an identity provider access token for a customer
// session, registering the customer on first login.
//
// @Summary      Authenticate a customer with Keycloak
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authenticateRequest  true  "Keycloak access token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /shop-api/authenticate [post]
func (h *AuthHandler) ShopAuthenticate(c echo.Context) error {
	return h.authenticate(c, domain.APITypeShop)
}

func (h *AuthHandler) authenticate(c echo.Context, apiType string) error {
	var req authenticateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), apiType, req.Token)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(apiType, loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(apiType, "success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

// PasswordLogin authenticates a native admin account such as the super-admin.
//
// @Summary      Login with identifier and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordLoginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin-api/login [post]
func (h *AuthHandler) PasswordLogin(c echo.Context) error {
	var req passwordLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, user, err := h.authService.LoginWithPassword(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(domain.APITypeAdmin, loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(domain.APITypeAdmin, "success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

func loginResult(err error) string {
	if errors.Is(err, domain.ErrAuthenticationFailed) || errors.Is(err, domain.ErrInvalidCredentials) {
		return "denied"
	}
	return "error"
}
