package handler

import (
	"time"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type authenticateRequest struct {
	Token string `json:"token" validate:"required"`
}

type passwordLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type authenticationMethodResponse struct {
	Strategy           string `json:"strategy"`
	ExternalIdentifier string `json:"externalIdentifier"`
}

type userResponse struct {
	ID                    string                         `json:"id"`
	Identifier            string                         `json:"identifier"`
	Verified              bool                           `json:"verified"`
	RoleIDs               []string                       `json:"roleIds"`
	AuthenticationMethods []authenticationMethodResponse `json:"authenticationMethods"`
	LastLogin             *time.Time                     `json:"lastLogin,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type createAdministratorRequest struct {
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	RoleCode     string `json:"roleCode"     validate:"required"`
}

type createAdministratorResponse struct {
	Success bool `json:"success"`
}

// Fees are in minor currency units.
type createVendorRequest struct {
	SellerName          string `json:"sellerName"          validate:"required"`
	EmailAddress        string `json:"emailAddress"        validate:"required,email"`
	VendorHandlingFee   int64  `json:"vendorHandlingFee"   validate:"min=0"`
	PlatformHandlingFee int64  `json:"platformHandlingFee" validate:"min=0"`
	StripeAPISecret     string `json:"stripeAPISecret"     validate:"required"`
	StripeWebhookSecret string `json:"stripeWebhookSecret" validate:"required"`
}

func toUserResponse(u *domain.User) userResponse {
	methods := make([]authenticationMethodResponse, 0, len(u.AuthenticationMethods))
	for _, m := range u.AuthenticationMethods {
		methods = append(methods, authenticationMethodResponse{
			Strategy:           m.StrategyName(),
			ExternalIdentifier: domain.ExternalIdentifierOf(m),
		})
	}
	roleIDs := u.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return userResponse{
		ID:                    u.ID,
		Identifier:            u.Identifier,
		Verified:              u.Verified,
		RoleIDs:               roleIDs,
		AuthenticationMethods: methods,
		LastLogin:             u.LastLogin,
	}
}

func (r createVendorRequest) toInput() domain.CreateVendorInput {
	return domain.CreateVendorInput{
		SellerName:          r.SellerName,
		EmailAddress:        r.EmailAddress,
		VendorHandlingFee:   domain.Money(r.VendorHandlingFee),
		PlatformHandlingFee: domain.Money(r.PlatformHandlingFee),
		StripeAPISecret:     r.StripeAPISecret,
		StripeWebhookSecret: r.StripeWebhookSecret,
	}
}
