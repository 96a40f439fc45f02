package ports

import (
	"context"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// AdministratorService promotes customers to administrators on behalf of a
// signed-in user. Failures, including roles the user may not grant, are
// logged and reported as false.
type AdministratorService interface {
	PromoteAs(ctx context.Context, granterUserID, emailAddress, roleCode string) bool
}

// VendorService provisions a complete vendor in one call.
type VendorService interface {
	Provision(ctx context.Context, input domain.CreateVendorInput) (*domain.VendorProvisioningDetails, error)
}
