package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrAdministratorNotFound = errors.New("administrator not found")
	ErrRoleNotFound          = errors.New("role not found")
	ErrChannelNotFound       = errors.New("channel not found")
	ErrSellerNotFound        = errors.New("seller not found")

	// ErrDuplicate is returned by storage when a unique key (channel code or token,
	// role code, external identity) is already taken.
	ErrDuplicate = errors.New("entity already exists")

	ErrAuthenticationFailed = errors.New("authentication denied")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidInput         = errors.New("invalid input")

	// ErrConfiguration signals that the platform is missing something provisioning
	// depends on: a registered checker/calculator/handler or the super-admin account.
	ErrConfiguration = errors.New("platform configuration error")
)

// ProvisioningError reports the vendor provisioning step that aborted the run.
// Writes performed by earlier steps are not rolled back.
type ProvisioningError struct {
	Step string
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision vendor: step %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
