package ports

import (
	"context"
	"time"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// UserRepository persists users together with their authentication methods.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// FindByExternalIdentifier resolves the single user linked to externalID
	// within the strategy namespace.
	FindByExternalIdentifier(ctx context.Context, strategy, externalID string) (*domain.User, error)
	// Create stores u and fills its ID. A second external method for the same
	// strategy and identifier yields domain.ErrDuplicate.
	Create(ctx context.Context, u *domain.User) error
	// AddRole grants roleID to the user; granting an existing role is a no-op.
	AddRole(ctx context.Context, userID, roleID string) error
	SetLastLogin(ctx context.Context, userID string, at time.Time) error
}

type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) error
}

// AdministratorRepository lookups ignore soft-deleted administrators.
type AdministratorRepository interface {
	FindActiveByEmail(ctx context.Context, email string) (*domain.Administrator, error)
	FindActiveByUserID(ctx context.Context, userID string) (*domain.Administrator, error)
	Create(ctx context.Context, a *domain.Administrator) error
}

type RoleRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Role, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Role, error)
	ListByChannel(ctx context.Context, channelID string) ([]*domain.Role, error)
	// Create fails with domain.ErrDuplicate when the code is taken.
	Create(ctx context.Context, r *domain.Role) error
	AssignToChannel(ctx context.Context, roleID, channelID string) error
}

type ChannelRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Channel, error)
	// Create fails with domain.ErrDuplicate when the code or token is taken.
	Create(ctx context.Context, c *domain.Channel) error
}

type SellerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Seller, error)
	Create(ctx context.Context, s *domain.Seller) error
}

type StockLocationRepository interface {
	Create(ctx context.Context, l *domain.StockLocation) error
	ListByChannel(ctx context.Context, channelID string) ([]*domain.StockLocation, error)
}

type ShippingMethodRepository interface {
	Create(ctx context.Context, m *domain.ShippingMethod) error
	ListByChannel(ctx context.Context, channelID string) ([]*domain.ShippingMethod, error)
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, m *domain.PaymentMethod) error
	ListByChannel(ctx context.Context, channelID string) ([]*domain.PaymentMethod, error)
}

// Transactor runs fn so that the writes it performs through the repositories
// commit or roll back together. Repositories pick the transaction up from ctx.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories bundles every store the services depend on.
type Repositories struct {
	Users           UserRepository
	Customers       CustomerRepository
	Administrators  AdministratorRepository
	Roles           RoleRepository
	Channels        ChannelRepository
	Sellers         SellerRepository
	StockLocations  StockLocationRepository
	ShippingMethods ShippingMethodRepository
	PaymentMethods  PaymentMethodRepository
	Tx              Transactor
}

// HealthChecker is implemented by backends the readiness probe pings.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
