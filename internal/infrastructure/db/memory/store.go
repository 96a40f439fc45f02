// Package memory keeps every commerce entity in process memory. It backs the
// STORAGE=memory mode and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

type txKey struct{}

// Store holds all entities behind one lock. Transactions snapshot the maps and
// restore them when the callback fails. Writes outside a transaction wait for
// the running one, so a rollback never discards them.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users           map[string]*domain.User
	customers       map[string]*domain.Customer
	administrators  map[string]*domain.Administrator
	roles           map[string]*domain.Role
	channels        map[string]*domain.Channel
	sellers         map[string]*domain.Seller
	stockLocations  map[string]*domain.StockLocation
	shippingMethods map[string]*domain.ShippingMethod
	paymentMethods  map[string]*domain.PaymentMethod
}

func New() *Store {
	return &Store{
		users:           make(map[string]*domain.User),
		customers:       make(map[string]*domain.Customer),
		administrators:  make(map[string]*domain.Administrator),
		roles:           make(map[string]*domain.Role),
		channels:        make(map[string]*domain.Channel),
		sellers:         make(map[string]*domain.Seller),
		stockLocations:  make(map[string]*domain.StockLocation),
		shippingMethods: make(map[string]*domain.ShippingMethod),
		paymentMethods:  make(map[string]*domain.PaymentMethod),
	}
}

// Repositories exposes the store through the service ports.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Users:           &UserRepository{s: s},
		Customers:       &CustomerRepository{s: s},
		Administrators:  &AdministratorRepository{s: s},
		Roles:           &RoleRepository{s: s},
		Channels:        &ChannelRepository{s: s},
		Sellers:         &SellerRepository{s: s},
		StockLocations:  &StockLocationRepository{s: s},
		ShippingMethods: &ShippingMethodRepository{s: s},
		PaymentMethods:  &PaymentMethodRepository{s: s},
		Tx:              s,
	}
}

// RunInTx serialises transactions. Nested calls join the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lockWrite takes the write lock and returns its release. Outside a
// transaction it also holds txMu for the duration of the write.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// Ping always succeeds; it lets the readiness probe treat every backend alike.
func (s *Store) Ping(context.Context) error { return nil }

type snapshot struct {
	users           map[string]*domain.User
	customers       map[string]*domain.Customer
	administrators  map[string]*domain.Administrator
	roles           map[string]*domain.Role
	channels        map[string]*domain.Channel
	sellers         map[string]*domain.Seller
	stockLocations  map[string]*domain.StockLocation
	shippingMethods map[string]*domain.ShippingMethod
	paymentMethods  map[string]*domain.PaymentMethod
}

// snapshot copies the maps; stored values are replaced rather than mutated
// in place, so sharing pointers is safe.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:           copyMap(s.users),
		customers:       copyMap(s.customers),
		administrators:  copyMap(s.administrators),
		roles:           copyMap(s.roles),
		channels:        copyMap(s.channels),
		sellers:         copyMap(s.sellers),
		stockLocations:  copyMap(s.stockLocations),
		shippingMethods: copyMap(s.shippingMethods),
		paymentMethods:  copyMap(s.paymentMethods),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.customers = snap.customers
	s.administrators = snap.administrators
	s.roles = snap.roles
	s.channels = snap.channels
	s.sellers = snap.sellers
	s.stockLocations = snap.stockLocations
	s.shippingMethods = snap.shippingMethods
	s.paymentMethods = snap.paymentMethods
}

func copyMap[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
