package memory

import (
	"context"
	"strings"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type CustomerRepository struct{ s *Store }

func (r *CustomerRepository) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if strings.EqualFold(c.EmailAddress, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *CustomerRepository) FindByUserID(_ context.Context, userID string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

type AdministratorRepository struct{ s *Store }

func (r *AdministratorRepository) FindActiveByEmail(_ context.Context, email string) (*domain.Administrator, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.administrators {
		if !a.IsDeleted() && strings.EqualFold(a.EmailAddress, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAdministratorNotFound
}

func (r *AdministratorRepository) FindActiveByUserID(_ context.Context, userID string) (*domain.Administrator, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.administrators {
		if !a.IsDeleted() && a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAdministratorNotFound
}

func (r *AdministratorRepository) Create(ctx context.Context, a *domain.Administrator) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.administrators[a.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *a
	r.s.administrators[a.ID] = &cp
	return nil
}

// Count returns the number of administrators, soft-deleted ones included.
func (r *AdministratorRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.administrators)
}

// Count returns the number of customers.
func (r *CustomerRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.customers)
}
