package memory

import (
	"context"
	"time"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type UserRepository struct{ s *Store }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.RoleIDs = append([]string(nil), u.RoleIDs...)
	c.AuthenticationMethods = make([]domain.AuthenticationMethod, 0, len(u.AuthenticationMethods))
	for _, m := range u.AuthenticationMethods {
		switch v := m.(type) {
		case *domain.ExternalAuthenticationMethod:
			cp := *v
			c.AuthenticationMethods = append(c.AuthenticationMethods, &cp)
		case *domain.NativeAuthenticationMethod:
			cp := *v
			c.AuthenticationMethods = append(c.AuthenticationMethods, &cp)
		}
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *domain.User
	for _, u := range r.s.users {
		if u.Identifier != identifier {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			found = u
		}
	}
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(found), nil
}

func (r *UserRepository) FindByExternalIdentifier(_ context.Context, strategy, externalID string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u := r.byExternal(strategy, externalID); u != nil {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

// byExternal must be called with the lock held.
func (r *UserRepository) byExternal(strategy, externalID string) *domain.User {
	for _, u := range r.s.users {
		if m, ok := u.ExternalMethod(strategy); ok && m.ExternalIdentifier == externalID {
			return u
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.users[u.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, m := range u.AuthenticationMethods {
		if ext, ok := m.(*domain.ExternalAuthenticationMethod); ok && r.byExternal(ext.Strategy, ext.ExternalIdentifier) != nil {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID, roleID string) error {
	defer r.s.lockWrite(ctx)()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.HasRole(roleID) {
		return nil
	}
	updated := cloneUser(u)
	updated.RoleIDs = append(updated.RoleIDs, roleID)
	updated.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = updated
	return nil
}

func (r *UserRepository) SetLastLogin(ctx context.Context, userID string, at time.Time) error {
	defer r.s.lockWrite(ctx)()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	updated := cloneUser(u)
	updated.LastLogin = &at
	r.s.users[userID] = updated
	return nil
}
