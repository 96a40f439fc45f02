package memory

import (
	"context"
	"sort"
	"time"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type RoleRepository struct{ s *Store }

func cloneRole(r *domain.Role) *domain.Role {
	c := *r
	c.Permissions = append([]domain.Permission(nil), r.Permissions...)
	c.ChannelIDs = append([]string(nil), r.ChannelIDs...)
	return &c
}

func (r *RoleRepository) FindByCode(_ context.Context, code string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.Code == code {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

// FindByIDs skips ids that do not exist.
func (r *RoleRepository) FindByIDs(_ context.Context, ids []string) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			out = append(out, cloneRole(role))
		}
	}
	return out, nil
}

func (r *RoleRepository) ListByChannel(_ context.Context, channelID string) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Role
	for _, role := range r.s.roles {
		if role.InChannel(channelID) {
			out = append(out, cloneRole(role))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	defer r.s.lockWrite(ctx)()
	for _, existing := range r.s.roles {
		if existing.ID == role.ID || existing.Code == role.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.roles[role.ID] = cloneRole(role)
	return nil
}

func (r *RoleRepository) AssignToChannel(ctx context.Context, roleID, channelID string) error {
	defer r.s.lockWrite(ctx)()
	role, ok := r.s.roles[roleID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	if role.InChannel(channelID) {
		return nil
	}
	updated := cloneRole(role)
	updated.ChannelIDs = append(updated.ChannelIDs, channelID)
	updated.UpdatedAt = time.Now().UTC()
	r.s.roles[roleID] = updated
	return nil
}

type ChannelRepository struct{ s *Store }

func (r *ChannelRepository) FindByCode(_ context.Context, code string) (*domain.Channel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ch := range r.s.channels {
		if ch.Code == code {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, domain.ErrChannelNotFound
}

func (r *ChannelRepository) Create(ctx context.Context, ch *domain.Channel) error {
	defer r.s.lockWrite(ctx)()
	for _, existing := range r.s.channels {
		if existing.ID == ch.ID || existing.Code == ch.Code || existing.Token == ch.Token {
			return domain.ErrDuplicate
		}
	}
	cp := *ch
	r.s.channels[ch.ID] = &cp
	return nil
}

type SellerRepository struct{ s *Store }

func (r *SellerRepository) FindByID(_ context.Context, id string) (*domain.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seller, ok := r.s.sellers[id]
	if !ok {
		return nil, domain.ErrSellerNotFound
	}
	cp := *seller
	return &cp, nil
}

func (r *SellerRepository) Create(ctx context.Context, seller *domain.Seller) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.sellers[seller.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *seller
	r.s.sellers[seller.ID] = &cp
	return nil
}

// Count returns the number of sellers.
func (r *SellerRepository) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.sellers)
}

type StockLocationRepository struct{ s *Store }

func (r *StockLocationRepository) Create(ctx context.Context, l *domain.StockLocation) error {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.stockLocations[l.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *l
	cp.ChannelIDs = append([]string(nil), l.ChannelIDs...)
	r.s.stockLocations[l.ID] = &cp
	return nil
}

func (r *StockLocationRepository) ListByChannel(_ context.Context, channelID string) ([]*domain.StockLocation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.StockLocation
	for _, l := range r.s.stockLocations {
		if containsID(l.ChannelIDs, channelID) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

type ShippingMethodRepository struct{ s *Store }

func (r *ShippingMethodRepository) Create(ctx context.Context, m *domain.ShippingMethod) error {
	defer r.s.lockWrite(ctx)()
	for _, existing := range r.s.shippingMethods {
		if existing.ID == m.ID || existing.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *m
	cp.ChannelIDs = append([]string(nil), m.ChannelIDs...)
	r.s.shippingMethods[m.ID] = &cp
	return nil
}

func (r *ShippingMethodRepository) ListByChannel(_ context.Context, channelID string) ([]*domain.ShippingMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.ShippingMethod
	for _, m := range r.s.shippingMethods {
		if containsID(m.ChannelIDs, channelID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type PaymentMethodRepository struct{ s *Store }

func (r *PaymentMethodRepository) Create(ctx context.Context, m *domain.PaymentMethod) error {
	defer r.s.lockWrite(ctx)()
	for _, existing := range r.s.paymentMethods {
		if existing.ID == m.ID || existing.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *m
	cp.ChannelIDs = append([]string(nil), m.ChannelIDs...)
	r.s.paymentMethods[m.ID] = &cp
	return nil
}

func (r *PaymentMethodRepository) ListByChannel(_ context.Context, channelID string) ([]*domain.PaymentMethod, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.PaymentMethod
	for _, m := range r.s.paymentMethods {
		if containsID(m.ChannelIDs, channelID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
