package domain

import (
	"fmt"
	"time"
)

const (
	SuperAdminRoleCode = "__super_admin_role__"
	CustomerRoleCode   = "__customer_role__"
)

// Permission names follow the commerce platform's permission enum.
type Permission string

const (
	PermissionAuthenticated Permission = "Authenticated"
	PermissionSuperAdmin    Permission = "SuperAdmin"
	PermissionOwner         Permission = "Owner"

	PermissionCreateAdministrator Permission = "CreateAdministrator"
	PermissionReadAdministrator   Permission = "ReadAdministrator"
	PermissionUpdateAdministrator Permission = "UpdateAdministrator"

	PermissionCreateCatalog Permission = "CreateCatalog"
	PermissionReadCatalog   Permission = "ReadCatalog"
	PermissionUpdateCatalog Permission = "UpdateCatalog"
	PermissionDeleteCatalog Permission = "DeleteCatalog"

	PermissionCreateOrder Permission = "CreateOrder"
	PermissionReadOrder   Permission = "ReadOrder"
	PermissionUpdateOrder Permission = "UpdateOrder"
	PermissionDeleteOrder Permission = "DeleteOrder"

	PermissionReadShippingMethod   Permission = "ReadShippingMethod"
	PermissionCreateShippingMethod Permission = "CreateShippingMethod"
	PermissionUpdateShippingMethod Permission = "UpdateShippingMethod"

	PermissionReadPromotion Permission = "ReadPromotion"
	PermissionReadCustomer  Permission = "ReadCustomer"

	PermissionCreateTag Permission = "CreateTag"
	PermissionReadTag   Permission = "ReadTag"
	PermissionUpdateTag Permission = "UpdateTag"
	PermissionDeleteTag Permission = "DeleteTag"

	PermissionCreateSeller        Permission = "CreateSeller"
	PermissionCreateChannel       Permission = "CreateChannel"
	PermissionCreateStockLocation Permission = "CreateStockLocation"
	PermissionCreatePaymentMethod Permission = "CreatePaymentMethod"
)

// Vendor role tiers: manager ⊃ staff ⊃ volunteer. Only the manager tier can
// create or manage administrators.
var (
	ManagerPermissions = []Permission{
		PermissionCreateAdministrator,
		PermissionReadAdministrator,
		PermissionUpdateAdministrator,
		PermissionCreateCatalog,
		PermissionUpdateCatalog,
		PermissionReadCatalog,
		PermissionDeleteCatalog,
		PermissionReadOrder,
		PermissionCreateOrder,
		PermissionUpdateOrder,
		PermissionDeleteOrder,
		PermissionReadShippingMethod,
		PermissionUpdateShippingMethod,
		PermissionReadPromotion,
		PermissionReadCustomer,
		PermissionCreateTag,
		PermissionReadTag,
		PermissionUpdateTag,
		PermissionDeleteTag,
	}

	StaffPermissions = []Permission{
		PermissionCreateCatalog,
		PermissionUpdateCatalog,
		PermissionReadCatalog,
		PermissionCreateOrder,
		PermissionReadOrder,
		PermissionUpdateOrder,
		PermissionReadPromotion,
		PermissionReadCustomer,
		PermissionCreateTag,
		PermissionReadTag,
		PermissionUpdateTag,
	}

	VolunteerPermissions = []Permission{
		PermissionCreateCatalog,
		PermissionUpdateCatalog,
		PermissionReadCatalog,
		PermissionReadOrder,
		PermissionUpdateOrder,
		PermissionReadPromotion,
		PermissionReadCustomer,
		PermissionCreateTag,
		PermissionReadTag,
		PermissionUpdateTag,
	}
)

// AllPermissions is granted to the super-admin role.
func AllPermissions() []Permission {
	seen := map[Permission]struct{}{}
	out := []Permission{PermissionAuthenticated, PermissionSuperAdmin, PermissionOwner}
	for _, p := range out {
		seen[p] = struct{}{}
	}
	extra := append(append([]Permission{}, ManagerPermissions...),
		PermissionCreateShippingMethod,
		PermissionCreateSeller,
		PermissionCreateChannel,
		PermissionCreateStockLocation,
		PermissionCreatePaymentMethod,
	)
	for _, p := range extra {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Role is a named permission bundle scoped to one or more channels.
type Role struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	ChannelIDs  []string     `json:"channelIds"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (r *Role) Grants(p Permission) bool {
	for _, have := range r.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

func (r *Role) InChannel(channelID string) bool {
	for _, id := range r.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// CanGrant reports whether an administrator holding granterRoles may hand out
// role. A super-admin may grant any role. Anyone else needs
// CreateAdministrator plus every permission of role, within each channel role
// is scoped to. The super-admin role and unscoped roles are reserved.
func CanGrant(granterRoles []*Role, role *Role) error {
	for _, r := range granterRoles {
		if r.Grants(PermissionSuperAdmin) {
			return nil
		}
	}
	if role.Code == SuperAdminRoleCode || role.Grants(PermissionSuperAdmin) || role.Grants(PermissionOwner) {
		return fmt.Errorf("%w: role %s is reserved for super-admins", ErrForbidden, role.Code)
	}
	if len(role.ChannelIDs) == 0 {
		return fmt.Errorf("%w: role %s is not scoped to a channel", ErrForbidden, role.Code)
	}

	for _, channelID := range role.ChannelIDs {
		var held []*Role
		for _, r := range granterRoles {
			if r.InChannel(channelID) {
				held = append(held, r)
			}
		}
		scope := &Role{Permissions: PermissionsOf(held)}
		if !scope.Grants(PermissionCreateAdministrator) {
			return fmt.Errorf("%w: cannot create administrators in channel %s", ErrForbidden, channelID)
		}
		for _, p := range role.Permissions {
			if !scope.Grants(p) {
				return fmt.Errorf("%w: role %s grants %s", ErrForbidden, role.Code, p)
			}
		}
	}
	return nil
}
