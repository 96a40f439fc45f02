package domain

// API types a request can arrive through.
const (
	APITypeAdmin = "admin"
	APITypeShop  = "shop"
)

// RequestContext is the explicit execution context passed to privileged
// operations: who is acting and with which permissions.
type RequestContext struct {
	APIType     string
	User        *User
	Permissions []Permission
}

// HasPermission reports whether the context may perform an operation that
// requires p. SuperAdmin implies every permission.
func (rc *RequestContext) HasPermission(p Permission) bool {
	if rc == nil {
		return false
	}
	for _, have := range rc.Permissions {
		if have == p || have == PermissionSuperAdmin {
			return true
		}
	}
	return false
}

// PermissionsOf flattens the permissions of roles without duplicates.
func PermissionsOf(roles []*Role) []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, r := range roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
