package domain

import "time"

// Strategy names under which external identities are linked to local users.
const (
	StrategyKeycloakAdmin    = "keycloakAdmin"
	StrategyKeycloakCustomer = "keycloakCustomer"
	StrategyNative           = "native"
)

// User is a local account. It authenticates through one or more methods and
// carries the roles granted to it.
type User struct {
	ID                    string                 `json:"id"`
	Identifier            string                 `json:"identifier"`
	Verified              bool                   `json:"verified"`
	RoleIDs               []string               `json:"roleIds"`
	AuthenticationMethods []AuthenticationMethod `json:"-"`
	LastLogin             *time.Time             `json:"lastLogin,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt"`
}

// HasRole reports whether roleID is already granted to the user.
func (u *User) HasRole(roleID string) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// ExternalMethod returns the external authentication method registered for
// strategy, if any. A user has at most one per strategy.
func (u *User) ExternalMethod(strategy string) (*ExternalAuthenticationMethod, bool) {
	for _, m := range u.AuthenticationMethods {
		if ext, ok := m.(*ExternalAuthenticationMethod); ok && ext.Strategy == strategy {
			return ext, true
		}
	}
	return nil, false
}

// AuthenticationMethod is a closed union: *NativeAuthenticationMethod or
// *ExternalAuthenticationMethod.
type AuthenticationMethod interface {
	StrategyName() string
	authenticationMethod()
}

// NativeAuthenticationMethod is an identifier/password credential.
type NativeAuthenticationMethod struct {
	Identifier   string
	PasswordHash string
}

func (*NativeAuthenticationMethod) StrategyName() string { return StrategyNative }
func (*NativeAuthenticationMethod) authenticationMethod() {}

// ExternalAuthenticationMethod links the user to a subject at an identity provider.
type ExternalAuthenticationMethod struct {
	Strategy           string
	ExternalIdentifier string
}

func (m *ExternalAuthenticationMethod) StrategyName() string { return m.Strategy }
func (*ExternalAuthenticationMethod) authenticationMethod() {}

// ExternalIdentifierOf returns the provider subject stored on m, or "" for
// methods that are not backed by an external provider.
func ExternalIdentifierOf(m AuthenticationMethod) string {
	switch v := m.(type) {
	case *ExternalAuthenticationMethod:
		return v.ExternalIdentifier
	case *NativeAuthenticationMethod:
		return ""
	default:
		return ""
	}
}

// FirstExternalIdentifier extracts the external identifier of the user's first
// authentication method. Promotion treats it as optional metadata.
func FirstExternalIdentifier(u *User) string {
	if u == nil || len(u.AuthenticationMethods) == 0 {
		return ""
	}
	return ExternalIdentifierOf(u.AuthenticationMethods[0])
}
