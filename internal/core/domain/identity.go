package domain

// ExternalIdentity is the user-info record returned by the identity provider
// for one bearer credential. It is never persisted.
type ExternalIdentity struct {
	Subject           string `json:"sub"`
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
}

// FirstName falls back to the preferred username when the provider has no given name.
func (i *ExternalIdentity) FirstName() string {
	if i.GivenName != "" {
		return i.GivenName
	}
	return i.PreferredUsername
}

// LastName falls back to the preferred username when the provider has no family name.
func (i *ExternalIdentity) LastName() string {
	if i.FamilyName != "" {
		return i.FamilyName
	}
	return i.PreferredUsername
}
