package domain

import "time"

// Customer is the storefront profile of a user. EmailAddress is the lookup key
// used by promotion; uniqueness is not enforced here.
type Customer struct {
	ID           string    `json:"id"`
	EmailAddress string    `json:"emailAddress"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	UserID       string    `json:"userId,omitempty"`
	ChannelIDs   []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Administrator is a staff account. Soft-deleted administrators (DeletedAt set)
// are ignored by lookups.
type Administrator struct {
	ID           string     `json:"id"`
	EmailAddress string     `json:"emailAddress"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	UserID       string     `json:"userId"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (a *Administrator) IsDeleted() bool {
	return a.DeletedAt != nil
}
