package domain

import "time"

const DefaultChannelCode = "__default_channel__"

// Channel is a tenant-scoped sales context. Code and Token are unique.
type Channel struct {
	ID                    string    `json:"id"`
	Code                  string    `json:"code"`
	Token                 string    `json:"token"`
	SellerID              string    `json:"sellerId,omitempty"`
	DefaultCurrencyCode   string    `json:"defaultCurrencyCode"`
	DefaultLanguageCode   string    `json:"defaultLanguageCode"`
	PricesIncludeTax      bool      `json:"pricesIncludeTax"`
	DefaultShippingZoneID string    `json:"defaultShippingZoneId,omitempty"`
	DefaultTaxZoneID      string    `json:"defaultTaxZoneId,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Seller is a vendor record; each seller owns exactly one channel.
type Seller struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CustomFields SellerCustomFields `json:"-"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// SellerCustomFields holds private seller attributes that are never exposed to
// storefront clients.
type SellerCustomFields struct {
	// ConnectedAccountID is the id used to process connected payments.
	ConnectedAccountID string
}

// StockLocation is a warehouse assigned to one or more channels.
type StockLocation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ChannelIDs  []string  `json:"channelIds"`
	CreatedAt   time.Time `json:"createdAt"`
}
