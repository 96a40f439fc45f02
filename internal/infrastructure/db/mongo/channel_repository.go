package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type ChannelRepository struct {
	coll *mongo.Collection
}

func NewChannelRepository(db *mongo.Database) *ChannelRepository {
	return &ChannelRepository{coll: db.Collection(collChannels)}
}

type mongoChannel struct {
	ID                    string    `bson:"_id"`
	Code                  string    `bson:"code"`
	Token                 string    `bson:"token"`
	SellerID              string    `bson:"seller_id,omitempty"`
	DefaultCurrencyCode   string    `bson:"default_currency_code"`
	DefaultLanguageCode   string    `bson:"default_language_code"`
	PricesIncludeTax      bool      `bson:"prices_include_tax"`
	DefaultShippingZoneID string    `bson:"default_shipping_zone_id,omitempty"`
	DefaultTaxZoneID      string    `bson:"default_tax_zone_id,omitempty"`
	CreatedAt             time.Time `bson:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at"`
}

func (r *ChannelRepository) FindByCode(ctx context.Context, code string) (*domain.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d mongoChannel
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&d); err != nil {
		return nil, findErr("find channel", err, domain.ErrChannelNotFound)
	}
	return &domain.Channel{
		ID:                    d.ID,
		Code:                  d.Code,
		Token:                 d.Token,
		SellerID:              d.SellerID,
		DefaultCurrencyCode:   d.DefaultCurrencyCode,
		DefaultLanguageCode:   d.DefaultLanguageCode,
		PricesIncludeTax:      d.PricesIncludeTax,
		DefaultShippingZoneID: d.DefaultShippingZoneID,
		DefaultTaxZoneID:      d.DefaultTaxZoneID,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}, nil
}

func (r *ChannelRepository) Create(ctx context.Context, c *domain.Channel) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoChannel{
		ID:                    c.ID,
		Code:                  c.Code,
		Token:                 c.Token,
		SellerID:              c.SellerID,
		DefaultCurrencyCode:   c.DefaultCurrencyCode,
		DefaultLanguageCode:   c.DefaultLanguageCode,
		PricesIncludeTax:      c.PricesIncludeTax,
		DefaultShippingZoneID: c.DefaultShippingZoneID,
		DefaultTaxZoneID:      c.DefaultTaxZoneID,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	})
	if err != nil {
		return insertErr("insert channel", err)
	}
	return nil
}

type SellerRepository struct {
	coll *mongo.Collection
}

func NewSellerRepository(db *mongo.Database) *SellerRepository {
	return &SellerRepository{coll: db.Collection(collSellers)}
}

// The connected account id is stored with the seller but never leaves the
// domain layer.
type mongoSeller struct {
	ID                 string    `bson:"_id"`
	Name               string    `bson:"name"`
	ConnectedAccountID string    `bson:"connected_account_id"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

func (r *SellerRepository) FindByID(ctx context.Context, id string) (*domain.Seller, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d mongoSeller
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, findErr("find seller", err, domain.ErrSellerNotFound)
	}
	return &domain.Seller{
		ID:           d.ID,
		Name:         d.Name,
		CustomFields: domain.SellerCustomFields{ConnectedAccountID: d.ConnectedAccountID},
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func (r *SellerRepository) Create(ctx context.Context, s *domain.Seller) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoSeller{
		ID:                 s.ID,
		Name:               s.Name,
		ConnectedAccountID: s.CustomFields.ConnectedAccountID,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	})
	if err != nil {
		return insertErr("insert seller", err)
	}
	return nil
}

type StockLocationRepository struct {
	coll *mongo.Collection
}

func NewStockLocationRepository(db *mongo.Database) *StockLocationRepository {
	return &StockLocationRepository{coll: db.Collection(collStockLocations)}
}

type mongoStockLocation struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	ChannelIDs  []string  `bson:"channel_ids"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (r *StockLocationRepository) Create(ctx context.Context, l *domain.StockLocation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoStockLocation{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		ChannelIDs:  l.ChannelIDs,
		CreatedAt:   l.CreatedAt,
	})
	if err != nil {
		return insertErr("insert stock location", err)
	}
	return nil
}

func (r *StockLocationRepository) ListByChannel(ctx context.Context, channelID string) ([]*domain.StockLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"channel_ids": channelID})
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}
	var docs []mongoStockLocation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock locations: %w", err)
	}
	out := make([]*domain.StockLocation, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.StockLocation{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			ChannelIDs:  d.ChannelIDs,
			CreatedAt:   d.CreatedAt,
		})
	}
	return out, nil
}
