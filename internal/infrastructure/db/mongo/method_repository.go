package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type mongoOperation struct {
	Code string     `bson:"code"`
	Args []mongoArg `bson:"args"`
}

type mongoArg struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

type mongoTranslation struct {
	LanguageCode string `bson:"language_code"`
	Name         string `bson:"name"`
}

func toMongoOperation(o domain.ConfigurableOperation) mongoOperation {
	args := make([]mongoArg, 0, len(o.Arguments))
	for _, a := range o.Arguments {
		args = append(args, mongoArg{Name: a.Name, Value: a.Value})
	}
	return mongoOperation{Code: o.Code, Args: args}
}

func (o mongoOperation) toDomain() domain.ConfigurableOperation {
	args := make([]domain.ConfigArg, 0, len(o.Args))
	for _, a := range o.Args {
		args = append(args, domain.ConfigArg{Name: a.Name, Value: a.Value})
	}
	return domain.ConfigurableOperation{Code: o.Code, Arguments: args}
}

func toMongoTranslations(ts []domain.Translation) []mongoTranslation {
	out := make([]mongoTranslation, 0, len(ts))
	for _, t := range ts {
		out = append(out, mongoTranslation{LanguageCode: t.LanguageCode, Name: t.Name})
	}
	return out
}

func fromMongoTranslations(ts []mongoTranslation) []domain.Translation {
	out := make([]domain.Translation, 0, len(ts))
	for _, t := range ts {
		out = append(out, domain.Translation{LanguageCode: t.LanguageCode, Name: t.Name})
	}
	return out
}

type ShippingMethodRepository struct {
	coll *mongo.Collection
}

func NewShippingMethodRepository(db *mongo.Database) *ShippingMethodRepository {
	return &ShippingMethodRepository{coll: db.Collection(collShippingMethods)}
}

type mongoShippingMethod struct {
	ID                 string             `bson:"_id"`
	Code               string             `bson:"code"`
	Checker            mongoOperation     `bson:"checker"`
	Calculator         mongoOperation     `bson:"calculator"`
	FulfillmentHandler string             `bson:"fulfillment_handler"`
	Translations       []mongoTranslation `bson:"translations"`
	ChannelIDs         []string           `bson:"channel_ids"`
	CreatedAt          time.Time          `bson:"created_at"`
}

func (r *ShippingMethodRepository) Create(ctx context.Context, m *domain.ShippingMethod) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoShippingMethod{
		ID:                 m.ID,
		Code:               m.Code,
		Checker:            toMongoOperation(m.Checker),
		Calculator:         toMongoOperation(m.Calculator),
		FulfillmentHandler: m.FulfillmentHandler,
		Translations:       toMongoTranslations(m.Translations),
		ChannelIDs:         m.ChannelIDs,
		CreatedAt:          m.CreatedAt,
	})
	if err != nil {
		return insertErr("insert shipping method", err)
	}
	return nil
}

func (r *ShippingMethodRepository) ListByChannel(ctx context.Context, channelID string) ([]*domain.ShippingMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"channel_ids": channelID}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list shipping methods: %w", err)
	}
	var docs []mongoShippingMethod
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode shipping methods: %w", err)
	}
	out := make([]*domain.ShippingMethod, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.ShippingMethod{
			ID:                 d.ID,
			Code:               d.Code,
			Checker:            d.Checker.toDomain(),
			Calculator:         d.Calculator.toDomain(),
			FulfillmentHandler: d.FulfillmentHandler,
			Translations:       fromMongoTranslations(d.Translations),
			ChannelIDs:         d.ChannelIDs,
			CreatedAt:          d.CreatedAt,
		})
	}
	return out, nil
}

type PaymentMethodRepository struct {
	coll *mongo.Collection
}

func NewPaymentMethodRepository(db *mongo.Database) *PaymentMethodRepository {
	return &PaymentMethodRepository{coll: db.Collection(collPaymentMethods)}
}

type mongoPaymentMethod struct {
	ID           string             `bson:"_id"`
	Code         string             `bson:"code"`
	Enabled      bool               `bson:"enabled"`
	Handler      mongoOperation     `bson:"handler"`
	Translations []mongoTranslation `bson:"translations"`
	ChannelIDs   []string           `bson:"channel_ids"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (r *PaymentMethodRepository) Create(ctx context.Context, m *domain.PaymentMethod) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoPaymentMethod{
		ID:           m.ID,
		Code:         m.Code,
		Enabled:      m.Enabled,
		Handler:      toMongoOperation(m.Handler),
		Translations: toMongoTranslations(m.Translations),
		ChannelIDs:   m.ChannelIDs,
		CreatedAt:    m.CreatedAt,
	})
	if err != nil {
		return insertErr("insert payment method", err)
	}
	return nil
}

func (r *PaymentMethodRepository) ListByChannel(ctx context.Context, channelID string) ([]*domain.PaymentMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"channel_ids": channelID}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	var docs []mongoPaymentMethod
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode payment methods: %w", err)
	}
	out := make([]*domain.PaymentMethod, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.PaymentMethod{
			ID:           d.ID,
			Code:         d.Code,
			Enabled:      d.Enabled,
			Handler:      d.Handler.toDomain(),
			Translations: fromMongoTranslations(d.Translations),
			ChannelIDs:   d.ChannelIDs,
			CreatedAt:    d.CreatedAt,
		})
	}
	return out, nil
}
