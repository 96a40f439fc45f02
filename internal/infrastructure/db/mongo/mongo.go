package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	collUsers           = "users"
	collCustomers       = "customers"
	collAdministrators  = "administrators"
	collRoles           = "roles"
	collChannels        = "channels"
	collSellers         = "sellers"
	collStockLocations  = "stock_locations"
	collShippingMethods = "shipping_methods"
	collPaymentMethods  = "payment_methods"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
	// Transactions enables multi-document transactions; requires a replica set.
	Transactions bool
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// NewRepositories builds every repository on db.
func NewRepositories(db *mongo.Database, transactions bool) ports.Repositories {
	return ports.Repositories{
		Users:           NewUserRepository(db),
		Customers:       NewCustomerRepository(db),
		Administrators:  NewAdministratorRepository(db),
		Roles:           NewRoleRepository(db),
		Channels:        NewChannelRepository(db),
		Sellers:         NewSellerRepository(db),
		StockLocations:  NewStockLocationRepository(db),
		ShippingMethods: NewShippingMethodRepository(db),
		PaymentMethods:  NewPaymentMethodRepository(db),
		Tx:              NewTransactor(db.Client(), transactions),
	}
}

// EnsureIndexes creates the unique keys the repositories rely on to report
// domain.ErrDuplicate.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "identifier", Value: 1}}},
			{
				Keys: bson.D{
					{Key: "auth_methods.strategy", Value: 1},
					{Key: "auth_methods.external_identifier", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
					"auth_methods.external_identifier": bson.M{"$exists": true},
				}),
			},
		},
		collCustomers:       {{Keys: bson.D{{Key: "email_address", Value: 1}}}, {Keys: bson.D{{Key: "user_id", Value: 1}}}},
		collAdministrators:  {{Keys: bson.D{{Key: "email_address", Value: 1}}}, {Keys: bson.D{{Key: "user_id", Value: 1}}}},
		collRoles:           {{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "channel_ids", Value: 1}}}},
		collChannels:        {{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "token", Value: 1}}, Options: unique}},
		collStockLocations:  {{Keys: bson.D{{Key: "channel_ids", Value: 1}}}},
		collShippingMethods: {{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "channel_ids", Value: 1}}}},
		collPaymentMethods:  {{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "channel_ids", Value: 1}}}},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Transactor runs callbacks inside a MongoDB session transaction. With
// transactions disabled (standalone servers) the callback runs directly.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Pinger adapts a client to ports.HealthChecker.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

func insertErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func findErr(op string, err, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
