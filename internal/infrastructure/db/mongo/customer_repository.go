package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// emailCollation compares email addresses case-insensitively.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(collCustomers)}
}

type mongoCustomer struct {
	ID           string    `bson:"_id"`
	EmailAddress string    `bson:"email_address"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	UserID       string    `bson:"user_id,omitempty"`
	ChannelIDs   []string  `bson:"channel_ids,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d mongoCustomer) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:           d.ID,
		EmailAddress: d.EmailAddress,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		UserID:       d.UserID,
		ChannelIDs:   d.ChannelIDs,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *CustomerRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoCustomer
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, findErr("find customer", err, domain.ErrCustomerNotFound)
	}
	return doc.toDomain(), nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"email_address": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoCustomer{
		ID:           c.ID,
		EmailAddress: c.EmailAddress,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		UserID:       c.UserID,
		ChannelIDs:   c.ChannelIDs,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	})
	if err != nil {
		return insertErr("insert customer", err)
	}
	return nil
}

type AdministratorRepository struct {
	coll *mongo.Collection
}

func NewAdministratorRepository(db *mongo.Database) *AdministratorRepository {
	return &AdministratorRepository{coll: db.Collection(collAdministrators)}
}

type mongoAdministrator struct {
	ID           string     `bson:"_id"`
	EmailAddress string     `bson:"email_address"`
	FirstName    string     `bson:"first_name"`
	LastName     string     `bson:"last_name"`
	UserID       string     `bson:"user_id"`
	DeletedAt    *time.Time `bson:"deleted_at"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func (r *AdministratorRepository) findActive(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Administrator, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter["deleted_at"] = nil
	var doc mongoAdministrator
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, findErr("find administrator", err, domain.ErrAdministratorNotFound)
	}
	return &domain.Administrator{
		ID:           doc.ID,
		EmailAddress: doc.EmailAddress,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		UserID:       doc.UserID,
		DeletedAt:    doc.DeletedAt,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (r *AdministratorRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.Administrator, error) {
	return r.findActive(ctx, bson.M{"email_address": email}, options.FindOne().SetCollation(emailCollation))
}

func (r *AdministratorRepository) FindActiveByUserID(ctx context.Context, userID string) (*domain.Administrator, error) {
	return r.findActive(ctx, bson.M{"user_id": userID})
}

func (r *AdministratorRepository) Create(ctx context.Context, a *domain.Administrator) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoAdministrator{
		ID:           a.ID,
		EmailAddress: a.EmailAddress,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		UserID:       a.UserID,
		DeletedAt:    a.DeletedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	})
	if err != nil {
		return insertErr("insert administrator", err)
	}
	return nil
}
