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

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collUsers)}
}

type mongoAuthMethod struct {
	Kind               string `bson:"kind"`
	Strategy           string `bson:"strategy"`
	ExternalIdentifier string `bson:"external_identifier,omitempty"`
	Identifier         string `bson:"identifier,omitempty"`
	PasswordHash       string `bson:"password_hash,omitempty"`
}

type mongoUser struct {
	ID          string            `bson:"_id"`
	Identifier  string            `bson:"identifier"`
	Verified    bool              `bson:"verified"`
	RoleIDs     []string          `bson:"role_ids"`
	AuthMethods []mongoAuthMethod `bson:"auth_methods"`
	LastLogin   *time.Time        `bson:"last_login,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

const (
	kindNative   = "native"
	kindExternal = "external"
)

func toMongoUser(u *domain.User) mongoUser {
	doc := mongoUser{
		ID:         u.ID,
		Identifier: u.Identifier,
		Verified:   u.Verified,
		RoleIDs:    u.RoleIDs,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if doc.RoleIDs == nil {
		doc.RoleIDs = []string{}
	}
	doc.AuthMethods = make([]mongoAuthMethod, 0, len(u.AuthenticationMethods))
	for _, m := range u.AuthenticationMethods {
		switch v := m.(type) {
		case *domain.ExternalAuthenticationMethod:
			doc.AuthMethods = append(doc.AuthMethods, mongoAuthMethod{
				Kind:               kindExternal,
				Strategy:           v.Strategy,
				ExternalIdentifier: v.ExternalIdentifier,
			})
		case *domain.NativeAuthenticationMethod:
			doc.AuthMethods = append(doc.AuthMethods, mongoAuthMethod{
				Kind:         kindNative,
				Strategy:     domain.StrategyNative,
				Identifier:   v.Identifier,
				PasswordHash: v.PasswordHash,
			})
		}
	}
	return doc
}

func (d mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:         d.ID,
		Identifier: d.Identifier,
		Verified:   d.Verified,
		RoleIDs:    d.RoleIDs,
		LastLogin:  d.LastLogin,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, m := range d.AuthMethods {
		switch m.Kind {
		case kindExternal:
			u.AuthenticationMethods = append(u.AuthenticationMethods, &domain.ExternalAuthenticationMethod{
				Strategy:           m.Strategy,
				ExternalIdentifier: m.ExternalIdentifier,
			})
		case kindNative:
			u.AuthenticationMethods = append(u.AuthenticationMethods, &domain.NativeAuthenticationMethod{
				Identifier:   m.Identifier,
				PasswordHash: m.PasswordHash,
			})
		}
	}
	return u
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, findErr("find user", err, domain.ErrUserNotFound)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"identifier": identifier}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *UserRepository) FindByExternalIdentifier(ctx context.Context, strategy, externalID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"auth_methods": bson.M{"$elemMatch": bson.M{
		"kind":                kindExternal,
		"strategy":            strategy,
		"external_identifier": externalID,
	}}})
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoUser(u)); err != nil {
		return insertErr("insert user", err)
	}
	return nil
}

func (r *UserRepository) AddRole(ctx context.Context, userID, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"role_ids": roleID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetLastLogin(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"last_login": at}})
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
