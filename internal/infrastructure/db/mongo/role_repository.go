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

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(collRoles)}
}

type mongoRole struct {
	ID          string    `bson:"_id"`
	Code        string    `bson:"code"`
	Description string    `bson:"description"`
	Permissions []string  `bson:"permissions"`
	ChannelIDs  []string  `bson:"channel_ids"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d mongoRole) toDomain() *domain.Role {
	perms := make([]domain.Permission, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		perms = append(perms, domain.Permission(p))
	}
	return &domain.Role{
		ID:          d.ID,
		Code:        d.Code,
		Description: d.Description,
		Permissions: perms,
		ChannelIDs:  d.ChannelIDs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *RoleRepository) FindByCode(ctx context.Context, code string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&d); err != nil {
		return nil, findErr("find role", err, domain.ErrRoleNotFound)
	}
	return d.toDomain(), nil
}

func (r *RoleRepository) find(ctx context.Context, filter bson.M) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	out := make([]*domain.Role, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *RoleRepository) ListByChannel(ctx context.Context, channelID string) ([]*domain.Role, error) {
	return r.find(ctx, bson.M{"channel_ids": channelID})
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	perms := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, string(p))
	}
	// $addToSet in AssignToChannel needs an array, never null.
	channelIDs := append([]string{}, role.ChannelIDs...)
	_, err := r.coll.InsertOne(ctx, mongoRole{
		ID:          role.ID,
		Code:        role.Code,
		Description: role.Description,
		Permissions: perms,
		ChannelIDs:  channelIDs,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	})
	if err != nil {
		return insertErr("insert role", err)
	}
	return nil
}

func (r *RoleRepository) AssignToChannel(ctx context.Context, roleID, channelID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": roleID}, bson.M{
		"$addToSet": bson.M{"channel_ids": channelID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("assign role to channel: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}
