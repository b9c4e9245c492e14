package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/identity-system/internal/core/domain"
	"github.com/99minutos/identity-system/internal/core/ports"
)

const rolesCollection = "roles"

// RoleRepository implements ports.RoleRepository using MongoDB.
type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

type mongoRole struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Username  string    `bson:"username"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (m mongoRole) toDomain() (domain.Role, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return domain.Role{}, fmt.Errorf("decode role id %q: %w", m.ID, err)
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return domain.Role{}, fmt.Errorf("decode role user id %q: %w", m.UserID, err)
	}
	return domain.Role{
		ID:        id,
		UserID:    userID,
		Username:  m.Username,
		Name:      m.Role,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

// Save inserts a new grant. The unique (user_id, role) index turns a second
// grant into domain.ErrRoleAlreadyGranted.
func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	doc := mongoRole{
		ID:        role.ID.String(),
		UserID:    role.UserID.String(),
		Username:  role.Username,
		Role:      role.Name,
		CreatedAt: role.CreatedAt.UTC(),
		UpdatedAt: role.UpdatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s already holds %s", domain.ErrRoleAlreadyGranted, role.Username, role.Name)
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}
	saved := *role
	return &saved, nil
}

func (r *RoleRepository) DeleteByUserAndRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID.String(), "role": role})
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// FindAllByUsername returns the grants of username in the order they were made.
func (r *RoleRepository) FindAllByUsername(ctx context.Context, username string) ([]domain.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		role, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}
