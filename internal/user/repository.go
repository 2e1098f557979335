package user

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "users"

type userEntity struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
}

type userMapper struct{}

func (userMapper) ToEntity(u *User) *userEntity {
	return &userEntity{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func (userMapper) ToDomain(e *userEntity) *User {
	return &User{ID: e.ID, Email: e.Email, Name: e.Name, CreatedAt: e.CreatedAt.UTC()}
}

type repository struct {
	*mongo.GenericRepository[User, userEntity]
	coll mongo.Collection
}

func newRepository(coll mongo.Collection) (*repository, error) {
	generic, err := mongo.NewGenericRepository[User, userEntity](coll, userMapper{})
	if err != nil {
		return nil, err
	}
	return &repository{GenericRepository: generic, coll: coll}, nil
}

// ensureIndexes makes email unique.
func (r *repository) ensureIndexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, r.coll, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
}
