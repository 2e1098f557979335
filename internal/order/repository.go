package order

import (
	"context"
	"errors"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "orders"

type itemEntity struct {
	ProductID string  `bson:"productId"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
}

type orderEntity struct {
	ID          string       `bson:"_id"`
	UserID      string       `bson:"userId"`
	Items       []itemEntity `bson:"items"`
	TotalAmount float64      `bson:"totalAmount"`
	CreatedAt   time.Time    `bson:"createdAt"`
}

type orderMapper struct{}

func (orderMapper) ToEntity(o *Order) *orderEntity {
	return &orderEntity{
		ID:     o.ID,
		UserID: o.UserID,
		Items: lo.Map(o.Items, func(i Item, _ int) itemEntity {
			return itemEntity(i)
		}),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
}

func (orderMapper) ToDomain(e *orderEntity) *Order {
	return &Order{
		ID:     e.ID,
		UserID: e.UserID,
		Items: lo.Map(e.Items, func(i itemEntity, _ int) Item {
			return Item(i)
		}),
		TotalAmount: e.TotalAmount,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

type repository struct {
	generic *mongo.GenericRepository[Order, orderEntity]
	coll    mongo.Collection
}

func newRepository(coll mongo.Collection) (*repository, error) {
	generic, err := mongo.NewGenericRepository[Order, orderEntity](coll, orderMapper{})
	if err != nil {
		return nil, err
	}
	return &repository{generic: generic, coll: coll}, nil
}

func (r *repository) Insert(ctx context.Context, o *Order) error {
	return r.generic.Insert(ctx, o)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	o, err := r.generic.FindByID(ctx, id)
	if errors.Is(err, persistence.ErrEntityNotFound) {
		return nil, ErrNotFound
	}
	return o, err
}

// FindByUserID returns the orders of userID, oldest first.
func (r *repository) FindByUserID(ctx context.Context, userID string) ([]*Order, error) {
	return r.generic.Find(ctx,
		bson.D{{Key: "userId", Value: userID}},
		bson.D{{Key: "createdAt", Value: 1}},
	)
}

func (r *repository) ensureIndexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, r.coll, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("user_orders"),
	})
}
