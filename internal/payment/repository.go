package payment

import (
	"context"
	"errors"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "payments"

type paymentEntity struct {
	ID          string    `bson:"_id"`
	OrderID     string    `bson:"orderId"`
	UserID      string    `bson:"userId"`
	Amount      float64   `bson:"amount"`
	Status      string    `bson:"status"`
	CompletedAt time.Time `bson:"completedAt"`
}

type paymentMapper struct{}

func (paymentMapper) ToEntity(p *Payment) *paymentEntity {
	return &paymentEntity{
		ID:          p.ID,
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CompletedAt: p.CompletedAt,
	}
}

func (paymentMapper) ToDomain(e *paymentEntity) *Payment {
	return &Payment{
		ID:          e.ID,
		OrderID:     e.OrderID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Status:      Status(e.Status),
		CompletedAt: e.CompletedAt.UTC(),
	}
}

type repository struct {
	generic *mongo.GenericRepository[Payment, paymentEntity]
	coll    mongo.Collection
}

func newRepository(coll mongo.Collection) (*repository, error) {
	generic, err := mongo.NewGenericRepository[Payment, paymentEntity](coll, paymentMapper{})
	if err != nil {
		return nil, err
	}
	return &repository{generic: generic, coll: coll}, nil
}

func (r *repository) Insert(ctx context.Context, p *Payment) error {
	return r.generic.Insert(ctx, p)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payment, error) {
	p, err := r.generic.FindByID(ctx, id)
	if errors.Is(err, persistence.ErrEntityNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// FindByOrderID returns the payments of orderID, oldest first. Redelivered order.created events
// can leave more than one.
func (r *repository) FindByOrderID(ctx context.Context, orderID string) ([]*Payment, error) {
	return r.generic.Find(ctx,
		bson.D{{Key: "orderId", Value: orderID}},
		bson.D{{Key: "completedAt", Value: 1}},
	)
}

func (r *repository) ensureIndexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, r.coll, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("order_payments"),
	})
}
