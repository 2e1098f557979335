package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EntityMapper converts between a domain model and its stored document.
type EntityMapper[Domain any, Entity any] interface {
	ToEntity(domain *Domain) *Entity
	ToDomain(entity *Entity) *Domain
}

// GenericRepository provides the CRUD operations shared by the service repositories.
type GenericRepository[Domain any, Entity any] struct {
	coll   Collection
	mapper EntityMapper[Domain, Entity]
}

func NewGenericRepository[Domain any, Entity any](
	coll Collection,
	mapper EntityMapper[Domain, Entity],
) (*GenericRepository[Domain, Entity], error) {
	if coll == nil {
		return nil, fmt.Errorf("collection is required")
	}
	if mapper == nil {
		return nil, fmt.Errorf("mapper is required")
	}
	return &GenericRepository[Domain, Entity]{
		coll:   coll,
		mapper: mapper,
	}, nil
}

// Insert fails with persistence.ErrDuplicateEntity when a unique index rejects the document.
func (r *GenericRepository[Domain, Entity]) Insert(ctx context.Context, domain *Domain) error {
	if _, err := r.coll.InsertOne(ctx, r.mapper.ToEntity(domain)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", persistence.ErrDuplicateEntity, err)
		}
		return fmt.Errorf("failed to insert entity: %w", err)
	}
	return nil
}

func (r *GenericRepository[Domain, Entity]) FindByID(ctx context.Context, id string) (*Domain, error) {
	return r.FindOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// FindOne returns persistence.ErrEntityNotFound when nothing matches filter.
func (r *GenericRepository[Domain, Entity]) FindOne(ctx context.Context, filter bson.D) (*Domain, error) {
	var entity Entity
	if err := r.coll.FindOne(ctx, filter).Decode(&entity); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, persistence.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return r.mapper.ToDomain(&entity), nil
}

// Find returns every match in sort order. A nil sort leaves the order to the server.
func (r *GenericRepository[Domain, Entity]) Find(ctx context.Context, filter bson.D, sort bson.D) ([]*Domain, error) {
	if filter == nil {
		filter = bson.D{}
	}
	findOpts := options.Find()
	if sort != nil {
		findOpts.SetSort(sort)
	}

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var entities []Entity
	if err = cursor.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}

	domains := make([]*Domain, 0, len(entities))
	for i := range entities {
		domains = append(domains, r.mapper.ToDomain(&entities[i]))
	}
	return domains, nil
}
