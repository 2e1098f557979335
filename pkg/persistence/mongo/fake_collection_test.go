package mongo

import (
	"context"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection is a test implementation of Collection with overridable behaviour.
type fakeCollection struct {
	findOneFunc        func(ctx context.Context, filter any) *mongodriver.SingleResult
	findFunc           func(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error)
	insertOneFunc      func(ctx context.Context, document any) (*mongodriver.InsertOneResult, error)
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, _ ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	return f.findOneFunc(ctx, filter)
}

func (f *fakeCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	return f.findFunc(ctx, filter, opts...)
}

func (f *fakeCollection) InsertOne(ctx context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	return f.insertOneFunc(ctx, document)
}

func (f *fakeCollection) Indexes() mongodriver.IndexView {
	return mongodriver.IndexView{}
}

func (f *fakeCollection) Name() string {
	return "fake"
}
