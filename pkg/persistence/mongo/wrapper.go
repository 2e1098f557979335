package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionWrapper applies the query timeout and the optional bulkhead to every call.
type CollectionWrapper struct {
	coll     Collection
	timeout  time.Duration
	bulkhead *Bulkhead
}

func NewCollectionWrapper(coll Collection, timeout time.Duration, bulkhead *Bulkhead) *CollectionWrapper {
	return &CollectionWrapper{
		coll:     coll,
		timeout:  timeout,
		bulkhead: bulkhead,
	}
}

func (w *CollectionWrapper) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.timeout)
}

func (w *CollectionWrapper) execute(ctx context.Context, fn func() error) error {
	if w.bulkhead == nil {
		return fn()
	}
	return w.bulkhead.Execute(ctx, fn)
}

func (w *CollectionWrapper) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()

	var result *mongodriver.SingleResult
	if err := w.execute(timeoutCtx, func() error {
		result = w.coll.FindOne(timeoutCtx, filter, opts...)
		return nil
	}); err != nil {
		return mongodriver.NewSingleResultFromDocument(bson.D{}, err, nil)
	}
	return result
}

// Find leaves the cursor usable after return; iterate it with the caller's ctx.
func (w *CollectionWrapper) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()

	var cursor *mongodriver.Cursor
	err := w.execute(timeoutCtx, func() error {
		var err error
		cursor, err = w.coll.Find(timeoutCtx, filter, opts...)
		return err
	})
	return cursor, err
}

func (w *CollectionWrapper) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongodriver.InsertOneResult, error) {
	timeoutCtx, cancel := w.withTimeout(ctx)
	defer cancel()

	var result *mongodriver.InsertOneResult
	err := w.execute(timeoutCtx, func() error {
		var err error
		result, err = w.coll.InsertOne(timeoutCtx, document, opts...)
		return err
	})
	return result, err
}

func (w *CollectionWrapper) Indexes() mongodriver.IndexView {
	return w.coll.Indexes()
}

func (w *CollectionWrapper) Name() string {
	return w.coll.Name()
}
