package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type testDomain struct {
	ID   string
	Name string
}

type testEntity struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type testMapper struct{}

func (testMapper) ToEntity(d *testDomain) *testEntity { return &testEntity{ID: d.ID, Name: d.Name} }
func (testMapper) ToDomain(e *testEntity) *testDomain { return &testDomain{ID: e.ID, Name: e.Name} }

func newTestRepository(t *testing.T, coll Collection) *GenericRepository[testDomain, testEntity] {
	t.Helper()
	repo, err := NewGenericRepository[testDomain, testEntity](coll, testMapper{})
	require.NoError(t, err)
	return repo
}

func TestNewGenericRepository(t *testing.T) {
	_, err := NewGenericRepository[testDomain, testEntity](nil, testMapper{})
	assert.ErrorContains(t, err, "collection is required")

	_, err = NewGenericRepository[testDomain, testEntity](&fakeCollection{}, nil)
	assert.ErrorContains(t, err, "mapper is required")
}

func TestGenericRepository_Insert(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "inserted"},
		{
			name:    "duplicate key",
			err:     mongodriver.WriteException{WriteErrors: []mongodriver.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}},
			wantErr: persistence.ErrDuplicateEntity,
		},
		{name: "driver failure", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inserted any
			repo := newTestRepository(t, &fakeCollection{
				insertOneFunc: func(_ context.Context, document any) (*mongodriver.InsertOneResult, error) {
					inserted = document
					return &mongodriver.InsertOneResult{InsertedID: "u1"}, tt.err
				},
			})

			err := repo.Insert(context.Background(), &testDomain{ID: "u1", Name: "Alice"})

			assert.Equal(t, &testEntity{ID: "u1", Name: "Alice"}, inserted)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.err != nil:
				assert.ErrorContains(t, err, "failed to insert entity")
				assert.NotErrorIs(t, err, persistence.ErrDuplicateEntity)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenericRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		var gotFilter any
		repo := newTestRepository(t, &fakeCollection{
			findOneFunc: func(_ context.Context, filter any) *mongodriver.SingleResult {
				gotFilter = filter
				return mongodriver.NewSingleResultFromDocument(bson.D{{Key: "_id", Value: "u1"}, {Key: "name", Value: "Alice"}}, nil, nil)
			},
		})

		got, err := repo.FindByID(context.Background(), "u1")

		require.NoError(t, err)
		assert.Equal(t, &testDomain{ID: "u1", Name: "Alice"}, got)
		assert.Equal(t, bson.D{{Key: "_id", Value: "u1"}}, gotFilter)
	})

	t.Run("not found", func(t *testing.T) {
		repo := newTestRepository(t, &fakeCollection{
			findOneFunc: func(context.Context, any) *mongodriver.SingleResult {
				return mongodriver.NewSingleResultFromDocument(bson.D{}, mongodriver.ErrNoDocuments, nil)
			},
		})

		_, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, persistence.ErrEntityNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		repo := newTestRepository(t, &fakeCollection{
			findOneFunc: func(context.Context, any) *mongodriver.SingleResult {
				return mongodriver.NewSingleResultFromDocument(bson.D{}, errors.New("timeout"), nil)
			},
		})

		_, err := repo.FindByID(context.Background(), "u1")

		assert.ErrorContains(t, err, "failed to decode entity")
		assert.NotErrorIs(t, err, persistence.ErrEntityNotFound)
	})
}

func TestGenericRepository_Find(t *testing.T) {
	var gotFilter any
	repo := newTestRepository(t, &fakeCollection{
		findFunc: func(_ context.Context, filter any, _ ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
			gotFilter = filter
			return mongodriver.NewCursorFromDocuments([]any{
				bson.D{{Key: "_id", Value: "o1"}, {Key: "name", Value: "first"}},
				bson.D{{Key: "_id", Value: "o2"}, {Key: "name", Value: "second"}},
			}, nil, nil)
		},
	})

	got, err := repo.Find(context.Background(), nil, bson.D{{Key: "createdAt", Value: 1}})

	require.NoError(t, err)
	assert.Equal(t, []*testDomain{{ID: "o1", Name: "first"}, {ID: "o2", Name: "second"}}, got)
	assert.Equal(t, bson.D{}, gotFilter)
}

func TestGenericRepository_Find_Error(t *testing.T) {
	repo := newTestRepository(t, &fakeCollection{
		findFunc: func(context.Context, any, ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
			return nil, errors.New("server selection timeout")
		},
	})

	_, err := repo.Find(context.Background(), bson.D{{Key: "userId", Value: "u1"}}, nil)

	assert.ErrorContains(t, err, "failed to query entities")
}
