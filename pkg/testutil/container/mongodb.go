// Package container starts throwaway infrastructure for integration tests.
package container

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const defaultMongoImage = "mongo:7"

// MongoDB is a running container and the URI that reaches it.
type MongoDB struct {
	Container        *mongodb.MongoDBContainer
	ConnectionString string
}

type mongoOptions struct {
	image      string
	replicaSet string
}

type MongoOption func(*mongoOptions)

func WithImage(image string) MongoOption {
	return func(o *mongoOptions) {
		o.image = image
	}
}

func WithReplicaSet(name string) MongoOption {
	return func(o *mongoOptions) {
		o.replicaSet = name
	}
}

// StartMongoDB runs a MongoDB container. Call Terminate when done.
func StartMongoDB(ctx context.Context, opts ...MongoOption) (*MongoDB, error) {
	options := &mongoOptions{image: defaultMongoImage}
	for _, opt := range opts {
		opt(options)
	}

	var customizers []testcontainers.ContainerCustomizer
	if options.replicaSet != "" {
		customizers = append(customizers, mongodb.WithReplicaSet(options.replicaSet))
	}

	c, err := mongodb.Run(ctx, options.image, customizers...)
	if err != nil {
		return nil, fmt.Errorf("failed to start mongodb container: %w", err)
	}

	uri, err := c.ConnectionString(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoDB{Container: c, ConnectionString: uri}, nil
}

func (m *MongoDB) Terminate() error {
	if err := testcontainers.TerminateContainer(m.Container); err != nil {
		return fmt.Errorf("failed to terminate mongodb container: %w", err)
	}
	return nil
}

// MongoForTest starts MongoDB for t and terminates it on cleanup.
// The test is skipped in -short mode and when docker is not reachable.
func MongoForTest(t *testing.T, opts ...MongoOption) *MongoDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongodb integration test in short mode")
	}

	m, err := StartMongoDB(context.Background(), opts...)
	if err != nil {
		t.Skipf("mongodb container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := m.Terminate(); err != nil {
			t.Logf("terminate mongodb: %v", err)
		}
	})
	return m
}
