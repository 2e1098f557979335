package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

var (
	errTopicNotFound     = errors.New("topic not found in metadata")
	errTopicNoPartitions = errors.New("topic has no partitions")
)

type metadataProvider interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
}

// checkTopic verifies that topic exists and has partitions, bounded by timeout and the ctx deadline.
func checkTopic(ctx context.Context, p metadataProvider, topic string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	meta, err := p.GetMetadata(&topic, false, int(timeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("failed to get metadata for topic %s: %w", topic, err)
	}

	topicMeta, ok := meta.Topics[topic]
	if !ok {
		return fmt.Errorf("%w: %s", errTopicNotFound, topic)
	}
	if topicMeta.Error.Code() != kafka.ErrNoError {
		return fmt.Errorf("topic %s has error: %w", topic, topicMeta.Error)
	}
	if len(topicMeta.Partitions) == 0 {
		return fmt.Errorf("%w: %s", errTopicNoPartitions, topic)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
