package config

import "time"

const (
	// Default values.
	defaultAutoOffsetReset        = "earliest"
	defaultBatchSize              = 10
	defaultPollTimeout            = 1 * time.Second
	defaultConsumerConnectTimeout = 10 * time.Second
	defaultReconnectDelay         = 5 * time.Second
	defaultPullErrorDelay         = 1 * time.Second
	defaultShutdownTimeout        = 30 * time.Second
	defaultProducerConnectTimeout = 10 * time.Second
	defaultProducerRetryDelay     = 5 * time.Second
	defaultFlushTimeout           = 100 * time.Millisecond
	defaultAcks                   = "all"

	// Validation bounds.
	minBatchSize   = 1
	maxBatchSize   = 1000
	minDelay       = 10 * time.Millisecond
	maxDelay       = 10 * time.Minute
	maxFlushWindow = 30 * time.Second
)
