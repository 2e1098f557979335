package config

// ApplyDefaults fills zero values. It is exported for callers that build a Config by hand.
func ApplyDefaults(cfg *Config) {
	if cfg.ConsumersConfig.DefaultAutoOffsetReset == "" {
		cfg.ConsumersConfig.DefaultAutoOffsetReset = defaultAutoOffsetReset
	}

	for i := range cfg.ConsumersConfig.ConsumerConfig {
		applyConsumerDefaults(&cfg.ConsumersConfig.ConsumerConfig[i], &cfg.ConsumersConfig)
	}

	applyProducerDefaults(&cfg.ProducerConfig)
}

// applyConsumerDefaults applies defaults to an individual consumer configuration
func applyConsumerDefaults(consumer *ConsumerConfig, globalConfig *ConsumersConfig) {
	if consumer.GroupID == "" {
		consumer.GroupID = globalConfig.DefaultGroupID
	}
	if consumer.AutoOffsetReset == "" {
		consumer.AutoOffsetReset = globalConfig.DefaultAutoOffsetReset
	}
	if consumer.BatchSize == 0 {
		consumer.BatchSize = defaultBatchSize
	}
	if consumer.PollTimeout == 0 {
		consumer.PollTimeout = defaultPollTimeout
	}
	if consumer.ConnectTimeout == 0 {
		consumer.ConnectTimeout = defaultConsumerConnectTimeout
	}
	if consumer.ReconnectDelay == 0 {
		consumer.ReconnectDelay = defaultReconnectDelay
	}
	if consumer.PullErrorDelay == 0 {
		consumer.PullErrorDelay = defaultPullErrorDelay
	}
	if consumer.ShutdownTimeout == 0 {
		consumer.ShutdownTimeout = defaultShutdownTimeout
	}
}

func applyProducerDefaults(producer *ProducerConfig) {
	if producer.ConnectTimeout == 0 {
		producer.ConnectTimeout = defaultProducerConnectTimeout
	}
	if producer.RetryDelay == 0 {
		producer.RetryDelay = defaultProducerRetryDelay
	}
	if producer.FlushTimeout == 0 {
		producer.FlushTimeout = defaultFlushTimeout
	}
	if producer.Acks == "" {
		producer.Acks = defaultAcks
	}
}
