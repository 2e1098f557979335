package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks a Config after defaults were applied.
func Validate(cfg *Config) error {
	if err := validateBrokers(cfg); err != nil {
		return err
	}
	if err := validateIndividualConsumers(cfg.ConsumersConfig.ConsumerConfig); err != nil {
		return err
	}
	return validateProducerConfig(&cfg.ProducerConfig)
}

// validateBrokers validates Kafka brokers configuration
func validateBrokers(cfg *Config) error {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	return nil
}

// validateIndividualConsumers validates all individual consumer configurations
func validateIndividualConsumers(consumers []ConsumerConfig) error {
	seen := make(map[string]struct{}, len(consumers))
	for i := range consumers {
		if err := validateConsumer(i, &consumers[i]); err != nil {
			return err
		}
		if _, dup := seen[consumers[i].Name]; dup {
			return fmt.Errorf("consumer[%d] (%s): duplicate consumer name", i, consumers[i].Name)
		}
		seen[consumers[i].Name] = struct{}{}
	}
	return nil
}

// validateConsumer validates a single consumer configuration
func validateConsumer(index int, consumer *ConsumerConfig) error {
	if strings.TrimSpace(consumer.Name) == "" {
		return fmt.Errorf("consumer[%d]: name cannot be empty", index)
	}
	if strings.TrimSpace(consumer.Topic) == "" {
		return fmt.Errorf("consumer[%d] (%s): topic cannot be empty", index, consumer.Name)
	}
	if strings.TrimSpace(consumer.GroupID) == "" {
		return fmt.Errorf("consumer[%d] (%s): group id cannot be empty", index, consumer.Name)
	}
	if consumer.AutoOffsetReset != "earliest" && consumer.AutoOffsetReset != "latest" {
		return fmt.Errorf("consumer[%d] (%s): auto offset reset must be 'earliest' or 'latest', got: %s",
			index, consumer.Name, consumer.AutoOffsetReset)
	}
	if consumer.BatchSize < minBatchSize || consumer.BatchSize > maxBatchSize {
		return fmt.Errorf("consumer[%d] (%s): batch size must be between %d and %d, got: %d",
			index, consumer.Name, minBatchSize, maxBatchSize, consumer.BatchSize)
	}
	for name, d := range map[string]time.Duration{
		"poll timeout":     consumer.PollTimeout,
		"connect timeout":  consumer.ConnectTimeout,
		"reconnect delay":  consumer.ReconnectDelay,
		"pull error delay": consumer.PullErrorDelay,
		"shutdown timeout": consumer.ShutdownTimeout,
	} {
		if d < minDelay || d > maxDelay {
			return fmt.Errorf("consumer[%d] (%s): %s must be between %v and %v, got: %v",
				index, consumer.Name, name, minDelay, maxDelay, d)
		}
	}
	return nil
}

// validateProducerConfig validates producer configuration
func validateProducerConfig(cfg *ProducerConfig) error {
	if cfg.ConnectTimeout < minDelay || cfg.ConnectTimeout > maxDelay {
		return fmt.Errorf("producer connect timeout must be between %v and %v, got: %v",
			minDelay, maxDelay, cfg.ConnectTimeout)
	}
	if cfg.RetryDelay < minDelay || cfg.RetryDelay > maxDelay {
		return fmt.Errorf("producer retry delay must be between %v and %v, got: %v",
			minDelay, maxDelay, cfg.RetryDelay)
	}
	if cfg.FlushTimeout <= 0 || cfg.FlushTimeout > maxFlushWindow {
		return fmt.Errorf("producer flush timeout must be positive and at most %v, got: %v",
			maxFlushWindow, cfg.FlushTimeout)
	}
	switch cfg.Acks {
	case "all", "-1", "1", "0":
	default:
		return fmt.Errorf("producer acks must be one of all, -1, 1, 0, got: %s", cfg.Acks)
	}
	return nil
}
