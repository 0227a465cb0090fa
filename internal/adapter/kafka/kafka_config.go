package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// NewGroup builds the consumer group for the fulfillment stream. Offsets
// start at newest: on a fresh group, historical fulfillment events predate
// any order this instance could own.
func NewGroup(brokers []string, groupID string, dialTimeout time.Duration) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	if dialTimeout > 0 {
		cfg.Net.DialTimeout = dialTimeout
	}
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}
