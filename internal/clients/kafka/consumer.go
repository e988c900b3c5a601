package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/reports"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type summaryGenerator interface {
	GenerateSummary(ctx context.Context, username string) (string, error)
}

type summarySender interface {
	SendMessage(text string, chatID int64) error
}

type summaryCache interface {
	CacheSummary(username, summary string) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	generator     summaryGenerator
	sender        summarySender
	cache         summaryCache
}

// NewConsumer builds the reporter-side consumer. cache may be nil when the
// summary cache is disabled.
func NewConsumer(cfg consumerConfig, generator summaryGenerator, sender summarySender, cache summaryCache) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.SummariesTopic(),
		generator:     generator,
		sender:        sender,
		cache:         cache,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var req reports.SummaryRequest
		err := json.Unmarshal(message.Value, &req)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received summary request",
				zap.ByteString("key", message.Key),
				zap.String("user", req.Username),
				zap.Int64("chatID", req.ChatID),
			)
			c.processRequest(session.Context(), &req)
		}
		session.MarkMessage(message, "")
	}

	return nil
}

func (c *Consumer) processRequest(ctx context.Context, req *reports.SummaryRequest) {
	summary, err := c.generator.GenerateSummary(ctx, req.Username)
	if err != nil {
		logger.Error("failed to generate summary", zap.Error(err))
		return
	}
	if c.cache != nil {
		if err = c.cache.CacheSummary(req.Username, summary); err != nil {
			logger.Warn("failed to cache summary", zap.Error(err))
		}
	}
	if err = c.sender.SendMessage(summary, req.ChatID); err != nil {
		logger.Error("failed to send summary", zap.Error(err))
	}
}
