package kafka

import (
	"encoding/json"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/reports"
)

type producerConfig interface {
	Brokers() []string
	SummariesTopic() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	return &Producer{
		producer: producer,
		topic:    cfg.SummariesTopic(),
	}, err
}

func (p *Producer) ProduceSummaryRequest(req reports.SummaryRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal summary request")
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(req.Username),
		Value: sarama.ByteEncoder(raw),
	})
	return errors.Wrap(err, "produce summary request")
}

func (p *Producer) Close() {
	err := p.producer.Close()
	if err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
