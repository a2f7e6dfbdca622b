package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"wikirelay/internal/config"
	"wikirelay/internal/event"
	"wikirelay/internal/logger"
	"wikirelay/pkg/logging"
	"wikirelay/pkg/metrics"
	"wikirelay/pkg/retry"
)

const (
	kafkaBatchTimeout = 10 * time.Millisecond
	kafkaWriteTimeout = 10 * time.Second
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: kafkaBatchTimeout,
		WriteTimeout: kafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, ev *event.ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   []byte(strconv.FormatInt(ev.ID, 10)),
			Value: body,
			Time:  time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg         config.KafkaConfig
	wg          sync.WaitGroup
	reader      *kafka.Reader
	logger      logger.Logger
	dlqProducer Producer
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	consumer := &KafkaConsumer{
		cfg:    cfg,
		logger: log,
	}

	if cfg.DLQTopic != "" {
		consumer.dlqProducer = NewKafkaProducer(cfg, log)
	}

	return consumer
}

func (c *KafkaConsumer) Consume(ctx context.Context, topic string, handler HandlerFunc) error {
	c.logger.Infow("Creating Kafka reader",
		"topic", topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
	)

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.InfowCtx(ctx, "Started consuming",
			"topic", topic,
		)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.InfowCtx(ctx, "Stopped consuming",
						"topic", topic,
						"reason", "context canceled",
					)
					return
				}
				c.logger.ErrorwCtx(ctx, "Error fetching kafka message",
					"error", err,
					"topic", topic,
				)
				time.Sleep(time.Second)
				continue
			}
			metrics.KafkaMessagesReadTotal.WithLabelValues(topic).Inc()

			var ev event.ChangeEvent
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				c.logger.ErrorwCtx(ctx, "Failed to unmarshal change event",
					"error", err,
					"topic", topic,
				)
				_ = c.reader.CommitMessages(ctx, m)
				continue
			}

			msgCtx := logging.WithEventID(ctx, strconv.FormatInt(ev.ID, 10))
			if ev.Wiki != "" {
				msgCtx = logging.WithWiki(msgCtx, ev.Wiki)
			}

			if err := c.processWithRetry(msgCtx, &ev, handler, topic); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to process event after retries",
					"error", err,
					"topic", topic,
				)
				if c.dlqProducer != nil && c.cfg.DLQTopic != "" {
					if dlqErr := c.sendToDLQ(msgCtx, &ev, err, topic); dlqErr != nil {
						c.logger.ErrorwCtx(msgCtx, "Failed to send event to DLQ",
							"error", dlqErr,
							"topic", topic,
						)
					}
				} else {
					c.logger.WarnwCtx(msgCtx, "No DLQ configured, committing event to avoid blocking",
						"topic", topic,
					)
				}
			}

			if err := c.reader.CommitMessages(ctx, m); err != nil {
				c.logger.ErrorwCtx(msgCtx, "Failed to commit message",
					"error", err,
					"topic", topic,
				)
			}
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

func (c *KafkaConsumer) Close() error {
	var err error
	if c.reader != nil {
		err = c.reader.Close()
	}
	if c.dlqProducer != nil {
		if closeErr := c.dlqProducer.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			}
		}
	}
	c.wg.Wait()
	return err
}

func (c *KafkaConsumer) processWithRetry(ctx context.Context, ev *event.ChangeEvent, handler HandlerFunc, topic string) error {
	policy := retry.Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}

	if c.cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.cfg.Retry.MaxAttempts
	}
	if c.cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = c.cfg.Retry.InitialInterval
	}
	if c.cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = c.cfg.Retry.MaxInterval
	}
	if c.cfg.Retry.Multiplier > 0 {
		policy.Multiplier = c.cfg.Retry.Multiplier
	}
	if c.cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = c.cfg.Retry.MaxElapsedTime
	}

	attempt := 0
	return retry.Retry(ctx, policy, func() error {
		attempt++
		if attempt > 1 {
			metrics.RetryAttemptsTotal.WithLabelValues(topic).Inc()
			c.logger.WarnwCtx(ctx, "Retrying event processing",
				"attempt", attempt,
				"max_attempts", policy.MaxAttempts,
				"topic", topic,
			)
		}
		return handler(ctx, ev)
	})
}

func (c *KafkaConsumer) sendToDLQ(ctx context.Context, ev *event.ChangeEvent, originalErr error, sourceTopic string) error {
	if err := c.dlqProducer.Publish(ctx, c.cfg.DLQTopic, ev); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	metrics.DLQMessagesTotal.WithLabelValues(sourceTopic, "max_retries_exceeded").Inc()
	c.logger.InfowCtx(ctx, "Event sent to DLQ",
		"source_topic", sourceTopic,
		"dlq_topic", c.cfg.DLQTopic,
		"reason", originalErr.Error(),
	)

	return nil
}
