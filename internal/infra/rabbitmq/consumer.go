package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/port"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, body []byte) error

const attemptHeader = "x-attempt"

// Consumer runs the job-processing loop: dequeue, execute, ack. A failed
// delivery is republished with exponential backoff until MaxDeliveries, then
// parked in the DLQ. Jobs are consumed strictly one at a time.
type Consumer struct {
	conn          *amqp.Connection
	channel       *amqp.Channel
	queue         string
	dlq           string
	maxDeliveries int
	baseDelay     time.Duration
	handler       MessageHandler
	logger        *zap.Logger
}

type ConsumerConfig struct {
	URL           string
	Queue         string
	Exchange      string
	DLQ           string
	Prefetch      int
	MaxDeliveries int
	BaseDelayMs   int
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.Queue, cfg.DLQ} {
		_, err = ch.QueueDeclare(q, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	err = ch.QueueBind(cfg.Queue, routingKey, cfg.Exchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	err = ch.Qos(cfg.Prefetch, 0, false)
	if err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{
		conn:          conn,
		channel:       ch,
		queue:         cfg.Queue,
		dlq:           cfg.DLQ,
		maxDeliveries: cfg.MaxDeliveries,
		baseDelay:     time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		handler:       handler,
		logger:        logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.queue,
		"",
		false, // autoAck=false
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("consuming jobs", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer shutting down")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Info("delivery channel closed")
				return nil
			}
			c.processDelivery(ctx, d)
		}
	}
}

func (c *Consumer) processDelivery(ctx context.Context, d amqp.Delivery) {
	err := c.handler(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	if errors.Is(err, port.ErrUnprocessable) {
		c.logger.Warn("unprocessable delivery, parking in DLQ",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		_ = c.publishToDLQ(ctx, d, err.Error())
		_ = d.Ack(false)
		return
	}

	attempt := c.attemptFromHeaders(d)
	log := c.logger.With(
		zap.String("message_id", d.MessageId),
		zap.Int("attempt", attempt),
	)

	if attempt >= c.maxDeliveries {
		log.Warn("delivery attempts exhausted, parking in DLQ", zap.Error(err))
		_ = c.publishToDLQ(ctx, d, err.Error())
		_ = d.Ack(false)
		return
	}

	delay := c.backoff(attempt)
	log.Warn("job failed, redelivering with backoff",
		zap.Duration("delay", delay),
		zap.Error(err),
	)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		_ = d.Nack(false, true)
		return
	}

	if err := c.republish(ctx, d, attempt+1); err != nil {
		log.Error("republish failed, requeueing instead", zap.Error(err))
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) republish(ctx context.Context, d amqp.Delivery, attempt int) error {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempt)

	return c.channel.PublishWithContext(ctx,
		"",
		c.queue,
		false, false,
		amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			DeliveryMode: amqp.Persistent,
			MessageId:    d.MessageId,
			Timestamp:    time.Now().UTC(),
			Headers:      headers,
		},
	)
}

func (c *Consumer) publishToDLQ(ctx context.Context, d amqp.Delivery, reason string) error {
	return c.channel.PublishWithContext(ctx,
		"",
		c.dlq,
		false, false,
		amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			DeliveryMode: amqp.Persistent,
			MessageId:    d.MessageId,
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-dlq-reason": reason,
			},
		},
	)
}

func (c *Consumer) attemptFromHeaders(d amqp.Delivery) int {
	if d.Headers == nil {
		return 1
	}
	if raw, ok := d.Headers[attemptHeader]; ok {
		switch v := raw.(type) {
		case int32:
			return int(v)
		case int64:
			return int(v)
		case int:
			return v
		}
	}
	return 1
}

func (c *Consumer) backoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > 60*time.Second {
		delay = 60 * time.Second
	}
	return delay
}

// Ready reports whether the AMQP connection is still usable.
func (c *Consumer) Ready() error {
	if c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("amqp connection closed")
	}
	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
