package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

const routingKey = "video.generation"

// Producer enqueues video-generation jobs. The message id carries the diary
// id so consumers and operators can correlate deliveries to one job key.
type Producer struct {
	channel  *amqp.Channel
	exchange string
}

func NewProducer(conn *amqp.Connection, exchange string) (*Producer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open producer channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Producer{channel: ch, exchange: exchange}, nil
}

func (p *Producer) Enqueue(ctx context.Context, job entity.VideoJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    job.DiaryID.String(),
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}
