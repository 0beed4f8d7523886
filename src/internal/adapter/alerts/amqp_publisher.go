package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/api-sage/expense-limit-service/src/internal/domain"
	"github.com/api-sage/expense-limit-service/src/internal/logger"
	"github.com/api-sage/expense-limit-service/src/internal/usecase/service_interfaces"
	"github.com/rabbitmq/amqp091-go"
)

var _ service_interfaces.AlertPublisher = (*AMQPPublisher)(nil)

const publishTimeout = 5 * time.Second

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher sends limit-exceeded events to a durable direct exchange.
// The queue is bound with its own name as routing key.
type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      publishChannel
	exchangeName string
	queueName    string
	now          func() time.Time
}

func NewAMQPPublisher(url, exchangeName, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(channel, exchangeName, queueName); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	publisher := newPublisher(channel, exchangeName, queueName)
	publisher.conn = conn
	return publisher, nil
}

func newPublisher(channel publishChannel, exchangeName, queueName string) *AMQPPublisher {
	return &AMQPPublisher{
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		now:          time.Now,
	}
}

func declareTopology(channel *amqp091.Channel, exchangeName, queueName string) error {
	if err := channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := channel.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (p *AMQPPublisher) PublishLimitExceeded(ctx context.Context, event domain.LimitExceededEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal limit exceeded event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.TransactionID,
			Type:         "limit_exceeded",
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish limit exceeded event: %w", err)
	}

	logger.Info("limit exceeded event published", logger.Fields{
		"transactionId": event.TransactionID,
		"accountClient": event.AccountClient,
		"exchange":      p.exchangeName,
		"queue":         p.queueName,
	})
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
