package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio/pkg/logger"

	amqp "github.com/streadway/amqp"
)

// MessageQueue receives contact message events. Events are published on the
// default exchange, so the routing key doubles as the queue name.
const MessageQueue = "message.created"

// ErrNoChannel is returned when the client has no open channel.
var ErrNoChannel = errors.New("RabbitMQ channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the message
// queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareMessageQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info().Str("queue", MessageQueue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareMessageQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		MessageQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", MessageQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c == nil || c.channel == nil {
		return ErrNoChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logger.Debug().Str("routing_key", routingKey).Int("bytes", len(body)).Msg("published event")
	return nil
}

// ConsumeMessageEvents starts a goroutine that hands every delivery on the
// message queue to handler. Successful deliveries are acked; failures are
// nacked without requeue so a poison message cannot loop forever.
func (c *Client) ConsumeMessageEvents(handler func(msg amqp.Delivery) error) error {
	if c == nil || c.channel == nil {
		return ErrNoChannel
	}

	queue, err := declareMessageQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Info().Str("queue", queue.Name).Msg("waiting for message events")

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				logger.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to process message event")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					logger.Error().Err(nackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to nack message event")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				logger.Error().Err(ackErr).Uint64("delivery_tag", msg.DeliveryTag).Msg("failed to ack message event")
			}
		}
	}()

	return nil
}

// MessageEvent is the payload of a message.created event.
type MessageEvent struct {
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

// DecodeMessageEvent parses an event body.
func DecodeMessageEvent(body []byte) (*MessageEvent, error) {
	var event MessageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode message event: %w", err)
	}
	if event.MessageID == "" {
		return nil, errors.New("message event has no messageId")
	}
	return &event, nil
}

// HandleMessageEvent is the default consumer: it logs a notification for
// each new contact message.
func HandleMessageEvent(msg amqp.Delivery) error {
	event, err := DecodeMessageEvent(msg.Body)
	if err != nil {
		return err
	}
	logger.Info().
		Str("message_id", event.MessageID).
		Str("from", event.UserEmail).
		Str("subject", event.Subject).
		Msg("new contact message")
	return nil
}
