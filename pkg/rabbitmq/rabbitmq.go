package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"

	"storerate/internal/models"
)

// RatingEventsQueue is the durable queue rating events are routed to.
const RatingEventsQueue = "rating_events"

// Client holds the RabbitMQ connection and the channel used for publishing.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp channels must not be used for concurrent publishes
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ and declares the rating events queue.
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

	if err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", RatingEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		RatingEventsQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", RatingEventsQueue, err)
	}
	return nil
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
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message. An empty exchange routes by queue
// name.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
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

	log.WithFields(log.Fields{
		"exchange":    exchange,
		"routing_key": routingKey,
		"bytes":       len(body),
	}).Debug("published message")
	return nil
}

// ConsumeRatingEvents starts a goroutine that passes every message on the
// rating events queue to messageHandler. Consuming uses its own channel.
// Messages the handler rejects are dropped, not requeued.
func (c *Client) ConsumeRatingEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.conn == nil {
		return fmt.Errorf("RabbitMQ connection is not available for consumption")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	if err := declareQueue(ch); err != nil {
		ch.Close()
		return err
	}

	msgs, err := ch.Consume(
		RatingEventsQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.WithField("queue", RatingEventsQueue).Info("waiting for rating events")

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("dropping rating event")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					log.WithError(nackErr).WithField("delivery_tag", msg.DeliveryTag).Error("error nacking message")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.WithError(ackErr).WithField("delivery_tag", msg.DeliveryTag).Error("error acking message")
			}
		}
		log.Info("rating event consumer stopped")
	}()

	return nil
}

// HandleRatingMessage writes a rating event to the activity log.
func HandleRatingMessage(msg amqp.Delivery) error {
	var event models.RatingEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode rating event: %w", err)
	}
	if event.Type == "" || event.StoreID == "" {
		return fmt.Errorf("rating event is missing type or store id")
	}

	log.WithFields(log.Fields{
		"event":          event.Type,
		"rating_id":      event.RatingID,
		"store_id":       event.StoreID,
		"user_id":        event.UserID,
		"rating":         event.Rating,
		"average_rating": event.AverageRating,
		"total_ratings":  event.TotalRatings,
		"occurred_at":    event.OccurredAt,
	}).Info("rating activity")
	return nil
}
