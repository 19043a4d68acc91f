package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/instant-messaging/internal/model"
)

const messageQueueName = "message.posted"

// Publisher sends MessagePostedEvent payloads to the "message.posted"
// queue. Publishing is best effort: errors are logged and returned so
// the caller can ignore them without interrupting the request flow.
type Publisher struct{ URL string }

// NewPublisher returns a publisher bound to the broker URL.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// MessagePosted publishes the event for a stored message. Messages
// are marked persistent so they survive broker restarts.
func (p *Publisher) MessagePosted(ctx context.Context, msg model.Message) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(messageQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(MessagePostedEvent{
		MessageID:   msg.ID,
		ChannelID:   msg.Channel.ID,
		ChannelName: msg.Channel.Name,
		UserID:      msg.User.ID,
		Username:    msg.User.Username,
		Content:     msg.Content,
		PostedAt:    msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", messageQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
