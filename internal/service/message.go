package service

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// MessageQueue receives a copy of every stored message for offline
// processing. Delivery is best effort; failures must not fail the
// posting request.
type MessageQueue interface {
	MessagePosted(ctx context.Context, msg model.Message) error
}

// MessageService gates posting and reading messages on channel
// membership and access level, and hands new messages to the fan-out
// engine and the queue.
type MessageService struct {
	trx    repository.Manager
	events *EventService
	queue  MessageQueue // optional, may be nil
}

// NewMessageService wires the service. queue may be nil when no
// broker is configured.
func NewMessageService(trx repository.Manager, events *EventService, queue MessageQueue) *MessageService {
	return &MessageService{trx: trx, events: events, queue: queue}
}

// CreateMessage stores a message for a member with read-write access
// and, once the unit of work has committed, fans it out to the
// channel's live subscribers and publishes it to the queue.
func (s *MessageService) CreateMessage(ctx context.Context, userID, channelID uint64, content string) (*model.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	var created *model.Message
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		user, ch, membership, err := findMembership(ctx, tx, userID, channelID)
		if err != nil {
			return err
		}
		if membership.Access != model.AccessReadWrite {
			return ErrNotAuthorized
		}
		created, err = tx.Messages().Create(ctx, content, *user, *ch)
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(channelID, model.NewMessage{Message: *created})
	if s.queue != nil {
		if err := s.queue.MessagePosted(ctx, *created); err != nil {
			log.Printf("message service: queue publish failed: %v", err)
		}
	}
	return created, nil
}

// ListMessages returns a page of channel messages, newest first.
// Only members may read.
func (s *MessageService) ListMessages(ctx context.Context, userID, channelID uint64, limit, offset int) ([]model.Message, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	var out []model.Message
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		_, ch, _, err := findMembership(ctx, tx, userID, channelID)
		if err != nil {
			return err
		}
		out, err = tx.Messages().FindAllInChannel(ctx, *ch, limit, offset)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
