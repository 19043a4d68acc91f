package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/repository"
)

// EventService fans channel events out to live subscribers. Each
// channel has a lazily created set of emitters; a background ticker
// broadcasts keep-alives so idle connections survive intermediaries.
// The registry is an owned component: construct it once, pass it to
// whoever publishes or subscribes, Close it on shutdown.
type EventService struct {
	trx repository.Manager

	mu        sync.RWMutex
	listeners map[uint64]map[model.EventEmitter]struct{}

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventService starts the keep-alive ticker immediately.
func NewEventService(trx repository.Manager, keepAliveInterval time.Duration) *EventService {
	s := &EventService{
		trx:       trx,
		listeners: make(map[uint64]map[model.EventEmitter]struct{}),
		ticker:    time.NewTicker(keepAliveInterval),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *EventService) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.broadcastKeepAlive()
		}
	}
}

// Close stops the keep-alive ticker. Outstanding subscriber
// connections are owned by the transport layer and are not touched.
func (s *EventService) Close() {
	s.closeOnce.Do(func() {
		log.Println("events: shutting down keep-alive ticker")
		s.ticker.Stop()
		close(s.done)
	})
}

// Subscribe registers a live emitter against a channel. The channel
// must exist. Completion and error callbacks deregister the emitter,
// so a closed connection can never leak a registry entry.
func (s *EventService) Subscribe(ctx context.Context, channelID uint64, emitter model.EventEmitter) error {
	err := s.trx.Run(ctx, func(tx repository.Tx) error {
		ch, err := tx.Channels().FindByID(ctx, channelID)
		if err != nil {
			return fmt.Errorf("find channel: %w", err)
		}
		if ch == nil {
			return ErrChannelNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	set := s.listeners[channelID]
	if set == nil {
		set = make(map[model.EventEmitter]struct{})
		s.listeners[channelID] = set
	}
	set[emitter] = struct{}{}
	active := len(set)
	s.mu.Unlock()
	log.Printf("events: subscriber added to channel %d (%d active)", channelID, active)

	emitter.OnCompletion(func() { s.remove(channelID, emitter) })
	emitter.OnError(func(error) { s.remove(channelID, emitter) })
	return nil
}

func (s *EventService) remove(channelID uint64, emitter model.EventEmitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.listeners[channelID]
	if set == nil {
		return
	}
	if _, ok := set[emitter]; !ok {
		return
	}
	delete(set, emitter)
	if len(set) == 0 {
		delete(s.listeners, channelID)
	}
	log.Printf("events: subscriber removed from channel %d (%d remaining)", channelID, len(set))
}

// Publish delivers the event to every current subscriber of the
// channel. A failed delivery drops only that subscriber; the rest of
// the fan-out always proceeds.
func (s *EventService) Publish(channelID uint64, event model.ChannelEvent) {
	for _, e := range s.snapshot(channelID) {
		if err := e.Emit(event); err != nil {
			log.Printf("events: emit to channel %d failed, dropping subscriber: %v", channelID, err)
			s.remove(channelID, e)
		}
	}
}

// SubscriberCount reports the current number of live subscribers of
// a channel.
func (s *EventService) SubscriberCount(channelID uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners[channelID])
}

// snapshot copies the subscriber set so delivery never iterates the
// live map; concurrent removals cannot skip unrelated subscribers.
func (s *EventService) snapshot(channelID uint64) []model.EventEmitter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.listeners[channelID]
	out := make([]model.EventEmitter, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out
}

func (s *EventService) broadcastKeepAlive() {
	signal := model.KeepAlive{Timestamp: time.Now()}
	s.mu.RLock()
	channels := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		channels = append(channels, id)
	}
	s.mu.RUnlock()

	for _, id := range channels {
		for _, e := range s.snapshot(id) {
			if err := e.Emit(signal); err != nil {
				log.Printf("events: keep-alive to channel %d failed, dropping subscriber: %v", id, err)
				s.remove(id, e)
			}
		}
	}
}
