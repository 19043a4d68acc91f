package model

import "time"

// ChannelEvent is a push notification delivered to channel
// subscribers. The two kinds are NewMessage and KeepAlive.
type ChannelEvent interface {
	channelEvent()
}

// NewMessage signals that a message was just posted to the channel.
type NewMessage struct {
	Message Message
}

// KeepAlive is a periodic liveness signal so idle connections are
// not reclaimed by proxies.
type KeepAlive struct {
	Timestamp time.Time
}

func (NewMessage) channelEvent() {}
func (KeepAlive) channelEvent()  {}

// EventEmitter abstracts one live subscriber connection. Emit
// reports delivery failures so the fan-out engine can drop the
// subscriber; the completion and error callbacks fire when the
// underlying connection ends.
type EventEmitter interface {
	Emit(event ChannelEvent) error
	OnCompletion(callback func())
	OnError(callback func(error))
}
