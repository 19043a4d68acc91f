// Package queue defines message payloads exchanged over the message broker.
package queue

// MessagePostedEvent is published when a message is stored in a
// channel. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type MessagePostedEvent struct {
	MessageID   uint64 `json:"message_id"`
	ChannelID   uint64 `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Content     string `json:"content"`
	PostedAt    string `json:"posted_at"`
}
