package model

import "time"

// Message is a single chat message inside a channel. CreatedAt is
// assigned by the persistence layer and is monotonic per channel so
// listings have a stable order.
type Message struct {
	ID        uint64    // messages.id
	Content   string    // messages.content
	User      User      // messages.user_id
	Channel   Channel   // messages.channel_id
	CreatedAt time.Time // messages.created_at
}
