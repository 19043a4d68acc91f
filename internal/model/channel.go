package model

// AccessType is the level of access a member has inside a channel.
type AccessType string

const (
	AccessReadOnly  AccessType = "read-only"
	AccessReadWrite AccessType = "read-write"
)

// ValidAccessType reports whether s is one of the known access levels.
func ValidAccessType(s string) bool {
	return AccessType(s) == AccessReadOnly || AccessType(s) == AccessReadWrite
}

// Channel is a named conversation owned by a single user. The owner
// is always also a member with read-write access and cannot leave.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – globally unique channel name.
//  Owner    – user that created and owns the channel.
//  IsPublic – whether the channel can be joined without an invitation.
type Channel struct {
	ID       uint64 // channels.id
	Name     string // channels.name
	Owner    User   // channels.owner_id
	IsPublic bool   // channels.is_public
}

// ChannelMember links a user to a channel with an access level.
// A (user, channel) pair is unique.
type ChannelMember struct {
	ID      uint64     // channel_members.id
	User    User       // channel_members.user_id
	Channel Channel    // channel_members.channel_id
	Access  AccessType // channel_members.access_type
}
