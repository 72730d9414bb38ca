package models

import (
	"time"
)

// RoomKind is one of the two parallel room configurations a guild may run.
// Each kind has its own trigger channel, category and tag vocabulary.
type RoomKind string

const (
	KindCasual RoomKind = "casual"
	KindFocus  RoomKind = "focus"
)

func (k RoomKind) String() string {
	return string(k)
}

// ParseRoomKind maps the stored identifier back to a RoomKind.
func ParseRoomKind(s string) (RoomKind, bool) {
	switch RoomKind(s) {
	case KindCasual:
		return KindCasual, true
	case KindFocus:
		return KindFocus, true
	default:
		return "", false
	}
}

// MaxRoomTags bounds the number of tags a room may carry.
const MaxRoomTags = 4

// Room is a managed, user-owned voice channel created by the trigger flow.
// Name is nil until the owner configures the room.
type Room struct {
	ChannelID int64     `db:"channel_id"`
	GuildID   int64     `db:"guild_id"`
	OwnerID   int64     `db:"owner_id"`
	Kind      RoomKind  `db:"kind"`
	Name      *string   `db:"name"`
	Tags      Tags      `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
}

// Configured reports whether the owner has named the room.
func (r *Room) Configured() bool {
	return r.Name != nil
}

// DisplayName is the platform channel name for the room.
func (r *Room) DisplayName() string {
	if r.Name != nil {
		return *r.Name
	}

	return DefaultRoomName(r.Kind)
}

// DefaultRoomName is the placeholder name used before configuration.
func DefaultRoomName(kind RoomKind) string {
	if kind == KindFocus {
		return "Focus Room"
	}

	return "Casual Room"
}
