package models

import "time"

// RoomPreference is a user's saved name and tags for a room kind. When
// present, new rooms of that kind are created with it verbatim and the
// naming flow is skipped.
type RoomPreference struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Kind      RoomKind  `db:"kind"`
	Name      string    `db:"name"`
	Tags      Tags      `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PendingDeadline exists while a freshly created room is still unnamed.
// The room is deleted when the deadline lapses before configuration.
type PendingDeadline struct {
	ChannelID  int64     `db:"channel_id"`
	GuildID    int64     `db:"guild_id"`
	OwnerID    int64     `db:"owner_id"`
	DeadlineAt time.Time `db:"deadline_at"`
	CreatedAt  time.Time `db:"created_at"`
}
