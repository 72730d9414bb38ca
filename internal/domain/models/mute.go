package models

import (
	"time"

	"github.com/google/uuid"
)

// MuteRecord tracks a server-mute applied to a user inside a managed room.
// A record is active while UnmutedAt is unset; at most one record is active
// per (channel, user) pair, older rows are history.
type MuteRecord struct {
	ID            uuid.UUID  `db:"id"`
	GuildID       int64      `db:"guild_id"`
	ChannelID     int64      `db:"channel_id"`
	MutedUserID   int64      `db:"muted_user_id"`
	MutedByUserID int64      `db:"muted_by_user_id"`
	IsAdminMute   bool       `db:"is_admin_mute"`
	MutedAt       time.Time  `db:"muted_at"`
	UnmutedAt     *time.Time `db:"unmuted_at"`
}

func (m *MuteRecord) Active() bool {
	return m.UnmutedAt == nil
}

// GlobalMute is a mute not attributable to any managed room, typically
// applied by a human moderator. While active it suppresses every bot-driven
// unmute for the user anywhere in the guild.
type GlobalMute struct {
	ID         uuid.UUID  `db:"id"`
	GuildID    int64      `db:"guild_id"`
	UserID     int64      `db:"user_id"`
	DetectedAt time.Time  `db:"detected_at"`
	UnmutedAt  *time.Time `db:"unmuted_at"`
}

func (m *GlobalMute) Active() bool {
	return m.UnmutedAt == nil
}
