package models

import "time"

// SpamStatus carries a user's progressive timeout escalation state within a
// guild. Level only grows, except a reset to zero after the configured
// period of good behavior.
type SpamStatus struct {
	GuildID          int64      `db:"guild_id"`
	UserID           int64      `db:"user_id"`
	CurrentLevel     int        `db:"current_level"`
	LastInfractionAt *time.Time `db:"last_infraction_at"`
	TotalInfractions int        `db:"total_infractions"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// ShouldReset reports whether the escalation level is stale enough to drop
// back to zero before the next infraction is counted.
func (s *SpamStatus) ShouldReset(resetAfter time.Duration, now time.Time) bool {
	if s.LastInfractionAt == nil {
		return s.CurrentLevel > 0
	}

	return now.Sub(*s.LastInfractionAt) >= resetAfter
}
