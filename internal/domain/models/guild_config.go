package models

import "time"

// GuildConfig holds the per-guild trigger channel and category mapping for
// each room kind. A kind is usable only when both its trigger channel and
// category are set.
type GuildConfig struct {
	GuildID          int64     `db:"guild_id"`
	CasualTriggerID  *int64    `db:"casual_trigger_id"`
	FocusTriggerID   *int64    `db:"focus_trigger_id"`
	CasualCategoryID *int64    `db:"casual_category_id"`
	FocusCategoryID  *int64    `db:"focus_category_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// TriggerID returns the trigger channel for a kind, nil when unset.
func (c *GuildConfig) TriggerID(kind RoomKind) *int64 {
	if kind == KindFocus {
		return c.FocusTriggerID
	}

	return c.CasualTriggerID
}

// CategoryID returns the category for a kind, nil when unset.
func (c *GuildConfig) CategoryID(kind RoomKind) *int64 {
	if kind == KindFocus {
		return c.FocusCategoryID
	}

	return c.CasualCategoryID
}

// Configured reports whether room creation is fully configured for a kind.
func (c *GuildConfig) Configured(kind RoomKind) bool {
	return c.TriggerID(kind) != nil && c.CategoryID(kind) != nil
}
