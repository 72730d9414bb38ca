package dto

import (
	"time"

	"github.com/roomwarden/roomwarden/internal/domain/models"
)

type RoomResponse struct {
	ChannelID int64     `json:"channel_id"`
	GuildID   int64     `json:"guild_id"`
	OwnerID   int64     `json:"owner_id"`
	Kind      string    `json:"kind"`
	Name      *string   `json:"name"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoomResponseFromModel(r *models.Room) RoomResponse {
	return RoomResponse{
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
		OwnerID:   r.OwnerID,
		Kind:      r.Kind.String(),
		Name:      r.Name,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt,
	}
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

type MuteResponse struct {
	ID            string     `json:"id"`
	GuildID       int64      `json:"guild_id"`
	ChannelID     int64      `json:"channel_id"`
	MutedUserID   int64      `json:"muted_user_id"`
	MutedByUserID int64      `json:"muted_by_user_id"`
	IsAdminMute   bool       `json:"is_admin_mute"`
	MutedAt       time.Time  `json:"muted_at"`
	UnmutedAt     *time.Time `json:"unmuted_at"`
}

func NewMuteResponseFromModel(m *models.MuteRecord) MuteResponse {
	return MuteResponse{
		ID:            m.ID.String(),
		GuildID:       m.GuildID,
		ChannelID:     m.ChannelID,
		MutedUserID:   m.MutedUserID,
		MutedByUserID: m.MutedByUserID,
		IsAdminMute:   m.IsAdminMute,
		MutedAt:       m.MutedAt,
		UnmutedAt:     m.UnmutedAt,
	}
}

type ListMutesResponse struct {
	Mutes []MuteResponse `json:"mutes"`
}

type MuteUserRequest struct {
	UserID   int64 `json:"user_id"`
	ByUserID int64 `json:"by_user_id"`
	Admin    bool  `json:"admin"`
}

type GuildConfigRequest struct {
	CasualTriggerID  *int64 `json:"casual_trigger_id"`
	FocusTriggerID   *int64 `json:"focus_trigger_id"`
	CasualCategoryID *int64 `json:"casual_category_id"`
	FocusCategoryID  *int64 `json:"focus_category_id"`
}

type GuildConfigResponse struct {
	GuildID          int64  `json:"guild_id"`
	CasualTriggerID  *int64 `json:"casual_trigger_id"`
	FocusTriggerID   *int64 `json:"focus_trigger_id"`
	CasualCategoryID *int64 `json:"casual_category_id"`
	FocusCategoryID  *int64 `json:"focus_category_id"`
}

func NewGuildConfigResponseFromModel(c *models.GuildConfig) GuildConfigResponse {
	return GuildConfigResponse{
		GuildID:          c.GuildID,
		CasualTriggerID:  c.CasualTriggerID,
		FocusTriggerID:   c.FocusTriggerID,
		CasualCategoryID: c.CasualCategoryID,
		FocusCategoryID:  c.FocusCategoryID,
	}
}

// InteractionRequest is a component or modal interaction forwarded by the
// platform relay: the custom_id encodes the action, value carries modal
// input.
type InteractionRequest struct {
	GuildID   int64    `json:"guild_id"`
	ChannelID int64    `json:"channel_id"`
	UserID    int64    `json:"user_id"`
	CustomID  string   `json:"custom_id"`
	Value     string   `json:"value"`
	Values    []string `json:"values"`
}
